package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

// OrderItemRequest is one line of a create order payload.
type OrderItemRequest struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateOrderRequest is the payload of POST /api/orders.
type CreateOrderRequest struct {
	CustomerName string             `json:"customerName"`
	Items        []OrderItemRequest `json:"items" binding:"required"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

type UpdateStatusRequest struct {
	OrderID   uuid.UUID `json:"orderId" binding:"required"`
	NewStatus string    `json:"newStatus" binding:"required"`
}

type RemoveItemRequest struct {
	OrderID uuid.UUID `json:"orderId" binding:"required"`
	ItemID  uuid.UUID `json:"itemId" binding:"required"`
}

// SummaryQuery carries the optional query parameters of the summary listings.
type SummaryQuery struct {
	Status   *[]string
	Customer *string
	Page     *int
	Size     *int
	Sort     *string
}

// OrderSummary is the HTTP representation of a summary row. Money is rendered
// with two decimals.
type OrderSummary struct {
	OrderID           string    `json:"orderId"`
	CustomerName      string    `json:"customerName"`
	Status            string    `json:"status"`
	Discount          string    `json:"discount"`
	TotalItems        int64     `json:"totalItems"`
	Subtotal          string    `json:"subtotal"`
	TotalWithDiscount string    `json:"totalWithDiscount"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type SummaryPage struct {
	Items      []OrderSummary `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
}

type StatusReport struct {
	Status        string `json:"status"`
	TotalOrders   int64  `json:"totalOrders"`
	TotalRevenue  string `json:"totalRevenue"`
	AvgOrderValue string `json:"avgOrderValue"`
}

type OrderItem struct {
	ItemID    string `json:"itemId"`
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type OrderDetail struct {
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"status"`
	Discount     string    `json:"discount"`
	TotalAmount  string    `json:"totalAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type OrderWithItems struct {
	Order OrderDetail `json:"order"`
	Items []OrderItem `json:"items"`
}

// ToCreateOrderInput converts the transport payload into the command input.
func ToCreateOrderInput(req CreateOrderRequest) types.CreateOrderInput {
	items := make([]types.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, types.ItemInput{
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return types.CreateOrderInput{CustomerName: req.CustomerName, Items: items}
}

func ToUpdateStatusInput(req UpdateStatusRequest) (types.UpdateOrderStatusInput, error) {
	status, err := domain.ParseStatus(req.NewStatus)
	if err != nil {
		return types.UpdateOrderStatusInput{}, err
	}
	return types.UpdateOrderStatusInput{OrderID: req.OrderID, NewStatus: status}, nil
}

func ToRemoveItemInput(req RemoveItemRequest) types.RemoveOrderItemInput {
	return types.RemoveOrderItemInput{OrderID: req.OrderID, ItemID: req.ItemID}
}

// ToSummaryQuery maps query parameters onto a filter and page request.
// Status values may repeat or be comma separated. Sorting defaults to newest first.
func ToSummaryQuery(q SummaryQuery) (types.SummaryFilter, projection.PageRequest, error) {
	var filter types.SummaryFilter
	page := projection.PageRequest{SortDesc: true}
	if q.Status != nil {
		for _, raw := range *q.Status {
			for _, part := range strings.Split(raw, ",") {
				if strings.TrimSpace(part) == "" {
					continue
				}
				status, err := domain.ParseStatus(part)
				if err != nil {
					return filter, page, err
				}
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if q.Customer != nil {
		filter.Customer = strings.TrimSpace(*q.Customer)
	}
	if q.Page != nil {
		if *q.Page < 0 || *q.Page > projection.MaxPage {
			return filter, page, fmt.Errorf("%w: page must be between 0 and %d", domain.ErrInvalidArgument, projection.MaxPage)
		}
		page.Page = *q.Page
	}
	if q.Size != nil {
		if *q.Size <= 0 || *q.Size > projection.MaxPageSize {
			return filter, page, fmt.Errorf("%w: size must be between 1 and %d", domain.ErrInvalidArgument, projection.MaxPageSize)
		}
		page.Size = *q.Size
	}
	if q.Sort != nil {
		switch strings.ToLower(strings.TrimSpace(*q.Sort)) {
		case "", "desc":
			page.SortDesc = true
		case "asc":
			page.SortDesc = false
		default:
			return filter, page, fmt.Errorf("%w: sort must be asc or desc", domain.ErrInvalidArgument)
		}
	}
	return filter, page.Normalize(), nil
}

func FromSummary(s types.OrderSummary) OrderSummary {
	return OrderSummary{
		OrderID:           s.OrderID.String(),
		CustomerName:      s.CustomerName,
		Status:            string(s.Status),
		Discount:          money(s.Discount),
		TotalItems:        s.TotalItems,
		Subtotal:          money(s.Subtotal),
		TotalWithDiscount: money(s.TotalWithDiscount),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func FromSummaryPage(p projection.Page[types.OrderSummary]) SummaryPage {
	items := make([]OrderSummary, 0, len(p.Items))
	for _, s := range p.Items {
		items = append(items, FromSummary(s))
	}
	return SummaryPage{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages(),
	}
}

func FromStatusReports(reports []types.StatusReport) []StatusReport {
	out := make([]StatusReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, StatusReport{
			Status:        string(r.Status),
			TotalOrders:   r.TotalOrders,
			TotalRevenue:  money(r.TotalRevenue),
			AvgOrderValue: money(r.AvgOrderValue),
		})
	}
	return out
}

func FromOrderWithItems(o *types.OrderWithItems) OrderWithItems {
	if o == nil {
		return OrderWithItems{}
	}
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			ItemID:    item.ItemID.String(),
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Subtotal:  money(item.Subtotal),
		})
	}
	return OrderWithItems{
		Order: OrderDetail{
			OrderID:      o.Order.OrderID.String(),
			CustomerName: o.Order.CustomerName,
			Status:       string(o.Order.Status),
			Discount:     money(o.Order.Discount),
			TotalAmount:  money(o.Order.TotalAmount),
			CreatedAt:    o.Order.CreatedAt,
		},
		Items: items,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}
