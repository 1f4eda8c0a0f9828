package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
)

// OrderSummary is one row of the order summary read model.
type OrderSummary struct {
	OrderID           uuid.UUID
	CustomerName      string
	Status            domain.Status
	Discount          decimal.Decimal
	TotalItems        int64
	Subtotal          decimal.Decimal
	TotalWithDiscount decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SummaryFromOrder derives the summary row for an aggregate.
func SummaryFromOrder(order *domain.Order) OrderSummary {
	return OrderSummary{
		OrderID:           order.ID,
		CustomerName:      order.CustomerName,
		Status:            order.Status,
		Discount:          order.Discount,
		TotalItems:        int64(order.ItemCount()),
		Subtotal:          order.Subtotal(),
		TotalWithDiscount: order.TotalAmount,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// SummaryFilter narrows summary listings. Empty fields match everything.
type SummaryFilter struct {
	Statuses []domain.Status
	// Customer matches case-insensitively as a substring of the customer name.
	Customer string
}

// StatusReport aggregates orders sharing a status.
type StatusReport struct {
	Status        domain.Status
	TotalOrders   int64
	TotalRevenue  decimal.Decimal
	AvgOrderValue decimal.Decimal
}

// OrderDetail is the header of an order without its lines.
type OrderDetail struct {
	OrderID      uuid.UUID
	CustomerName string
	Status       domain.Status
	Discount     decimal.Decimal
	TotalAmount  decimal.Decimal
	CreatedAt    time.Time
}

type OrderItemView struct {
	ItemID    uuid.UUID
	Product   string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderWithItems combines an order header with its lines.
type OrderWithItems struct {
	Order OrderDetail
	Items []OrderItemView
}

// DetailFromOrder projects an aggregate onto its header view.
func DetailFromOrder(order *domain.Order) OrderDetail {
	return OrderDetail{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Status:       order.Status,
		Discount:     order.Discount,
		TotalAmount:  order.TotalAmount,
		CreatedAt:    order.CreatedAt,
	}
}

// ItemViewsFromOrder projects the aggregate's lines.
func ItemViewsFromOrder(order *domain.Order) []OrderItemView {
	items := order.Items()
	out := make([]OrderItemView, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItemView{
			ItemID:    item.ID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return out
}
