package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-cqrs/internal/platform/migrations"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

var (
	_ ports.SummaryReader = (*ViewReader)(nil)
	_ ports.OrderReader   = (*LiveReader)(nil)
)

const liveSummarySelect = `o.id AS order_id, o.customer_name, o.status, o.discount,
	COUNT(i.id) AS total_items,
	COALESCE(SUM(i.unit_price * i.quantity), 0) AS subtotal,
	o.total_amount AS total_with_discount,
	o.created_at, o.updated_at`

const liveSummaryGroupBy = "o.id, o.customer_name, o.status, o.discount, o.total_amount, o.created_at, o.updated_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ViewReader reads the summary materialized view. Results reflect the last refresh.
type ViewReader struct {
	db *gorm.DB
}

func NewViewReader(db *gorm.DB) *ViewReader {
	return &ViewReader{db: db}
}

func (v *ViewReader) ListSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	page = page.Normalize()
	base := v.db.WithContext(ctx).Table(migrations.SummaryViewName)
	if len(filter.Statuses) > 0 {
		base = base.Where("status = ANY(?)", pq.Array(statusStrings(filter.Statuses)))
	}
	base = whereCustomer(base, "customer_name", filter.Customer).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return projection.Page[types.OrderSummary]{}, err
	}
	var rows []summaryRow
	if err := base.Order(createdAtOrder("created_at", page.SortDesc)).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return projection.Page[types.OrderSummary]{}, err
	}
	return projection.Page[types.OrderSummary]{
		Items:      toSummaries(rows),
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
	}, nil
}

func (v *ViewReader) GetSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	var row summaryRow
	err := v.db.WithContext(ctx).Table(migrations.SummaryViewName).Where("order_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	summary := row.toSummary()
	return &summary, nil
}

// LiveReader computes read views directly from the write tables.
type LiveReader struct {
	db *gorm.DB
}

func NewLiveReader(db *gorm.DB) *LiveReader {
	return &LiveReader{db: db}
}

func (r *LiveReader) ListSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	page = page.Normalize()
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Table("orders AS o")
		if len(filter.Statuses) > 0 {
			q = q.Where("o.status IN ?", statusStrings(filter.Statuses))
		}
		return whereCustomer(q, "o.customer_name", filter.Customer)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return projection.Page[types.OrderSummary]{}, err
	}
	var rows []summaryRow
	if err := filtered().
		Select(liveSummarySelect).
		Joins("LEFT JOIN order_items i ON i.order_id = o.id").
		Group(liveSummaryGroupBy).
		Order(createdAtOrder("o.created_at", page.SortDesc)).
		Offset(page.Offset()).
		Limit(page.Size).
		Scan(&rows).Error; err != nil {
		return projection.Page[types.OrderSummary]{}, err
	}
	return projection.Page[types.OrderSummary]{
		Items:      toSummaries(rows),
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
	}, nil
}

func (r *LiveReader) GetSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	var rows []summaryRow
	if err := r.db.WithContext(ctx).Table("orders AS o").
		Select(liveSummarySelect).
		Joins("LEFT JOIN order_items i ON i.order_id = o.id").
		Where("o.id = ?", id).
		Group(liveSummaryGroupBy).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	summary := rows[0].toSummary()
	return &summary, nil
}

type statusReportRow struct {
	Status        string          `gorm:"column:status"`
	TotalOrders   int64           `gorm:"column:total_orders"`
	TotalRevenue  decimal.Decimal `gorm:"column:total_revenue"`
	AvgOrderValue decimal.Decimal `gorm:"column:avg_order_value"`
}

// StatusReport aggregates order count and revenue per status, in lifecycle order.
func (r *LiveReader) StatusReport(ctx context.Context) ([]types.StatusReport, error) {
	var rows []statusReportRow
	if err := r.db.WithContext(ctx).Table("orders").
		Select("status, COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_revenue, COALESCE(AVG(total_amount), 0) AS avg_order_value").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	byStatus := make(map[domain.Status]statusReportRow, len(rows))
	for _, row := range rows {
		byStatus[domain.Status(row.Status)] = row
	}
	out := make([]types.StatusReport, 0, len(rows))
	for _, status := range domain.Statuses() {
		row, ok := byStatus[status]
		if !ok {
			continue
		}
		out = append(out, types.StatusReport{
			Status:        status,
			TotalOrders:   row.TotalOrders,
			TotalRevenue:  row.TotalRevenue.Round(domain.MoneyScale),
			AvgOrderValue: row.AvgOrderValue.Round(domain.MoneyScale),
		})
	}
	return out, nil
}

func (r *LiveReader) GetDetail(ctx context.Context, id uuid.UUID) (*types.OrderDetail, error) {
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &types.OrderDetail{
		OrderID:      record.ID,
		CustomerName: record.CustomerName,
		Status:       domain.Status(record.Status),
		Discount:     record.Discount,
		TotalAmount:  record.TotalAmount,
		CreatedAt:    record.CreatedAt,
	}, nil
}

func (r *LiveReader) ListItems(ctx context.Context, orderID uuid.UUID) ([]types.OrderItemView, error) {
	items, err := NewRepository(r.db).loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
	}
	out := make([]types.OrderItemView, 0, len(items))
	for _, item := range items {
		out = append(out, types.OrderItemView{
			ItemID:    item.ID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return out, nil
}

func whereCustomer(q *gorm.DB, column, customer string) *gorm.DB {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(customer)) + "%"
	return q.Where("LOWER("+column+`) LIKE ? ESCAPE '\'`, pattern)
}

func createdAtOrder(column string, desc bool) string {
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func toSummaries(rows []summaryRow) []types.OrderSummary {
	out := make([]types.OrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSummary())
	}
	return out
}

func (r summaryRow) toSummary() types.OrderSummary {
	return types.OrderSummary{
		OrderID:           r.OrderID,
		CustomerName:      r.CustomerName,
		Status:            domain.Status(r.Status),
		Discount:          r.Discount,
		TotalItems:        r.TotalItems,
		Subtotal:          r.Subtotal.Round(domain.MoneyScale),
		TotalWithDiscount: r.TotalWithDiscount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
