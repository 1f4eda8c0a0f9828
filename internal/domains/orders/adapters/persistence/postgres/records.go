package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
)

// orderRecord maps the order aggregate root to the orders table.
type orderRecord struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;column:id"`
	CustomerName string            `gorm:"column:customer_name;not null;index"`
	Status       string            `gorm:"column:status;type:varchar(32);not null;index"`
	Discount     decimal.Decimal   `gorm:"column:discount;type:numeric(5,2);not null"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Version      int64             `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time         `gorm:"column:created_at;not null;index"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;not null"`
	Items        []orderItemRecord `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

// orderItemRecord maps an order line; order_id is a plain foreign key.
type orderItemRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;column:id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index"`
	Product   string          `gorm:"column:product;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// summaryRow is the shape shared by the materialized view and the live summary query.
type summaryRow struct {
	OrderID           uuid.UUID       `gorm:"column:order_id"`
	CustomerName      string          `gorm:"column:customer_name"`
	Status            string          `gorm:"column:status"`
	Discount          decimal.Decimal `gorm:"column:discount"`
	TotalItems        int64           `gorm:"column:total_items"`
	Subtotal          decimal.Decimal `gorm:"column:subtotal"`
	TotalWithDiscount decimal.Decimal `gorm:"column:total_with_discount"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Status:       string(order.Status),
		Discount:     order.Discount,
		TotalAmount:  order.TotalAmount,
		Version:      order.Version,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

func toItemRecords(order *domain.Order) []orderItemRecord {
	items := order.Items()
	records := make([]orderItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, orderItemRecord{
			ID:        item.ID,
			OrderID:   order.ID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
	return records
}

func (r orderRecord) toDomain(items []orderItemRecord) *domain.Order {
	domainItems := make([]*domain.OrderItem, 0, len(items))
	for _, item := range items {
		domainItems = append(domainItems, &domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
	return domain.Rehydrate(
		r.ID,
		r.CustomerName,
		domain.Status(r.Status),
		r.Discount,
		r.TotalAmount,
		r.Version,
		r.CreatedAt,
		r.UpdatedAt,
		domainItems,
	)
}
