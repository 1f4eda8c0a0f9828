package migrations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SummaryViewName is the materialized view backing the order summary read model.
const SummaryViewName = "order_summary_mview"

// Run applies the schema. The summary materialized view is PostgreSQL only.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(&orderRecord{}, &orderItemRecord{}); err != nil {
		return err
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range summaryViewDDL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create summary view: %w", err)
		}
	}
	return nil
}

var summaryViewDDL = []string{
	`CREATE MATERIALIZED VIEW IF NOT EXISTS ` + SummaryViewName + ` AS
	SELECT o.id AS order_id,
	       o.customer_name,
	       o.status,
	       o.discount,
	       COUNT(i.id) AS total_items,
	       COALESCE(SUM(i.unit_price * i.quantity), 0) AS subtotal,
	       o.total_amount AS total_with_discount,
	       o.created_at,
	       o.updated_at
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id
	GROUP BY o.id, o.customer_name, o.status, o.discount, o.total_amount, o.created_at, o.updated_at`,
	// REFRESH ... CONCURRENTLY requires a unique index on the view.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_` + SummaryViewName + `_order_id ON ` + SummaryViewName + ` (order_id)`,
	`CREATE INDEX IF NOT EXISTS ix_` + SummaryViewName + `_status ON ` + SummaryViewName + ` (status)`,
}

// Order schema mirrors the orders Postgres adapter.
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

type orderItemRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;column:id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index"`
	Product   string          `gorm:"column:product;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }
