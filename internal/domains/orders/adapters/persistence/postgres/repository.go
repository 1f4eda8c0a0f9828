package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their items in PostgreSQL using GORM. Bind it
// to a transaction handle to take part in a unit of work.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new order or updates an existing one if its version still matches.
func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	db := r.db.WithContext(ctx)
	record := toRecord(order)
	if order.Version == 0 {
		record.Version = 1
		if err := db.Omit(clause.Associations).Create(&record).Error; err != nil {
			return mapDBError(err)
		}
	} else {
		result := db.Model(&orderRecord{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"customer_name": record.CustomerName,
				"status":        record.Status,
				"discount":      record.Discount,
				"total_amount":  record.TotalAmount,
				"updated_at":    record.UpdatedAt,
				"version":       gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return mapDBError(result.Error)
		}
		if result.RowsAffected == 0 {
			return r.missingOrConflict(ctx, order.ID)
		}
		record.Version = order.Version + 1
	}
	if err := r.syncItems(ctx, order); err != nil {
		return mapDBError(err)
	}
	order.Version = record.Version
	return nil
}

// syncItems makes order_items match the aggregate: lines no longer present are
// deleted and new lines inserted. Existing lines are immutable.
func (r *Repository) syncItems(ctx context.Context, order *domain.Order) error {
	db := r.db.WithContext(ctx)
	items := toItemRecords(order)
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	stale := db.Where("order_id = ?", order.ID)
	if len(ids) > 0 {
		stale = stale.Where("id NOT IN ?", ids)
	}
	if err := stale.Delete(&orderItemRecord{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&items).Error
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, mapDBError(err)
	}
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.toDomain(items), nil
}

// Delete removes an order and its items.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&orderItemRecord{}).Error; err != nil {
		return mapDBError(err)
	}
	result := db.Delete(&orderRecord{}, "id = ?", id)
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]orderItemRecord, error) {
	var items []orderItemRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, mapDBError(err)
	}
	return items, nil
}

func (r *Repository) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return mapDBError(err)
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrConflict
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}
