package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-cqrs/internal/platform/migrations"
)

var _ ports.ViewRebuilder = (*ViewRefresher)(nil)

// ViewRefresher rebuilds the summary materialized view. The refresh is its own
// statement on the pool, never part of a command transaction; CONCURRENTLY
// keeps the view readable while it runs.
type ViewRefresher struct {
	db *gorm.DB
}

func NewViewRefresher(db *gorm.DB) *ViewRefresher {
	return &ViewRefresher{db: db}
}

func (v *ViewRefresher) Rebuild(ctx context.Context) error {
	if v == nil || v.db == nil {
		return errors.New("postgres view refresher not configured")
	}
	return v.db.WithContext(ctx).
		Exec("REFRESH MATERIALIZED VIEW CONCURRENTLY " + migrations.SummaryViewName).
		Error
}
