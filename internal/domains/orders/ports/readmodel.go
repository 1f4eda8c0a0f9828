package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

// RefreshScheduler accepts requests to bring the summary read model up to date.
// Implementations must not block the caller.
type RefreshScheduler interface {
	RequestRefresh(ctx context.Context)
}

// ViewRebuilder recomputes the summary read model from the write tables.
// Rebuild is idempotent.
type ViewRebuilder interface {
	Rebuild(ctx context.Context) error
}

// SummaryReader serves the eventually consistent summary read model.
type SummaryReader interface {
	ListSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error)
	GetSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error)
}

// OrderReader answers queries straight from the write tables.
type OrderReader interface {
	SummaryReader
	StatusReport(ctx context.Context) ([]types.StatusReport, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*types.OrderDetail, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]types.OrderItemView, error)
}
