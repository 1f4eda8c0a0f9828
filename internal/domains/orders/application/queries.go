package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

// QueryService serves the read side. View reads come from the summary read
// model and may lag committed writes; live reads hit the write tables.
type QueryService struct {
	view    ports.SummaryReader
	live    ports.SummaryReader
	reports projection.Reader[struct{}, types.StatusReport]
	details projection.Reader[uuid.UUID, types.OrderDetail]
	items   projection.Reader[uuid.UUID, types.OrderItemView]
}

// NewQueryService assembles the read services over the given readers.
func NewQueryService(view ports.SummaryReader, live ports.OrderReader) *QueryService {
	q := &QueryService{view: view, live: live}
	if live != nil {
		q.reports = projection.Reader[struct{}, types.StatusReport]{FindAll: live.StatusReport}
		q.details = projection.Reader[uuid.UUID, types.OrderDetail]{
			FindByID: func(ctx context.Context, id uuid.UUID) (types.OrderDetail, error) {
				detail, err := live.GetDetail(ctx, id)
				if err != nil {
					return types.OrderDetail{}, err
				}
				return *detail, nil
			},
		}
		q.items = projection.Reader[uuid.UUID, types.OrderItemView]{FindListByID: live.ListItems}
	}
	return q
}

// ListViewSummaries pages through the summary read model.
func (q *QueryService) ListViewSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	if q.view == nil {
		return projection.Page[types.OrderSummary]{}, projection.ErrUnsupported
	}
	return q.view.ListSummaries(ctx, filter, page.Normalize())
}

func (q *QueryService) GetViewSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	if q.view == nil {
		return nil, projection.ErrUnsupported
	}
	return q.view.GetSummary(ctx, id)
}

// ListLiveSummaries computes summaries directly from the write tables.
func (q *QueryService) ListLiveSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	if q.live == nil {
		return projection.Page[types.OrderSummary]{}, projection.ErrUnsupported
	}
	return q.live.ListSummaries(ctx, filter, page.Normalize())
}

func (q *QueryService) GetLiveSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	if q.live == nil {
		return nil, projection.ErrUnsupported
	}
	return q.live.GetSummary(ctx, id)
}

// ReportByStatus aggregates order count and revenue per status.
func (q *QueryService) ReportByStatus(ctx context.Context) ([]types.StatusReport, error) {
	return q.reports.All(ctx)
}

// GetOrderWithItems returns an order header together with its lines.
func (q *QueryService) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*types.OrderWithItems, error) {
	detail, err := q.details.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := q.items.ListByID(ctx, id)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if items == nil {
		items = []types.OrderItemView{}
	}
	return &types.OrderWithItems{Order: detail, Items: items}, nil
}
