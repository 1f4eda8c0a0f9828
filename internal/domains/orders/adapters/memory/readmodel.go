package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

var (
	_ ports.ViewRebuilder = (*SummaryView)(nil)
	_ ports.SummaryReader = (*SummaryView)(nil)
	_ ports.OrderReader   = (*LiveReader)(nil)
)

// SummaryView is the in-memory counterpart of the summary materialized view:
// it only changes when Rebuild takes a fresh snapshot of the store.
type SummaryView struct {
	store *Store

	mu   sync.RWMutex
	rows []types.OrderSummary
}

func NewSummaryView(store *Store) *SummaryView {
	return &SummaryView{store: store}
}

// Rebuild replaces the view contents with summaries of the committed orders.
func (v *SummaryView) Rebuild(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := summarize(v.store.Snapshot())
	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
	return nil
}

func (v *SummaryView) ListSummaries(_ context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	v.mu.RLock()
	rows := v.rows
	v.mu.RUnlock()
	return projection.Paginate(filterSummaries(rows, filter, page.SortDesc), page), nil
}

func (v *SummaryView) GetSummary(_ context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, row := range v.rows {
		if row.OrderID == id {
			out := row
			return &out, nil
		}
	}
	return nil, ports.ErrNotFound
}

// LiveReader answers queries from the committed contents of the store.
type LiveReader struct {
	store *Store
}

func NewLiveReader(store *Store) *LiveReader {
	return &LiveReader{store: store}
}

func (r *LiveReader) ListSummaries(_ context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	rows := summarize(r.store.Snapshot())
	return projection.Paginate(filterSummaries(rows, filter, page.SortDesc), page), nil
}

func (r *LiveReader) GetSummary(_ context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	order, ok := r.store.Get(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	summary := types.SummaryFromOrder(order)
	return &summary, nil
}

func (r *LiveReader) StatusReport(_ context.Context) ([]types.StatusReport, error) {
	byStatus := map[domain.Status]*types.StatusReport{}
	for _, order := range r.store.Snapshot() {
		report, ok := byStatus[order.Status]
		if !ok {
			report = &types.StatusReport{Status: order.Status, TotalRevenue: decimal.Zero}
			byStatus[order.Status] = report
		}
		report.TotalOrders++
		report.TotalRevenue = report.TotalRevenue.Add(order.TotalAmount)
	}
	out := make([]types.StatusReport, 0, len(byStatus))
	for _, status := range domain.Statuses() {
		report, ok := byStatus[status]
		if !ok {
			continue
		}
		report.AvgOrderValue = report.TotalRevenue.Div(decimal.NewFromInt(report.TotalOrders)).Round(domain.MoneyScale)
		out = append(out, *report)
	}
	return out, nil
}

func (r *LiveReader) GetDetail(_ context.Context, id uuid.UUID) (*types.OrderDetail, error) {
	order, ok := r.store.Get(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	detail := types.DetailFromOrder(order)
	return &detail, nil
}

func (r *LiveReader) ListItems(_ context.Context, orderID uuid.UUID) ([]types.OrderItemView, error) {
	order, ok := r.store.Get(orderID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return types.ItemViewsFromOrder(order), nil
}

func summarize(orders []*domain.Order) []types.OrderSummary {
	rows := make([]types.OrderSummary, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, types.SummaryFromOrder(order))
	}
	return rows
}

// filterSummaries applies the filter and orders rows by creation time.
func filterSummaries(rows []types.OrderSummary, filter types.SummaryFilter, desc bool) []types.OrderSummary {
	customer := strings.ToLower(strings.TrimSpace(filter.Customer))
	out := make([]types.OrderSummary, 0, len(rows))
	for _, row := range rows {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, row.Status) {
			continue
		}
		if customer != "" && !strings.Contains(strings.ToLower(row.CustomerName), customer) {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func containsStatus(statuses []domain.Status, status domain.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
