package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

func TestQueryService_ViewConvergesAfterRefresh(t *testing.T) {
	store := memory.NewStore()
	view := memory.NewSummaryView(store)
	queries := NewQueryService(view, memory.NewLiveReader(store))
	svc := NewService(store, WithRefreshScheduler(refreshInline{view}))

	id := createPen(t, svc)

	summary, err := queries.GetViewSummary(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "10.00", summary.TotalWithDiscount.StringFixed(2))

	page, err := queries.ListViewSummaries(context.Background(), types.SummaryFilter{Customer: "pa"}, projection.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestQueryService_OrderWithItems(t *testing.T) {
	store := memory.NewStore()
	queries := NewQueryService(nil, memory.NewLiveReader(store))
	svc := NewService(store)
	id := createPen(t, svc)

	result, err := queries.GetOrderWithItems(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, result.Order.OrderID)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Pen", result.Items[0].Product)

	_, err = queries.GetOrderWithItems(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = queries.GetViewSummary(context.Background(), id)
	assert.ErrorIs(t, err, projection.ErrUnsupported)

	reports, err := queries.ReportByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int64(1), reports[0].TotalOrders)
}

// refreshInline rebuilds synchronously, standing in for the background notifier.
type refreshInline struct {
	rebuilder ports.ViewRebuilder
}

func (r refreshInline) RequestRefresh(ctx context.Context) {
	_ = r.rebuilder.Rebuild(ctx)
}
