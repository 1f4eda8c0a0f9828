package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

type stubService struct {
	id  uuid.UUID
	err error
}

func (s stubService) CreateOrder(context.Context, types.CreateOrderInput) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.id, nil
}

func (s stubService) UpdateOrderStatus(context.Context, types.UpdateOrderStatusInput) error {
	return s.err
}

func (s stubService) RemoveOrderItem(context.Context, types.RemoveOrderItemInput) error {
	return s.err
}

func (s stubService) DeleteOrder(context.Context, types.OrderIdentifier) error { return s.err }

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_CreateOrderRecordsSpanAndMetric(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer

	id := uuid.New()
	svc := New(stubService{id: id},
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)

	got, err := svc.CreateOrder(context.Background(), types.CreateOrderInput{CustomerName: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "OrderService.CreateOrder", spans[0].Name())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), counterTotal(t, reader, "orders.service.orders_created"))
	assert.Contains(t, logs.String(), id.String())
}

func TestService_FailureMarksSpanAndCountsOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer

	transitionErr := &domain.TransitionError{From: domain.StatusDelivered, To: domain.StatusCancelled}
	svc := New(stubService{err: transitionErr},
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)

	err := svc.UpdateOrderStatus(context.Background(), types.UpdateOrderStatusInput{OrderID: uuid.New(), NewStatus: domain.StatusCancelled})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), counterTotal(t, reader, "orders.service.failures"))
	assert.Zero(t, counterTotal(t, reader, "orders.service.status_transitions"))
	assert.Contains(t, logs.String(), `"level":"WARN"`)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "not_found", outcome(ports.ErrNotFound))
	assert.Equal(t, "conflict", outcome(ports.ErrConflict))
	assert.Equal(t, "invalid_argument", outcome(domain.ErrEmptyCustomerName))
	assert.Equal(t, "invalid_state", outcome(domain.ErrLastItem))
	assert.Equal(t, "error", outcome(assert.AnError))
}

func TestNew_DefaultsAreSafe(t *testing.T) {
	svc := New(stubService{err: ports.ErrNotFound})
	err := svc.DeleteOrder(context.Background(), types.OrderIdentifier{ID: uuid.New()})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
