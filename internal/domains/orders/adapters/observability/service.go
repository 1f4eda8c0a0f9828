package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.Int("order.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int("order.items", len(input.Items)))
	id, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return uuid.Nil, s.handleError(ctx, span, "CreateOrder", err, "failed to create order")
	}
	span.SetAttributes(attribute.String("order.id", id.String()))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created", slog.String("order.id", id.String()))
	return id, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID.String()),
			attribute.String("order.status.target", string(input.NewStatus)),
		))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", input.OrderID.String()), slog.String("status", string(input.NewStatus)))
	if err := s.inner.UpdateOrderStatus(ctx, input); err != nil {
		return s.handleError(ctx, span, "UpdateOrderStatus", err, "failed to update order status", slog.String("order.id", input.OrderID.String()))
	}
	s.metrics.recordTransition(ctx, input.NewStatus)
	s.logInfo(ctx, "order status updated", slog.String("order.id", input.OrderID.String()), slog.String("status", string(input.NewStatus)))
	return nil
}

func (s *Service) RemoveOrderItem(ctx context.Context, input types.RemoveOrderItemInput) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.RemoveOrderItem",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID.String()),
			attribute.String("order.item.id", input.ItemID.String()),
		))
	defer span.End()

	s.logInfo(ctx, "removing order item", slog.String("order.id", input.OrderID.String()), slog.String("item.id", input.ItemID.String()))
	if err := s.inner.RemoveOrderItem(ctx, input); err != nil {
		return s.handleError(ctx, span, "RemoveOrderItem", err, "failed to remove order item", slog.String("order.id", input.OrderID.String()))
	}
	s.logInfo(ctx, "order item removed", slog.String("order.id", input.OrderID.String()), slog.String("item.id", input.ItemID.String()))
	return nil
}

func (s *Service) DeleteOrder(ctx context.Context, id types.OrderIdentifier) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.String("order.id", id.ID.String())))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.String("order.id", id.ID.String()))
	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, "DeleteOrder", err, "failed to delete order", slog.String("order.id", id.ID.String()))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.String("order.id", id.ID.String()))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// logFailure logs caller mistakes at warn and everything else at error.
func (s *Service) logFailure(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	level := slog.LevelError
	if outcome(err) != "error" {
		level = slog.LevelWarn
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, op string, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.recordFailure(ctx, op, outcome(err))
	s.logFailure(ctx, msg, err, attrs...)
	return err
}

// outcome classifies a command failure for logs and metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidInput), errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ports.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
	transitions   metric.Int64Counter
	ordersDeleted metric.Int64Counter
	failures      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of orders created"))
	transitions, _ := m.Int64Counter("orders.service.status_transitions", metric.WithDescription("Number of applied status transitions"))
	ordersDeleted, _ := m.Int64Counter("orders.service.orders_deleted", metric.WithDescription("Number of orders deleted"))
	failures, _ := m.Int64Counter("orders.service.failures", metric.WithDescription("Number of failed commands"))
	return serviceMetrics{ordersCreated: ordersCreated, transitions: transitions, ordersDeleted: ordersDeleted, failures: failures}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, op, outcome string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op), attribute.String("outcome", outcome)))
	}
}

var _ ports.Service = (*Service)(nil)
