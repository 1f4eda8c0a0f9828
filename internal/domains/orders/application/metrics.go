package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type refreshMetrics struct {
	requested metric.Int64Counter
	runs      metric.Int64Counter
	duration  metric.Float64Histogram
}

func newRefreshMetrics(m metric.Meter) refreshMetrics {
	if m == nil {
		return refreshMetrics{}
	}
	requested, _ := m.Int64Counter("orders.refresh.requested", metric.WithDescription("Refresh requests, tagged by whether they were coalesced"))
	runs, _ := m.Int64Counter("orders.refresh.runs", metric.WithDescription("Summary rebuild attempts by outcome"))
	duration, _ := m.Float64Histogram("orders.refresh.duration", metric.WithUnit("s"), metric.WithDescription("Summary rebuild latency"))
	return refreshMetrics{requested: requested, runs: runs, duration: duration}
}

func (m refreshMetrics) recordRequested(ctx context.Context, coalesced bool) {
	if m.requested != nil {
		m.requested.Add(ctx, 1, metric.WithAttributes(attribute.Bool("coalesced", coalesced)))
	}
}

func (m refreshMetrics) recordRefresh(ctx context.Context, elapsed time.Duration, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	if m.runs != nil {
		m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
