package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
)

const (
	defaultAttemptTimeout = 30 * time.Second
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
	defaultFlushTimeout   = 10 * time.Second
)

// ViewRefreshNotifier coalesces refresh requests and rebuilds the summary read
// model on a background worker. Any number of requests made while a rebuild is
// pending or running collapse into one further rebuild. Failed rebuilds are
// retried with capped exponential backoff until one succeeds.
type ViewRefreshNotifier struct {
	rebuilder ports.ViewRebuilder
	pending   chan struct{}
	logger    *slog.Logger
	metrics   refreshMetrics

	minInterval    time.Duration
	attemptTimeout time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	flushTimeout   time.Duration
}

type NotifierOption func(*ViewRefreshNotifier)

func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func WithNotifierMeter(m metric.Meter) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		n.metrics = newRefreshMetrics(m)
	}
}

// WithMinInterval rate-limits rebuilds to at most one per interval.
func WithMinInterval(d time.Duration) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		if d >= 0 {
			n.minInterval = d
		}
	}
}

// WithAttemptTimeout bounds a single rebuild.
func WithAttemptTimeout(d time.Duration) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		if d > 0 {
			n.attemptTimeout = d
		}
	}
}

func WithBackoff(initial, maxDelay time.Duration) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		if initial > 0 {
			n.initialBackoff = initial
		}
		if maxDelay >= n.initialBackoff {
			n.maxBackoff = maxDelay
		}
	}
}

// WithFlushTimeout bounds the final rebuild attempted on shutdown.
func WithFlushTimeout(d time.Duration) NotifierOption {
	return func(n *ViewRefreshNotifier) {
		if d > 0 {
			n.flushTimeout = d
		}
	}
}

func NewViewRefreshNotifier(rebuilder ports.ViewRebuilder, opts ...NotifierOption) *ViewRefreshNotifier {
	n := &ViewRefreshNotifier{
		rebuilder:      rebuilder,
		pending:        make(chan struct{}, 1),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:        newRefreshMetrics(nil),
		attemptTimeout: defaultAttemptTimeout,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		flushTimeout:   defaultFlushTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// RequestRefresh marks the read model stale. It never blocks.
func (n *ViewRefreshNotifier) RequestRefresh(ctx context.Context) {
	select {
	case n.pending <- struct{}{}:
		n.metrics.recordRequested(ctx, false)
	default:
		n.metrics.recordRequested(ctx, true)
	}
}

// Run processes refresh requests until ctx is cancelled, then makes one
// bounded attempt to flush a request that is still pending.
func (n *ViewRefreshNotifier) Run(ctx context.Context) error {
	n.logger.LogAttrs(ctx, slog.LevelInfo, "order summary refresh worker started")
	for {
		select {
		case <-ctx.Done():
			n.flush(ctx)
			n.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelInfo, "order summary refresh worker stopped")
			return nil
		case <-n.pending:
			n.refreshUntilDone(ctx)
			if n.minInterval > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(n.minInterval):
				}
			}
		}
	}
}

func (n *ViewRefreshNotifier) refreshUntilDone(ctx context.Context) {
	backoff := n.initialBackoff
	for attempt := 1; ; attempt++ {
		err := n.attempt(ctx, n.attemptTimeout)
		if err == nil {
			return
		}
		n.logger.LogAttrs(ctx, slog.LevelWarn, "order summary refresh failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			// leave the request pending so the shutdown flush picks it up
			select {
			case n.pending <- struct{}{}:
			default:
			}
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > n.maxBackoff {
			backoff = n.maxBackoff
		}
	}
}

func (n *ViewRefreshNotifier) flush(ctx context.Context) {
	select {
	case <-n.pending:
	default:
		return
	}
	if err := n.attempt(ctx, n.flushTimeout); err != nil {
		n.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelError, "order summary refresh abandoned on shutdown",
			slog.String("error", err.Error()))
	}
}

// attempt runs one rebuild detached from the caller's cancellation.
func (n *ViewRefreshNotifier) attempt(parent context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
	defer cancel()
	started := time.Now()
	if err := n.rebuilder.Rebuild(ctx); err != nil {
		n.metrics.recordRefresh(ctx, time.Since(started), false)
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	n.metrics.recordRefresh(ctx, time.Since(started), true)
	n.logger.LogAttrs(ctx, slog.LevelDebug, "order summary refreshed", slog.Duration("elapsed", time.Since(started)))
	return nil
}

var _ ports.RefreshScheduler = (*ViewRefreshNotifier)(nil)
