// Package cache fronts the summary read model with a generation-keyed cache.
// Every successful rebuild bumps the generation, so cached entries never
// outlive the view snapshot they were read from.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	platformcache "github.com/Apurer/go-gin-orders-cqrs/internal/platform/cache"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

const (
	DefaultTTL = 5 * time.Minute
	// DefaultKeyPrefix namespaces summary keys. The api and the refresh
	// worker must agree on it for generation bumps to reach readers.
	DefaultKeyPrefix = "orders"

	generationKey = "summary-generation"
)

var (
	_ ports.SummaryReader = (*SummaryReader)(nil)
	_ ports.ViewRebuilder = (*InvalidatingRebuilder)(nil)
)

// SummaryReader serves summaries from the cache, falling back to next on a
// miss. Cache failures are logged and never surface to the caller.
type SummaryReader struct {
	next   ports.SummaryReader
	cache  platformcache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*SummaryReader)

func WithTTL(ttl time.Duration) Option {
	return func(r *SummaryReader) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *SummaryReader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewSummaryReader(next ports.SummaryReader, cache platformcache.Cache, opts ...Option) *SummaryReader {
	r := &SummaryReader{
		next:   next,
		cache:  cache,
		ttl:    DefaultTTL,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SummaryReader) ListSummaries(ctx context.Context, filter types.SummaryFilter, page projection.PageRequest) (projection.Page[types.OrderSummary], error) {
	page = page.Normalize()
	key, ok := r.key(ctx, listKey(filter, page))
	if ok {
		var cached projection.Page[types.OrderSummary]
		if r.load(ctx, key, &cached) {
			return cached, nil
		}
	}
	result, err := r.next.ListSummaries(ctx, filter, page)
	if err != nil {
		return result, err
	}
	if ok {
		r.store(ctx, key, result)
	}
	return result, nil
}

func (r *SummaryReader) GetSummary(ctx context.Context, id uuid.UUID) (*types.OrderSummary, error) {
	key, ok := r.key(ctx, "summary:"+id.String())
	if ok {
		var cached types.OrderSummary
		if r.load(ctx, key, &cached) {
			return &cached, nil
		}
	}
	summary, err := r.next.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		r.store(ctx, key, summary)
	}
	return summary, nil
}

// key scopes suffix to the current generation. ok is false when the
// generation cannot be read; the caller then bypasses the cache.
func (r *SummaryReader) key(ctx context.Context, suffix string) (string, bool) {
	raw, err := r.cache.Get(ctx, r.cache.GenerateKey("meta", generationKey))
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "summary cache unavailable", slog.String("error", err.Error()))
		return "", false
	}
	gen := int64(0)
	if raw != "" {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "summary cache generation corrupt", slog.String("value", raw))
			return "", false
		}
	}
	return r.cache.GenerateKey("summaries", fmt.Sprintf("g%d:%s", gen, suffix)), true
}

func (r *SummaryReader) load(ctx context.Context, key string, dst any) bool {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "summary cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "summary cache entry undecodable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (r *SummaryReader) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, string(payload), r.ttl); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "summary cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func listKey(filter types.SummaryFilter, page projection.PageRequest) string {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	customer := url.QueryEscape(strings.ToLower(strings.TrimSpace(filter.Customer)))
	return fmt.Sprintf("list:s=%s:c=%s:p=%d:n=%d:desc=%t",
		strings.Join(statuses, ","), customer, page.Page, page.Size, page.SortDesc)
}

// InvalidatingRebuilder bumps the cache generation after every successful rebuild.
type InvalidatingRebuilder struct {
	next  ports.ViewRebuilder
	cache platformcache.Cache
}

func NewInvalidatingRebuilder(next ports.ViewRebuilder, cache platformcache.Cache) *InvalidatingRebuilder {
	return &InvalidatingRebuilder{next: next, cache: cache}
}

func (r *InvalidatingRebuilder) Rebuild(ctx context.Context) error {
	if err := r.next.Rebuild(ctx); err != nil {
		return err
	}
	if _, err := r.cache.Incr(ctx, r.cache.GenerateKey("meta", generationKey)); err != nil {
		return fmt.Errorf("bump summary cache generation: %w", err)
	}
	return nil
}
