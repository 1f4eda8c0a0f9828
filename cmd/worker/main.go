package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordercache "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/cache"
	orderspostgres "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	platformcache "github.com/Apurer/go-gin-orders-cqrs/internal/platform/cache"
	"github.com/Apurer/go-gin-orders-cqrs/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-cqrs/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-cqrs/internal/platform/postgres"
	orderactivities "github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectDSN(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanupDB()
	if db == nil {
		logger.Error("worker requires postgres; the order summary view lives in the database")
		return
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("failed to migrate order schema", slog.String("error", err.Error()))
		return
	}

	rebuilder, closeCache := withCacheInvalidation(ctx, logger, orderspostgres.NewViewRefresher(db))
	defer closeCache()
	refreshActivities := orderactivities.NewActivities(rebuilder)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		return
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		return
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderSummaryRefreshTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderSummaryRefreshWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderSummaryRefreshWorkflowName})
	w.RegisterActivityWithOptions(refreshActivities.RefreshOrderSummary, activity.RegisterOptions{Name: orderactivities.RefreshOrderSummaryActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderSummaryRefreshTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// withCacheInvalidation bumps the api's summary cache generation after each
// successful refresh. Without REDIS_ADDR the api's cached summaries only
// expire by TTL, which is logged.
func withCacheInvalidation(ctx context.Context, logger *slog.Logger, refresher ports.ViewRebuilder) (ports.ViewRebuilder, func()) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		logger.Warn("REDIS_ADDR not set, api summary caches will serve stale data until they expire",
			slog.Duration("ttl", ordercache.DefaultTTL))
		return refresher, func() {}
	}
	prefix := envOrDefault("CACHE_KEY_PREFIX", ordercache.DefaultKeyPrefix)
	cache := platformcache.NewRedisCache(addr, prefix)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := platformcache.Ping(pingCtx, cache); err != nil {
		logger.Warn("redis unavailable, api summary caches will expire by TTL only", slog.String("error", err.Error()))
		_ = cache.Close()
		return refresher, func() {}
	}
	logger.Info("summary cache invalidation enabled", slog.String("addr", addr), slog.String("prefix", prefix))
	return ordercache.NewInvalidatingRebuilder(refresher, cache), func() { _ = cache.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
