package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	orderserver "github.com/Apurer/go-gin-orders-cqrs/go"

	ordercache "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/cache"
	ordersmemory "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	platformcache "github.com/Apurer/go-gin-orders-cqrs/internal/platform/cache"
	"github.com/Apurer/go-gin-orders-cqrs/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-cqrs/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-cqrs/internal/platform/postgres"
)

const serviceName = "orders-api"

// Run boots the Orders HTTP API with observability, persistence, the read
// model refresher, and workflows wired. It returns when ctx is cancelled and
// the server has drained.
func Run(ctx context.Context) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, cleanupDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	adapters, err := buildAdapters(db, logger)
	if err != nil {
		return err
	}

	summaries := adapters.summaries
	localRebuilder := adapters.rebuilder
	cache, cached := connectCache(ctx, cfg, logger)
	if cached {
		defer cache.Close()
		summaries = ordercache.NewSummaryReader(summaries, cache, ordercache.WithLogger(logger))
		localRebuilder = ordercache.NewInvalidatingRebuilder(localRebuilder, cache)
	}

	rebuilder := localRebuilder
	if db != nil {
		if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
			logger.Warn("Temporal workflows unavailable, refreshing order summaries in-process", slog.String("error", err.Error()))
		} else {
			defer temporalClient.Close()
			rebuilder = ordersworkflows.NewTemporalRefreshTrigger(temporalClient)
			logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
			if cached {
				logger.Warn("summary cache is invalidated by the refresh worker; it must use the same REDIS_ADDR and CACHE_KEY_PREFIX",
					slog.String("addr", cfg.RedisAddr), slog.String("prefix", cfg.CacheKeyPrefix))
			}
		}
	}

	notifier := ordersapp.NewViewRefreshNotifier(
		rebuilder,
		ordersapp.WithNotifierLogger(logger),
		ordersapp.WithNotifierMeter(instruments.Meter("internal.orders.application")),
		ordersapp.WithMinInterval(cfg.RefreshMinInterval),
		ordersapp.WithAttemptTimeout(cfg.RefreshTimeout),
	)
	coreService := ordersapp.NewService(adapters.uow, ordersapp.WithRefreshScheduler(notifier))
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	queries := ordersapp.NewQueryService(summaries, adapters.live)

	responder := orderserver.NewProblemResponder(logger)
	handlers := orderserver.ApiHandleFunctions{
		OrderCommandsAPI: orderserver.NewOrderCommandsAPI(orderService, responder),
		OrderQueriesAPI:  orderserver.NewOrderQueriesAPI(queries, responder),
	}
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := orderserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The notifier outlives the server so refreshes requested by in-flight
	// requests are still flushed.
	notifierCtx, stopNotifier := context.WithCancel(context.WithoutCancel(ctx))
	defer stopNotifier()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notifier.Run(notifierCtx)
	})
	g.Go(func() error {
		logger.Info("Orders API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopNotifier()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Orders API shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// orderAdapters is the set of ports backed by either postgres or memory.
type orderAdapters struct {
	uow       ordersports.UnitOfWork
	summaries ordersports.SummaryReader
	live      ordersports.OrderReader
	rebuilder ordersports.ViewRebuilder
}

func buildAdapters(db *gorm.DB, logger *slog.Logger) (orderAdapters, error) {
	if db == nil {
		store := ordersmemory.NewStore()
		view := ordersmemory.NewSummaryView(store)
		return orderAdapters{
			uow:       store,
			summaries: view,
			live:      ordersmemory.NewLiveReader(store),
			rebuilder: view,
		}, nil
	}
	if err := migrations.Run(db); err != nil {
		return orderAdapters{}, fmt.Errorf("failed to migrate order schema: %w", err)
	}
	logger.Info("order repositories configured with postgres")
	return orderAdapters{
		uow:       orderspostgres.NewUnitOfWork(db),
		summaries: orderspostgres.NewViewReader(db),
		live:      orderspostgres.NewLiveReader(db),
		rebuilder: orderspostgres.NewViewRefresher(db),
	}, nil
}

func connectCache(ctx context.Context, cfg Config, logger *slog.Logger) (platformcache.Cache, bool) {
	if cfg.RedisAddr == "" {
		return nil, false
	}
	cache := platformcache.NewRedisCache(cfg.RedisAddr, cfg.CacheKeyPrefix)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := platformcache.Ping(pingCtx, cache); err != nil {
		logger.Warn("redis unavailable, serving summaries without cache", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		_ = cache.Close()
		return nil, false
	}
	logger.Info("summary cache configured with redis", slog.String("addr", cfg.RedisAddr))
	return cache, true
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
