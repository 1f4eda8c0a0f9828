package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/go-gin-orders-cqrs/internal/platform/postgres"
)

const defaultTimeout = 60 * time.Second

// view-refresher rebuilds the order summary view once and exits. It is meant
// for cron jobs and for recovering after a refresh was abandoned.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutFromEnv())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectDSN(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot refresh order summaries")
	}

	started := time.Now()
	if err := orderspostgres.NewViewRefresher(db).Rebuild(ctx); err != nil {
		log.Fatalf("failed to refresh order summaries: %v", err)
	}
	logger.Info("order summary refresh completed", slog.Duration("elapsed", time.Since(started)))
}

func timeoutFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("REFRESH_TIMEOUT_SECONDS"))
	if raw == "" {
		return defaultTimeout
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return defaultTimeout
	}
	return time.Duration(secs) * time.Second
}
