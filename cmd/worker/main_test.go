package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct{ calls int }

func (r *countingRefresher) Rebuild(context.Context) error {
	r.calls++
	return nil
}

func TestWithCacheInvalidation_WarnsWithoutRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	var logs bytes.Buffer
	refresher := &countingRefresher{}

	rebuilder, closeCache := withCacheInvalidation(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)), refresher)
	defer closeCache()

	assert.Same(t, refresher, rebuilder)
	assert.Contains(t, logs.String(), "REDIS_ADDR not set")
	assert.Contains(t, logs.String(), "ttl=5m0s")
}

func TestWithCacheInvalidation_UnreachableRedisFallsBack(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	var logs bytes.Buffer
	refresher := &countingRefresher{}

	rebuilder, closeCache := withCacheInvalidation(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)), refresher)
	defer closeCache()

	assert.Same(t, refresher, rebuilder)
	assert.Contains(t, logs.String(), "redis unavailable")
	assert.NoError(t, rebuilder.Rebuild(context.Background()))
	assert.Equal(t, 1, refresher.calls)
}
