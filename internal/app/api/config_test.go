package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	ordercache "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/cache"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "REDIS_ADDR", "CACHE_KEY_PREFIX", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
		"REFRESH_MIN_INTERVAL_MS", "REFRESH_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, ordercache.DefaultKeyPrefix, cfg.CacheKeyPrefix)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	assert.False(t, cfg.TemporalDisabled)
	assert.Zero(t, cfg.RefreshMinInterval)
	assert.Equal(t, 30*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_DSN", " postgres://orders@localhost/orders ")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_KEY_PREFIX", "orders-eu")
	t.Setenv("TEMPORAL_DISABLED", "Yes")
	t.Setenv("REFRESH_MIN_INTERVAL_MS", "250")
	t.Setenv("REFRESH_TIMEOUT_SECONDS", "5")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "postgres://orders@localhost/orders", cfg.PostgresDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "orders-eu", cfg.CacheKeyPrefix)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshMinInterval)
	assert.Equal(t, 5*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfig_RejectsInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		"PORT":                     "http",
		"REFRESH_MIN_INTERVAL_MS":  "-1",
		"REFRESH_TIMEOUT_SECONDS":  "0",
		"SHUTDOWN_TIMEOUT_SECONDS": "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
