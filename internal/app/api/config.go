package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	ordercache "github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/adapters/cache"
)

const (
	defaultRefreshTimeout  = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	CacheKeyPrefix    string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// RefreshMinInterval rate-limits in-process summary rebuilds. Zero disables the limit.
	RefreshMinInterval time.Duration
	RefreshTimeout     time.Duration
	ShutdownTimeout    time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		CacheKeyPrefix:    envDefault("CACHE_KEY_PREFIX", ordercache.DefaultKeyPrefix),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RefreshTimeout:    defaultRefreshTimeout,
		ShutdownTimeout:   defaultShutdownTimeout,
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if ms, ok, err := envInt("REFRESH_MIN_INTERVAL_MS", 0); err != nil {
		return Config{}, err
	} else if ok {
		cfg.RefreshMinInterval = time.Duration(ms) * time.Millisecond
	}
	if secs, ok, err := envInt("REFRESH_TIMEOUT_SECONDS", 1); err != nil {
		return Config{}, err
	} else if ok {
		cfg.RefreshTimeout = time.Duration(secs) * time.Second
	}
	if secs, ok, err := envInt("SHUTDOWN_TIMEOUT_SECONDS", 1); err != nil {
		return Config{}, err
	} else if ok {
		cfg.ShutdownTimeout = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// envInt parses key as an integer no smaller than floor. ok is false when the
// variable is unset.
func envInt(key string, floor int) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < floor {
		return 0, false, fmt.Errorf("%s must be an integer >= %d, got %q", key, floor, raw)
	}
	return value, true, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
