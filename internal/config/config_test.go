package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "API_SECRET", "SESSION_SECRET", "STATE_CAPACITY", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "REDIS_ADDR"} {
		t.Setenv(v, "")
	}
	cfg := config.Load()

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Empty(t, cfg.GetAPISecret())
	require.Empty(t, cfg.GetSessionSecret())
	require.Equal(t, time.Hour, cfg.GetSessionTTL())
	require.Equal(t, 10*time.Minute, cfg.GetStateTTL())
	require.Equal(t, 10000, cfg.GetStateCapacity())
	require.InDelta(t, 0.1, cfg.GetStateEvictFraction(), 0.0001)
	require.Equal(t, 60, cfg.GetRateLimitMax())
	require.Equal(t, time.Minute, cfg.GetRateLimitWindow())
	require.Empty(t, cfg.GetRedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "PROD")
	t.Setenv("API_SECRET", "s3cr3t")
	t.Setenv("STATE_CAPACITY", "1000")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg := config.Load()
	require.Equal(t, ":9090", cfg.GetPort())
	require.Equal(t, "PROD", cfg.GetEnv())
	require.Equal(t, "s3cr3t", cfg.GetAPISecret())
	require.Equal(t, 1000, cfg.GetStateCapacity())
	require.Equal(t, 5, cfg.GetRateLimitMax())
	require.Equal(t, 30*time.Second, cfg.GetRateLimitWindow())
	require.Equal(t, "redis:6379", cfg.GetRedisAddr())
}

func TestLoad_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("STATE_CAPACITY", "not-a-number")
	t.Setenv("RATE_LIMIT_MAX", "-3")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := config.Load()
	require.Equal(t, 10000, cfg.GetStateCapacity())
	require.Equal(t, 60, cfg.GetRateLimitMax())
	require.Equal(t, time.Minute, cfg.GetRateLimitWindow())
}

func TestLoad_IsASnapshot(t *testing.T) {
	t.Setenv("API_SECRET", "before")
	cfg := config.Load()

	t.Setenv("API_SECRET", "after")
	require.Equal(t, "before", cfg.GetAPISecret())
	require.Equal(t, "after", config.Load().GetAPISecret())
}
