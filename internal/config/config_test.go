package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
	assert.Equal(t, DefaultRateLimitWindow, cfg.RateLimitWindow)
	assert.Equal(t, DefaultRateLimitRequests, cfg.RateLimitRequests)
	assert.Equal(t, DefaultAnalyticsCapacity, cfg.AnalyticsCapacity)
	assert.Empty(t, cfg.DataPath)
	assert.Zero(t, cfg.ToolTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvServerPort, "9090")
	t.Setenv(EnvRateLimitWindowMs, "60000")
	t.Setenv(EnvRateLimitMax, "5")
	t.Setenv(EnvDataPath, "/var/lib/portfolio/data.yaml")
	t.Setenv(EnvAnalyticsCapacity, "0")
	t.Setenv(EnvToolTimeoutMs, "2500")

	cfg := Load()
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, "/var/lib/portfolio/data.yaml", cfg.DataPath)
	assert.Zero(t, cfg.AnalyticsCapacity)
	assert.Equal(t, 2500*time.Millisecond, cfg.ToolTimeout)
}

func TestLoad_IgnoresGarbage(t *testing.T) {
	t.Setenv(EnvServerPort, "not-a-port")
	t.Setenv(EnvRateLimitMax, "-10")

	cfg := Load()
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
	assert.Equal(t, DefaultRateLimitRequests, cfg.RateLimitRequests)
}
