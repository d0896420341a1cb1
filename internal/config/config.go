// Package config provides configuration for the portfolio tool server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults.
const (
	DefaultServerPort        = 38080
	DefaultRateLimitWindow   = 15 * time.Minute
	DefaultRateLimitRequests = 100
	DefaultAnalyticsCapacity = 10000
)

// Environment variable names.
const (
	EnvServerPort        = "PORTFOLIO_SERVER_PORT"
	EnvRateLimitWindowMs = "PORTFOLIO_RATE_LIMIT_WINDOW_MS"
	EnvRateLimitMax      = "PORTFOLIO_RATE_LIMIT_MAX_REQUESTS"
	EnvDataPath          = "PORTFOLIO_DATA_PATH"
	EnvAnalyticsCapacity = "PORTFOLIO_ANALYTICS_CAPACITY"
	EnvToolTimeoutMs     = "PORTFOLIO_TOOL_TIMEOUT_MS"
)

// Config holds the application configuration.
type Config struct {
	// DataPath points at the dataset YAML file. Empty means the embedded
	// default dataset, with no file watching.
	DataPath string

	ServerPort int

	// Rate limiter settings.
	RateLimitWindow   time.Duration
	RateLimitRequests int

	// AnalyticsCapacity bounds the in-memory event log (0 = unbounded).
	AnalyticsCapacity int

	// ToolTimeout caps handler execution time (0 = no timeout).
	ToolTimeout time.Duration
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		ServerPort:        DefaultServerPort,
		RateLimitWindow:   DefaultRateLimitWindow,
		RateLimitRequests: DefaultRateLimitRequests,
		AnalyticsCapacity: DefaultAnalyticsCapacity,
	}
}

// Load builds the configuration from defaults merged with environment
// variables. Unparseable values fall back to defaults.
func Load() *Config {
	cfg := Default()

	if v := envInt(EnvServerPort); v > 0 {
		cfg.ServerPort = v
	}
	if v := envInt(EnvRateLimitWindowMs); v > 0 {
		cfg.RateLimitWindow = time.Duration(v) * time.Millisecond
	}
	if v := envInt(EnvRateLimitMax); v > 0 {
		cfg.RateLimitRequests = v
	}
	if v := os.Getenv(EnvDataPath); v != "" {
		cfg.DataPath = v
	}
	if v, ok := envIntOK(EnvAnalyticsCapacity); ok && v >= 0 {
		cfg.AnalyticsCapacity = v
	}
	if v := envInt(EnvToolTimeoutMs); v > 0 {
		cfg.ToolTimeout = time.Duration(v) * time.Millisecond
	}

	return cfg
}

func envInt(name string) int {
	v, _ := envIntOK(name)
	return v
}

func envIntOK(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
