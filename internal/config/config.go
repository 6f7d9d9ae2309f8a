// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load(ctx) layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Default configuration constants.
const (
	defaultAPIBaseURL    = "http://localhost:9080"
	defaultHTTPTimeoutMS = 10_000
	defaultSessionDBPath = "levelup.db"
)

// Config contains client configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIBaseURL is the base URL of the remote scoring service.
	APIBaseURL string `koanf:"api_base_url"`

	// HTTPTimeoutMS bounds every remote call.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// SessionDBPath locates the SQLite file holding the persisted session.
	SessionDBPath string `koanf:"session_db_path"`

	// MetricsAddr, when non-empty, serves Prometheus metrics on that address.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		APIBaseURL:    defaultAPIBaseURL,
		HTTPTimeoutMS: defaultHTTPTimeoutMS,
		SessionDBPath: defaultSessionDBPath,
		MetricsAddr:   "",
	}
}

// HTTPTimeout returns the remote-call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}
