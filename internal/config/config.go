// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Defaults live in New; Load layers a YAML file and env vars on top.
//   - Keys are flat snake_case so env vars map 1:1 (FAIRDESK_BACKEND_URL -> backend_url).
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the base URL of the backend-as-a-service project.
	BackendURL string `koanf:"backend_url"`
	// BackendAnonKey is sent as apikey on public calls.
	BackendAnonKey string `koanf:"backend_anon_key"`
	// BackendServiceKey is used for privileged reads (admin profile lookup).
	BackendServiceKey string `koanf:"backend_service_key"`
	// BackendTimeoutMS bounds a single backend round trip.
	BackendTimeoutMS int `koanf:"backend_timeout_ms"`
	// LookupLang is the fixed locale tag sent with attendee lookups.
	LookupLang string `koanf:"lookup_lang"`

	// RedisAddr enables the stats cache when non-empty.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	// StatsCacheTTLSec is how long dashboard and location reports are cached.
	StatsCacheTTLSec int `koanf:"stats_cache_ttl_sec"`

	// ShutdownTimeoutSec bounds graceful HTTP shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	// MetricsSite, when set, is attached to every metric as a site label.
	MetricsSite string `koanf:"metrics_site"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		BackendTimeoutMS:   10_000,
		LookupLang:         "tr",
		RedisDB:            0,
		StatsCacheTTLSec:   30,
		ShutdownTimeoutSec: 30,
		MetricsNamespace:   "fairdesk",
	}
}

// BackendTimeout returns BackendTimeoutMS as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMS) * time.Millisecond
}

// StatsCacheTTL returns StatsCacheTTLSec as a duration.
func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSec) * time.Second
}

// ShutdownTimeout returns ShutdownTimeoutSec as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
