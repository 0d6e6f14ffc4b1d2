// Package config defines relay configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Load and validation errors wrap this package's sentinel kinds.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default values applied by New.
const (
	DefaultPort            = 3000
	DefaultUpstreamBaseURL = "https://api.twitter.com/2"
	maxPort                = 65535
)

// Config contains process configuration resolved once at startup.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Port is the HTTP listen port.
	Port int `koanf:"port"`
	// UpstreamBaseURL is the API root every relayed resource is resolved against.
	UpstreamBaseURL string `koanf:"upstream_base_url"`
	// UpstreamTimeoutMS bounds each upstream call. Zero leaves the client without a timeout.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`
	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Port:              DefaultPort,
		UpstreamBaseURL:   DefaultUpstreamBaseURL,
		UpstreamTimeoutMS: 0,
		MetricsEnabled:    true,
	}
}

// Addr returns the listen address derived from Port, e.g. ":3000".
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// UpstreamTimeout returns the upstream call timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > maxPort {
		return fmt.Errorf("%w: port must be in 1..%d, got %d", ErrInvalidConfig, maxPort, c.Port)
	}
	if c.UpstreamTimeoutMS < 0 {
		return fmt.Errorf("%w: upstream_timeout_ms must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil {
		return fmt.Errorf("%w: upstream_base_url: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: upstream_base_url must be an absolute http(s) URL", ErrInvalidConfig)
	}
	return nil
}
