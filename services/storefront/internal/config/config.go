package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/pr-poehali-dev/fashion-store-creation/pkg/config"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httpclient"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/tracing"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8020"`

	// Visitor carts and favorites are dropped after this much inactivity.
	SessionIdleMinutes int `env:"SESSION_IDLE_MINUTES" envDefault:"120"`

	// Review endpoint
	ReviewsAPIURL         string `env:"REVIEWS_API_URL" envDefault:"http://localhost:8010/reviews"`
	ReviewsTimeoutSeconds int    `env:"REVIEWS_TIMEOUT_SECONDS" envDefault:"10"`

	// Circuit breaker around the review endpoint
	BreakerMaxRequests     uint32  `env:"REVIEWS_BREAKER_MAX_REQUESTS" envDefault:"1"`
	BreakerIntervalSeconds int     `env:"REVIEWS_BREAKER_INTERVAL_SECONDS" envDefault:"60"`
	BreakerTimeoutSeconds  int     `env:"REVIEWS_BREAKER_TIMEOUT_SECONDS" envDefault:"30"`
	BreakerFailureRatio    float64 `env:"REVIEWS_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests     uint32  `env:"REVIEWS_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Profiler access
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:"," envDefault:"127.0.0.1/32,::1/128"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := pkgconfig.ValidatePort("HTTP port", c.HTTPPort); err != nil {
		return err
	}
	u, err := url.Parse(c.ReviewsAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("REVIEWS_API_URL must be an absolute http(s) URL, got %q", c.ReviewsAPIURL)
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive, got %d", c.SessionIdleMinutes)
	}
	if c.ReviewsTimeoutSeconds < 1 {
		return fmt.Errorf("REVIEWS_TIMEOUT_SECONDS must be positive, got %d", c.ReviewsTimeoutSeconds)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1.0 {
		return fmt.Errorf("REVIEWS_BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.BreakerFailureRatio)
	}
	if c.BreakerTimeoutSeconds < 1 {
		return fmt.Errorf("REVIEWS_BREAKER_TIMEOUT_SECONDS must be positive, got %d", c.BreakerTimeoutSeconds)
	}
	if c.BreakerIntervalSeconds < 0 {
		return fmt.Errorf("REVIEWS_BREAKER_INTERVAL_SECONDS must not be negative, got %d", c.BreakerIntervalSeconds)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// SessionIdle returns how long an inactive visitor's state is kept.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// HTTPClient returns the transport settings for review endpoint calls.
func (c *Config) HTTPClient() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = time.Duration(c.ReviewsTimeoutSeconds) * time.Second
	return cfg
}

// Breaker returns the circuit breaker settings for the review endpoint.
func (c *Config) Breaker() httpclient.CircuitBreakerConfig {
	cfg := httpclient.DefaultCircuitBreakerConfig("reviews-service")
	cfg.MaxRequests = c.BreakerMaxRequests
	cfg.Interval = time.Duration(c.BreakerIntervalSeconds) * time.Second
	cfg.Timeout = time.Duration(c.BreakerTimeoutSeconds) * time.Second
	cfg.FailureRatio = c.BreakerFailureRatio
	cfg.MinRequests = c.BreakerMinRequests
	return cfg
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing(serviceName string) tracing.Config {
	cfg := tracing.DefaultConfig(serviceName)
	cfg.Environment = c.Environment
	cfg.OTLPEndpoint = c.OTELEndpoint
	cfg.SampleRate = c.OTELSampleRate
	cfg.Enabled = c.OTELEnabled
	return cfg
}
