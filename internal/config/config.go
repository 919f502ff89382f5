// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Accepted values for the response style settings.
var (
	statusPolicies = []string{"standard", "legacy", "soft"}
	envelopes      = []string{"nested", "flat"}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"json", "text"}
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Credit API
	UpstreamBaseURL string        `env:"UPSTREAM_BASE_URL" envDefault:"https://app1.gerencialcredito.com.br/microservice/crefisa/10431/captura"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// Response rendering
	ResponseStatusPolicy string `env:"RESPONSE_STATUS_POLICY" envDefault:"standard"`
	ResponseEnvelope     string `env:"RESPONSE_ENVELOPE" envDefault:"nested"`

	// Key for CPF log fingerprints. Empty means a random key per process.
	CPFFingerprintKey string `env:"CPF_FINGERPRINT_KEY"`

	// Redis is optional; without it rate limits are kept in process.
	RedisURL string `env:"REDIS_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-IP rate limiting
	RateLimitEnabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Comma-separated, e.g. "https://example.com,*.example.org"
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins returns the configured origins without blanks.
func (c *Config) GetCORSAllowedOrigins() []string {
	result := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, origin := range c.CORSAllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if !oneOf(c.ResponseStatusPolicy, statusPolicies) {
		errs = append(errs, fmt.Errorf("RESPONSE_STATUS_POLICY must be one of %v, got %q", statusPolicies, c.ResponseStatusPolicy))
	}
	if !oneOf(c.ResponseEnvelope, envelopes) {
		errs = append(errs, fmt.Errorf("RESPONSE_ENVELOPE must be one of %v, got %q", envelopes, c.ResponseEnvelope))
	}
	if !oneOf(strings.ToLower(c.LogLevel), logLevels) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %v, got %q", logLevels, c.LogLevel))
	}
	if !oneOf(strings.ToLower(c.LogFormat), logFormats) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of %v, got %q", logFormats, c.LogFormat))
	}

	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute http(s) URL, got %q", c.UpstreamBaseURL))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout))
	}

	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.AppPort))
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive, got %d", c.MaxRequestBodySize))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
