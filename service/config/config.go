package config

import (
	"fmt"
	"os"
	"time"
)

// Defaults for optional settings.
const (
	DefaultWebsocketURL  = "wss://xrplcluster.com"
	DefaultSubmitDelay   = 2 * time.Second
	DefaultSubmitTimeout = 30 * time.Second
)

// Config holds all tool configuration loaded from environment variables.
// CLI flags may override individual fields; validation happens before any
// network activity so misconfiguration fails fast.
type Config struct {
	// WebsocketURL is the XRPL endpoint the batch connects to once and
	// holds for the whole run.
	WebsocketURL string

	LogLevel string

	// DatabaseURL enables the outcome audit store when set.
	DatabaseURL string

	// NATSURL enables outcome event publishing when set.
	NATSURL string

	// SubmitDelay is the default inter-submission pacing delay.
	SubmitDelay time.Duration

	// SubmitTimeout bounds each ledger request; expiry is treated as a
	// transport failure.
	SubmitTimeout time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.WebsocketURL = getEnvOrDefault("XRPL_WS_URL", DefaultWebsocketURL)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.NATSURL = os.Getenv("NATS_URL")

	delay, err := parseDuration("SUBMIT_DELAY", DefaultSubmitDelay)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.SubmitDelay = delay
	}

	timeout, err := parseDuration("SUBMIT_TIMEOUT", DefaultSubmitTimeout)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.SubmitTimeout = timeout
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration without touching the environment.
func (c *Config) Validate() error {
	var errs []error

	if c.WebsocketURL == "" {
		errs = append(errs, fmt.Errorf("WebsocketURL is required"))
	}
	if c.SubmitDelay < 0 {
		errs = append(errs, fmt.Errorf("SubmitDelay cannot be negative"))
	}
	if c.SubmitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SubmitTimeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
