package config

import "fmt"

// SentryConfig enables error reporting to Sentry. An empty DSN keeps
// reporting off.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// TracesSampleRate is the fraction of runs traced, 0 to 1.
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }

// SetDefaults names the environment when reporting is on.
func (c *SentryConfig) SetDefaults() {
	if c.Enabled() && c.Environment == "" {
		c.Environment = "production"
	}
}

// Validate checks the sample rate.
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1], got %g", c.TracesSampleRate)
	}
	return nil
}
