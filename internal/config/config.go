// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime configuration, sourced from the
// environment (a .env file is loaded by the entrypoint before parsing).
type Config struct {
	// Addr is the listen address. ":0" or "127.0.0.1:0" picks an
	// ephemeral port, which the test harness relies on.
	Addr string `env:"ADDR" envDefault:":8080"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// MetricsNamespace prefixes every prometheus instrument.
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"lostinspace"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
