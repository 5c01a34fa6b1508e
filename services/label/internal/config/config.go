package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/SagaParticipants/pkg/config"
)

// Config holds all configuration for the label service.
type Config struct {
	pkgconfig.Service

	ServiceName string `env:"SERVICE_NAME" envDefault:"label-service"`
	Port        int    `env:"SERVICE_PORT" envDefault:"5004"`

	// Probability of a simulated label failure.
	FailureRate float64 `env:"FAILURE_RATE" envDefault:"0.2"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load label config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if err := pkgconfig.ValidatePort(c.Port); err != nil {
		return err
	}
	return pkgconfig.ValidateRate("FAILURE_RATE", c.FailureRate)
}
