package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/SagaParticipants/pkg/config"
)

// Config holds all configuration for the payment service.
type Config struct {
	pkgconfig.Service

	ServiceName string `env:"SERVICE_NAME" envDefault:"payment-service"`
	Port        int    `env:"SERVICE_PORT" envDefault:"5007"`

	// Probability of a simulated charge failure.
	FailureRate float64 `env:"FAILURE_RATE" envDefault:"0.15"`

	// When set, the failure is drawn before the duplicate check, so a retry
	// of an already processed order can still fail.
	FaultBeforeReplay bool `env:"PAYMENT_FAULT_BEFORE_REPLAY" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load payment config: %w", err)
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
