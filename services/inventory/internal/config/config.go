package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/SagaParticipants/pkg/config"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
)

// Config holds all configuration for the inventory service.
type Config struct {
	pkgconfig.Service

	ServiceName string `env:"SERVICE_NAME" envDefault:"inventory-service"`
	Port        int    `env:"SERVICE_PORT" envDefault:"5002"`

	// Probability of a simulated stock update failure.
	FailureRate float64 `env:"FAILURE_RATE" envDefault:"0.3"`

	// Initial stock as "product:qty,product:qty". Empty means the built-in seed.
	Seed string `env:"INVENTORY_SEED"`

	// Decrement stock on every update_stock call, even for an order that
	// already holds an allocation.
	PerCallDecrement bool `env:"INVENTORY_PER_CALL_DECREMENT" envDefault:"false"`

	stock map[string]int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load inventory config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Stock returns the parsed initial stock.
func (c *Config) Stock() map[string]int {
	if c.stock == nil {
		seed, err := domain.ParseSeed(c.Seed)
		if err != nil {
			return domain.DefaultSeed
		}
		c.stock = seed
	}
	return c.stock
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if err := pkgconfig.ValidatePort(c.Port); err != nil {
		return err
	}
	if err := pkgconfig.ValidateRate("FAILURE_RATE", c.FailureRate); err != nil {
		return err
	}
	seed, err := domain.ParseSeed(c.Seed)
	if err != nil {
		return fmt.Errorf("invalid INVENTORY_SEED: %w", err)
	}
	c.stock = seed
	return nil
}
