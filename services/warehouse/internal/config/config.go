package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/SagaParticipants/pkg/config"
)

// Config holds all configuration for the warehouse service. Warehouse never
// injects failures.
type Config struct {
	pkgconfig.Service

	ServiceName string `env:"SERVICE_NAME" envDefault:"warehouse-service"`
	Port        int    `env:"SERVICE_PORT" envDefault:"5001"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load warehouse config: %w", err)
	}
	if err := cfg.Service.Validate(); err != nil {
		return nil, err
	}
	if err := pkgconfig.ValidatePort(cfg.Port); err != nil {
		return nil, err
	}
	return cfg, nil
}
