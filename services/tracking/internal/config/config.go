package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/SagaParticipants/pkg/config"
)

// Config holds all configuration for the tracking service. Tracking never
// injects failures.
type Config struct {
	pkgconfig.Service

	ServiceName string `env:"SERVICE_NAME" envDefault:"tracking-service"`
	Port        int    `env:"SERVICE_PORT" envDefault:"5009"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load tracking config: %w", err)
	}
	if err := cfg.Service.Validate(); err != nil {
		return nil, err
	}
	if err := pkgconfig.ValidatePort(cfg.Port); err != nil {
		return nil, err
	}
	return cfg, nil
}
