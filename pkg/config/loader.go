package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings. Embedded structs such
// as Service are parsed too, so every participant shares the same names for
// the common settings.
//
// Example:
//
//	type Config struct {
//	    config.Service
//	    Port int `env:"SERVICE_PORT" envDefault:"5004"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Service holds the settings every participant reads at startup.
type Service struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	ReadTimeoutSecs     int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	WriteTimeoutSecs    int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"15"`
	ShutdownTimeoutSecs int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Kafka command channel
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// Validate checks the shared invariants.
func (s Service) Validate() error {
	if s.ReadTimeoutSecs <= 0 || s.WriteTimeoutSecs <= 0 {
		return fmt.Errorf("HTTP timeouts must be > 0, got read=%d write=%d", s.ReadTimeoutSecs, s.WriteTimeoutSecs)
	}
	if s.ShutdownTimeoutSecs <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be > 0, got %d", s.ShutdownTimeoutSecs)
	}
	if s.OTELSampleRate < 0 || s.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", s.OTELSampleRate)
	}
	if s.KafkaEnabled && len(s.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}

// ShutdownTimeout returns the graceful shutdown budget.
func (s Service) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSecs) * time.Second
}

// ValidatePort reports an out-of-range listen port.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid SERVICE_PORT: %d", port)
	}
	return nil
}

// ValidateRate reports a failure probability outside [0, 1].
func ValidateRate(name string, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("%s must be between 0.0 and 1.0, got %f", name, rate)
	}
	return nil
}
