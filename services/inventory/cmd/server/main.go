package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/SagaParticipants/pkg/logger"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/app"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/config"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	log.Info("starting inventory service",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.Port),
		slog.Bool("kafka_enabled", cfg.KafkaEnabled),
		slog.Bool("per_call_decrement", cfg.PerCallDecrement),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("inventory service stopped")
}
