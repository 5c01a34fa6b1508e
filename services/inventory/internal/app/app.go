package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/pkg/saga/sagakafka"
	"github.com/utafrali/SagaParticipants/pkg/server"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/config"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
	handler "github.com/utafrali/SagaParticipants/services/inventory/internal/handler/http"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/service"
)

// App wires together all dependencies and runs the inventory service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	server      *server.Server
	ledger      *domain.StockLedger
	participant *service.Participant
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv, err := server.New(ctx, server.Config{
		Name:    cfg.ServiceName,
		Port:    cfg.Port,
		Service: cfg.Service,
	}, logger)
	if err != nil {
		return nil, err
	}

	ledger := domain.NewStockLedger(cfg.Stock())
	participant := service.NewParticipant(cfg, ledger, saga.FaultsFor(cfg.FailureRate), logger)
	logger.Info("inventory participant initialized",
		slog.Any("products", ledger.Products()),
		slog.Float64("failure_rate", cfg.FailureRate),
		slog.Bool("per_call_decrement", cfg.PerCallDecrement),
	)
	if cfg.PerCallDecrement {
		logger.Warn("per-call decrement enabled: retried update_stock calls take stock again")
	}

	handler.RegisterRoutes(srv.Router(), participant, ledger, logger)

	if err := srv.RegisterCollector(saga.NewRecordsCollector(cfg.ServiceName, domain.Resource, participant)); err != nil {
		return nil, fmt.Errorf("register inventory metrics: %w", err)
	}
	if err := srv.RegisterCollector(service.NewStockCollector(cfg.ServiceName, ledger)); err != nil {
		return nil, fmt.Errorf("register stock metrics: %w", err)
	}

	if pub := srv.Publisher(); pub != nil {
		bridge := sagakafka.NewBridge(participant, pub, logger)
		srv.Subscribe(bridge.CommandTopic(), bridge.Handle)
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		server:      srv,
		ledger:      ledger,
		participant: participant,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run starts the HTTP server and command consumer, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}
