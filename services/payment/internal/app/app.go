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
	"github.com/utafrali/SagaParticipants/services/payment/internal/config"
	"github.com/utafrali/SagaParticipants/services/payment/internal/domain"
	handler "github.com/utafrali/SagaParticipants/services/payment/internal/handler/http"
	"github.com/utafrali/SagaParticipants/services/payment/internal/provider/mock"
	"github.com/utafrali/SagaParticipants/services/payment/internal/service"
)

// App wires together all dependencies and runs the payment service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	server      *server.Server
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

	prov := mock.NewProvider()
	participant := service.NewParticipant(cfg, prov, saga.FaultsFor(cfg.FailureRate), logger)
	logger.Info("payment participant initialized",
		slog.String("provider", prov.Name()),
		slog.Float64("failure_rate", cfg.FailureRate),
		slog.Bool("fault_before_replay", cfg.FaultBeforeReplay),
	)

	handler.RegisterRoutes(srv.Router(), participant, logger)

	if err := srv.RegisterCollector(saga.NewRecordsCollector(cfg.ServiceName, domain.Resource, participant)); err != nil {
		return nil, fmt.Errorf("register payment metrics: %w", err)
	}

	if pub := srv.Publisher(); pub != nil {
		bridge := sagakafka.NewBridge(participant, pub, logger)
		srv.Subscribe(bridge.CommandTopic(), bridge.Handle)
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		server:      srv,
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
