// Package server is the runtime shared by every participant binary: HTTP
// router and middleware, health and metrics endpoints, tracing, and the
// optional Kafka command channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/SagaParticipants/pkg/config"
	"github.com/utafrali/SagaParticipants/pkg/health"
	pkgkafka "github.com/utafrali/SagaParticipants/pkg/kafka"
	"github.com/utafrali/SagaParticipants/pkg/middleware"
	"github.com/utafrali/SagaParticipants/pkg/tracing"
)

// Config identifies the participant and carries its shared settings.
type Config struct {
	// Name is the service name, e.g. "payment-service".
	Name    string
	Port    int
	Service config.Service
}

// Server owns the HTTP server and the Kafka clients of one participant.
type Server struct {
	cfg            Config
	logger         *slog.Logger
	health         *health.Handler
	router         *chi.Mux
	httpServer     *http.Server
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	tracerShutdown func(context.Context) error
}

// New initializes tracing, the router, and (when enabled) the Kafka clients.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.FromService(cfg.Name, cfg.Service))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler(cfg.Name)
	router := NewRouter(cfg.Name, healthHandler, logger)

	s := &Server{
		cfg:            cfg,
		logger:         logger,
		health:         healthHandler,
		router:         router,
		tracerShutdown: tracerShutdown,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadTimeout:       time.Duration(cfg.Service.ReadTimeoutSecs) * time.Second,
			WriteTimeout:      time.Duration(cfg.Service.WriteTimeoutSecs) * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.Service.KafkaEnabled {
		brokers := cfg.Service.KafkaBrokers
		s.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(brokers), logger)
		s.dlq = pkgkafka.NewDLQProducer(brokers, logger)
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, brokers)
		})

		if err := pingKafkaWithRetry(ctx, s.producer, logger); err != nil {
			logger.Warn("kafka ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", brokers))
		}
	}

	return s, nil
}

// NewRouter creates a chi router with the shared middleware chain and the
// health and metrics endpoints. Participants add their action routes to it.
func NewRouter(service string, healthHandler *health.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(service))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(service))

	r.Get("/health", healthHandler.ServiceHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Router returns the router for mounting participant routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Health returns the health handler so participants can add checks.
func (s *Server) Health() *health.Handler {
	return s.health
}

// KafkaEnabled reports whether the command channel is configured.
func (s *Server) KafkaEnabled() bool {
	return s.producer != nil
}

// Publisher returns the reply publisher, or nil when Kafka is disabled.
func (s *Server) Publisher() pkgkafka.Publisher {
	if s.producer == nil {
		return nil
	}
	return s.producer
}

// Subscribe consumes topic with handler once Run starts. It is a no-op when
// Kafka is disabled. The consumer group is the service name.
func (s *Server) Subscribe(topic string, handler pkgkafka.Handler) {
	if s.producer == nil {
		return
	}
	s.consumers = append(s.consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  s.cfg.Service.KafkaBrokers,
		GroupID:  s.cfg.Name,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, handler, s.dlq, s.logger))
	s.logger.Info("kafka command channel enabled", slog.String("topic", topic))
}

// RegisterCollector registers c with the default Prometheus registry. A
// collector that is already registered is not an error.
func (s *Server) RegisterCollector(c prometheus.Collector) error {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}

// Run starts the HTTP server and consumers, then blocks until the context
// is canceled or a component fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(s.consumers))

	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	for _, c := range s.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("command consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = s.Shutdown()
		return err
	}

	return s.Shutdown()
}

// Shutdown stops components in order: HTTP server (drain in-flight
// requests), tracer (flush spans from drained requests), consumers, then
// producers.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down participant...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), s.cfg.Service.ShutdownTimeout())
	defer httpCancel()
	if err := s.httpServer.Shutdown(httpCtx); err != nil {
		s.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if s.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := s.tracerShutdown(tracerCtx); err != nil {
			s.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	for _, c := range s.consumers {
		if err := c.Close(); err != nil {
			s.logger.Error("consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if s.dlq != nil {
		if err := s.dlq.Close(); err != nil {
			s.logger.Error("dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	s.logger.Info("participant shutdown complete")
	return errors.Join(errs...)
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka ping failed after 3 attempts: %w", lastErr)
}
