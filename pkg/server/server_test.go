package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/SagaParticipants/pkg/config"
	"github.com/utafrali/SagaParticipants/pkg/health"
	pkgkafka "github.com/utafrali/SagaParticipants/pkg/kafka"
	"github.com/utafrali/SagaParticipants/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() Config {
	return Config{
		Name: "label-service",
		Port: 0,
		Service: config.Service{
			Environment:         "test",
			ReadTimeoutSecs:     5,
			WriteTimeoutSecs:    5,
			ShutdownTimeoutSecs: 1,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_HealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var status health.ServiceStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, health.ServiceStatus{Service: "label-service", Status: "healthy"}, status)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/health/live").Code)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/health/ready").Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s.Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_MountedRoutesGetMiddleware(t *testing.T) {
	s := newTestServer(t)
	s.Router().Post("/generate_label", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/generate_label", nil)
	req.Header.Set(middleware.CorrelationHeader, "corr-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "corr-1", rec.Header().Get(middleware.CorrelationHeader))
}

func TestServer_PanicIsRecovered(t *testing.T) {
	s := newTestServer(t)
	s.Router().Post("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_KafkaDisabled(t *testing.T) {
	s := newTestServer(t)

	assert.False(t, s.KafkaEnabled())
	assert.Nil(t, s.Publisher())

	s.Subscribe("saga.label.commands", func(context.Context, *pkgkafka.Event) error { return nil })
	assert.Empty(t, s.consumers)
	assert.Empty(t, s.Health().Names())
}

func TestServer_RegisterCollectorTwice(t *testing.T) {
	s := newTestServer(t)
	c := prometheus.NewGauge(prometheus.GaugeOpts{Name: "server_test_collector", Help: "test"})

	require.NoError(t, s.RegisterCollector(c))
	assert.NoError(t, s.RegisterCollector(c))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
