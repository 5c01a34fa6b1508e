package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// flakyParticipant answers /generate_label with status until it is changed.
type flakyParticipant struct {
	status atomic.Int32
	calls  atomic.Int32
	server *httptest.Server
}

func newFlakyParticipant(t *testing.T, status int) *flakyParticipant {
	t.Helper()
	p := &flakyParticipant{}
	p.status.Store(int32(status))
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		code := int(p.status.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		switch {
		case code >= 500:
			_, _ = w.Write([]byte(`{"error":{"code":"TRANSIENT_FAILURE","message":"simulated label failure"}}`))
		case code >= 400:
			_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"orderId is required"}}`))
		default:
			_, _ = w.Write([]byte(`{"label":{"labelId":"LBL-1234ABCD","status":"CREATED"}}`))
		}
	}))
	t.Cleanup(p.server.Close)
	return p
}

func testBreaker(t *testing.T, cooldown time.Duration) *Breaker {
	t.Helper()
	cfg := BreakerConfig{
		Participant:    "label-" + t.Name(),
		HalfOpenProbes: 1,
		Window:         time.Minute,
		Cooldown:       cooldown,
		TripRatio:      0.5,
		MinCalls:       3,
	}
	return NewBreaker(New(Config{Timeout: 5 * time.Second, MaxConnsPerHost: 4}), cfg, testLogger())
}

func generateLabel(t *testing.T, b *Breaker, p *flakyParticipant) (*http.Response, error) {
	t.Helper()
	return generateLabelCtx(context.Background(), t, b, p)
}

func generateLabelCtx(ctx context.Context, t *testing.T, b *Breaker, p *flakyParticipant) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.server.URL+"/generate_label", http.NoBody)
	require.NoError(t, err)
	resp, err := b.Call(ctx, req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusCreated)
	b := testBreaker(t, time.Second)

	resp, err := generateLabel(t, b, p)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_InjectedFailureMapsToTransient(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusServiceUnavailable)
	b := testBreaker(t, time.Second)

	_, err := generateLabel(t, b, p)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "simulated label failure")
}

func TestBreaker_OpensAndShortCircuits(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusServiceUnavailable)
	b := testBreaker(t, time.Minute)

	for range 3 {
		_, err := generateLabel(t, b, p)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())
	reached := p.calls.Load()

	for range 4 {
		_, err := generateLabel(t, b, p)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.ErrorIs(t, err, apperrors.ErrCircuitOpened)
		assert.True(t, apperrors.IsRetryable(err))
		assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	}
	assert.Equal(t, reached, p.calls.Load(), "open breaker must not reach the participant")
}

func TestBreaker_ClosesAfterSuccessfulProbe(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusInternalServerError)
	b := testBreaker(t, 100*time.Millisecond)

	for range 3 {
		_, _ = generateLabel(t, b, p)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(150 * time.Millisecond)
	p.status.Store(http.StatusOK)

	resp, err := generateLabel(t, b, p)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_RejectedStepsDoNotTrip(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusBadRequest)
	b := testBreaker(t, time.Minute)

	for range 5 {
		resp, err := generateLabel(t, b, p)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_CallerCancellationDoesNotTrip(t *testing.T) {
	p := newFlakyParticipant(t, http.StatusOK)
	b := testBreaker(t, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range 5 {
		_, err := generateLabelCtx(ctx, t, b, p)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig("payment")

	assert.Equal(t, BreakerConfig{
		Participant:    "payment",
		HalfOpenProbes: 1,
		Window:         60 * time.Second,
		Cooldown:       30 * time.Second,
		TripRatio:      0.5,
		MinCalls:       5,
	}, cfg)
}
