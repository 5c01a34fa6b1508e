package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
)

// BreakerConfig tunes the breaker guarding one participant.
type BreakerConfig struct {
	// Participant names the breaker in metrics and logs, e.g. "payment".
	Participant string
	// HalfOpenProbes is how many calls may pass while half-open.
	HalfOpenProbes uint32
	// Window is the closed-state period after which counts reset.
	Window time.Duration
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
	// TripRatio of failed calls within the window opens the breaker once
	// at least MinCalls were made.
	TripRatio float64
	MinCalls  uint32
}

// DefaultBreakerConfig returns the breaker defaults for a participant.
func DefaultBreakerConfig(participant string) BreakerConfig {
	return BreakerConfig{
		Participant:    participant,
		HalfOpenProbes: 1,
		Window:         60 * time.Second,
		Cooldown:       30 * time.Second,
		TripRatio:      0.5,
		MinCalls:       5,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "saga_participant_breaker_state",
		Help: "State of the breaker guarding calls to a participant (0=closed, 1=half-open, 2=open).",
	},
	[]string{"participant"},
)

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ErrCircuitOpen is wrapped into the error returned for a rejected call.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Breaker sends participant calls through a gobreaker circuit breaker.
// Injected failures (5xx) and transport errors count against the
// participant; a 4xx is a rejected step and leaves the breaker alone.
type Breaker struct {
	client      *Client
	cb          *gobreaker.CircuitBreaker[*http.Response]
	participant string
}

// NewBreaker guards client with a breaker configured by cfg.
func NewBreaker(client *Client, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Participant,
		MaxRequests: cfg.HalfOpenProbes,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinCalls {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.TripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAgainstParticipant(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("participant breaker changed state",
				slog.String("participant", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}
	breakerState.WithLabelValues(cfg.Participant).Set(0)

	return &Breaker{
		client:      client,
		cb:          gobreaker.NewCircuitBreaker[*http.Response](settings),
		participant: cfg.Participant,
	}
}

// countsAgainstParticipant is false for a caller-side cancellation, which
// says nothing about the participant's health.
func countsAgainstParticipant(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Call sends req. A 5xx answer is consumed and returned as the error
// ParseResponseError maps it to; any other answer is returned as is.
func (b *Breaker) Call(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, b.participant)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", b.participant, apperrors.ErrCircuitOpened, err)
	}
	return resp, err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
