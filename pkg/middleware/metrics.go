package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes as seen from the coordinator.
const (
	OutcomeCreated  = "created"
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	participantCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "participant_http_requests_total",
			Help: "HTTP calls served by a saga participant, by route, status and outcome.",
		},
		[]string{"service", "method", "route", "status", "outcome"},
	)

	participantCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "participant_http_request_duration_seconds",
			Help:    "Latency of HTTP calls served by a saga participant.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "method", "route", "outcome"},
	)

	participantCallsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "participant_http_requests_in_flight",
			Help: "HTTP calls currently being served by a saga participant.",
		},
		[]string{"service"},
	)
)

// Outcome classifies a response status. A 201 means the step created state,
// any other 2xx is a replay or read, 4xx a rejected step and 5xx a failure
// the coordinator may retry.
func Outcome(status int) string {
	switch {
	case status == http.StatusCreated:
		return OutcomeCreated
	case status >= 500:
		return OutcomeFailed
	case status >= 400:
		return OutcomeRejected
	default:
		return OutcomeOK
	}
}

// PrometheusMetrics returns middleware that counts participant calls by chi
// route pattern. Paths that match no route are reported as "unknown".
func PrometheusMetrics(serviceName string) func(next http.Handler) http.Handler {
	inFlight := participantCallsInFlight.WithLabelValues(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inFlight.Inc()
			defer inFlight.Dec()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := routeOf(r)
			outcome := Outcome(rec.statusCode)
			participantCalls.WithLabelValues(serviceName, r.Method, route, strconv.Itoa(rec.statusCode), outcome).Inc()
			participantCallDuration.WithLabelValues(serviceName, r.Method, route, outcome).Observe(time.Since(start).Seconds())
		})
	}
}

func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
