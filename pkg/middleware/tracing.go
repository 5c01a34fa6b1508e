package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/SagaParticipants/pkg/tracing"
)

// Tracing returns middleware that opens a server span for every call a
// coordinator makes to the participant. An inbound W3C trace context becomes
// the parent, and the span is renamed to the chi route pattern after routing.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := tracing.Tracer("services/" + serviceName)
	propagator := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(callAttributes(serviceName, r)...),
			)
			defer span.End()

			rec := newStatusRecorder(w)
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			next.ServeHTTP(rec, r.WithContext(ctx))

			finishCallSpan(span, r, rec.statusCode)
		})
	}
}

func callAttributes(serviceName string, r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPMethod(r.Method),
		semconv.HTTPTarget(r.URL.RequestURI()),
		semconv.HTTPScheme(scheme(r)),
		attribute.String("http.client_ip", r.RemoteAddr),
		attribute.String("saga.participant", serviceName),
	}
	if orderID := r.Header.Get(OrderHeader); orderID != "" {
		attrs = append(attrs, attribute.String("saga.order_id", orderID))
	}
	return attrs
}

// finishCallSpan records the outcome. Only 5xx marks the span as failed:
// a 4xx is a rejected saga step, not a participant fault.
func finishCallSpan(span trace.Span, r *http.Request, status int) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(attribute.String("http.route", pattern))
		}
	}
	span.SetAttributes(semconv.HTTPStatusCode(status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
