package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/SagaParticipants/pkg/logger"
)

// logLine runs one request through RequestLogger, lets the handler log a
// single line through the context logger, and returns that line decoded.
func logLine(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	base := logger.NewWithWriter("payment-service", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("charge accepted")
		w.WriteHeader(http.StatusCreated)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotZero(t, buf.Len(), "handler should have logged through the context logger")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestRequestLogger_ServiceAndMessage(t *testing.T) {
	line := logLine(t, httptest.NewRequest(http.MethodPost, "/process_payment", nil))

	assert.Equal(t, "payment-service", line["service"])
	assert.Equal(t, "charge accepted", line["msg"])
}

func TestRequestLogger_SagaFields(t *testing.T) {
	sampled := func() context.Context {
		traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
		spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
		return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))
	}

	tests := []struct {
		name    string
		ctx     context.Context
		header  string
		want    map[string]string
		missing []string
	}{
		{
			name:    "bare request",
			ctx:     context.Background(),
			missing: []string{"order_id", "correlation_id", "trace_id"},
		},
		{
			name:   "order header",
			ctx:    context.Background(),
			header: "ORD-1001",
			want:   map[string]string{"order_id": "ORD-1001"},
		},
		{
			name:    "correlation id from RequestLogging",
			ctx:     logger.WithCorrelationID(context.Background(), "saga-run-42"),
			want:    map[string]string{"correlation_id": "saga-run-42"},
			missing: []string{"order_id"},
		},
		{
			name: "span context from Tracing",
			ctx:  sampled(),
			want: map[string]string{
				"trace_id": "0af7651916cd43dd8448eb211c80319c",
				"span_id":  "b7ad6b7169203331",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/process_payment", nil).WithContext(tt.ctx)
			if tt.header != "" {
				req.Header.Set(OrderHeader, tt.header)
			}

			line := logLine(t, req)

			for k, v := range tt.want {
				assert.Equal(t, v, line[k], k)
			}
			for _, k := range tt.missing {
				assert.NotContains(t, line, k)
			}
		})
	}
}
