package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const coordinatorTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func useTraceContext(t *testing.T) {
	t.Helper()
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func TestHeaderCarrier_SetOverwrites(t *testing.T) {
	c := headerCarrier{{Key: HeaderEventType, Value: []byte("payment.execute")}}

	c.Set(HeaderEventType, "payment.compensate")
	c.Set("traceparent", coordinatorTraceparent)

	assert.Len(t, c, 2)
	assert.Equal(t, "payment.compensate", c.Get(HeaderEventType))
	assert.Equal(t, coordinatorTraceparent, c.Get("traceparent"))
	assert.Empty(t, c.Get("tracestate"))
	assert.ElementsMatch(t, []string{HeaderEventType, "traceparent"}, c.Keys())
}

func TestExtractTraceContext_FromCommand(t *testing.T) {
	useTraceContext(t)
	msg := kafka.Message{
		Topic:   "saga.payment.commands",
		Headers: []kafka.Header{{Key: "traceparent", Value: []byte(coordinatorTraceparent)}},
	}

	sc := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), msg))

	require.True(t, sc.IsValid())
	assert.True(t, sc.IsRemote())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", sc.SpanID().String())
}

func TestExtractTraceContext_NoHeaders(t *testing.T) {
	useTraceContext(t)

	ctx := ExtractTraceContext(context.Background(), kafka.Message{Topic: "saga.label.commands"})

	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestInjectTraceContext_ReplyCarriesCommandTrace(t *testing.T) {
	useTraceContext(t)
	command := kafka.Message{Headers: []kafka.Header{{Key: "traceparent", Value: []byte(coordinatorTraceparent)}}}
	ctx := ExtractTraceContext(context.Background(), command)

	reply := kafka.Message{Topic: "saga.payment.replies"}
	InjectTraceContext(ctx, &reply)

	assert.Equal(t, coordinatorTraceparent, (*headerCarrier)(&reply.Headers).Get("traceparent"))
}
