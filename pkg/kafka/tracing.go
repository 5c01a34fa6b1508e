package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// headerCarrier lets W3C trace context ride in kafka message headers, so a
// reply's span joins the trace of the command that caused it.
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set overwrites an existing header rather than appending a duplicate.
func (c *headerCarrier) Set(key, value string) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, len(*c))
	for i, h := range *c {
		keys[i] = h.Key
	}
	return keys
}

// InjectTraceContext writes the span context of ctx into msg headers.
func InjectTraceContext(ctx context.Context, msg *kafka.Message) {
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(&msg.Headers))
}

// ExtractTraceContext returns ctx carrying the remote span context found in
// msg. The message headers are not modified.
func ExtractTraceContext(ctx context.Context, msg kafka.Message) context.Context {
	headers := headerCarrier(msg.Headers)
	return otel.GetTextMapPropagator().Extract(ctx, &headers)
}
