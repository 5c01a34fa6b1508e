package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/SagaParticipants/pkg/tracing"
)

// traceAction starts a span for one participant action. The returned
// function must be called when the action completes:
//
//	ctx, end := p.traceAction(ctx, ActionExecute, req.OrderID)
//	defer func() { end(err) }()
//
// It also records the action duration.
func (p *Participant[P, R]) traceAction(ctx context.Context, action, orderID string) (context.Context, func(error)) {
	start := time.Now()
	resource := p.policy.Resource()
	ctx, span := tracing.Tracer("pkg/saga").Start(ctx, resource+"."+action,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("saga.service", p.service),
			attribute.String("saga.resource", resource),
			attribute.String("saga.action", action),
			attribute.String("saga.order_id", orderID),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		ActionDuration.WithLabelValues(p.service, action).Observe(time.Since(start).Seconds())
	}
}
