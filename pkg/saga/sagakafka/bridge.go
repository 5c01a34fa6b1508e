// Package sagakafka drives a saga.Participant from Kafka commands and
// publishes the outcome as reply events.
package sagakafka

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/SagaParticipants/pkg/httputil"
	"github.com/utafrali/SagaParticipants/pkg/kafka"
	"github.com/utafrali/SagaParticipants/pkg/logger"
	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// Command and reply event type suffixes, e.g. "payment.execute".
const (
	CommandExecute    = "execute"
	CommandCompensate = "compensate"

	ReplyExecuted    = "executed"
	ReplyCompensated = "compensated"
	ReplyFailed      = "failed"
)

// CommandTopic returns the topic a participant consumes, e.g. saga.payment.commands.
func CommandTopic(resource string) string {
	return kafka.Topic(resource, "commands")
}

// ReplyTopic returns the topic a participant replies on, e.g. saga.payment.replies.
func ReplyTopic(resource string) string {
	return kafka.Topic(resource, "replies")
}

// Bridge turns command events into participant calls. Participant failures
// are published as failed replies and never retried here; Handle only
// returns an error when the reply itself cannot be published.
type Bridge[P, R any] struct {
	participant *saga.Participant[P, R]
	publisher   kafka.Publisher
	logger      *slog.Logger
}

// NewBridge creates a bridge publishing replies through pub.
func NewBridge[P, R any](p *saga.Participant[P, R], pub kafka.Publisher, logger *slog.Logger) *Bridge[P, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge[P, R]{participant: p, publisher: pub, logger: logger}
}

// CommandTopic returns the topic this bridge consumes.
func (b *Bridge[P, R]) CommandTopic() string {
	return CommandTopic(b.participant.Resource())
}

// Handle implements kafka.Handler.
func (b *Bridge[P, R]) Handle(ctx context.Context, event *kafka.Event) error {
	resource := b.participant.Resource()
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}

	var (
		orderID string
		status  int
		view    any
		err     error
		reply   string
	)

	switch event.Action(resource) {
	case CommandExecute:
		orderID, status, view, err = b.execute(ctx, event)
		reply = ReplyExecuted
	case CommandCompensate:
		orderID, view, err = b.compensate(ctx, event)
		status = http.StatusOK
		reply = ReplyCompensated
	default:
		b.logger.DebugContext(ctx, "skipping unknown command",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	data := map[string]any{"orderId": orderID}
	if err != nil {
		code, body := httputil.ErrorFor(err)
		data["statusCode"] = code
		data["error"] = body
		reply = ReplyFailed
	} else {
		data["statusCode"] = status
		data[resource] = view
	}

	return b.publish(ctx, event, resource+"."+reply, orderID, data)
}

func (b *Bridge[P, R]) execute(ctx context.Context, event *kafka.Event) (string, int, any, error) {
	req, err := saga.DecodeRequest[P](bytes.NewReader(event.Data))
	if req.OrderID == "" {
		req.OrderID = event.OrderID
	}
	if err != nil {
		return req.OrderID, 0, nil, err
	}

	ctx = logger.WithOrderID(ctx, req.OrderID)
	res, err := b.participant.Execute(ctx, req)
	if err != nil {
		return req.OrderID, 0, nil, err
	}
	if res.Created {
		return req.OrderID, http.StatusCreated, res.Record, nil
	}
	return req.OrderID, http.StatusOK, res.Record, nil
}

func (b *Bridge[P, R]) compensate(ctx context.Context, event *kafka.Event) (string, any, error) {
	orderID, err := saga.DecodeOrderID(bytes.NewReader(event.Data))
	if orderID == "" {
		orderID = event.OrderID
	}
	if err != nil {
		return orderID, nil, err
	}

	ctx = logger.WithOrderID(ctx, orderID)
	view, err := b.participant.Compensate(ctx, orderID)
	return orderID, view, err
}

func (b *Bridge[P, R]) publish(ctx context.Context, cmd *kafka.Event, eventType, orderID string, data any) error {
	resource := b.participant.Resource()
	reply, err := kafka.NewEvent(eventType, orderID, resource, b.participant.Service(), data)
	if err != nil {
		return fmt.Errorf("build %s reply: %w", eventType, err)
	}
	reply.ReplyTo(cmd)

	if err := b.publisher.Publish(ctx, ReplyTopic(resource), reply); err != nil {
		return fmt.Errorf("publish %s reply: %w", eventType, err)
	}
	return nil
}
