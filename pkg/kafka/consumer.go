package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// defaultMaxRetries is how often a handler is attempted before the message
// is dead-lettered and committed.
const defaultMaxRetries = 3

// Handler processes one Kafka event. A returned error is retried; handlers
// that must not be retried report failure some other way and return nil.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topic        string
	MinBytes     int
	MaxBytes     int
	MaxRetries   int
	RetryBackoff time.Duration
}

// messageReader is the subset of *kafka.Reader the consumer relies on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps the kafka-go reader for consuming events.
type Consumer struct {
	reader    messageReader
	topic     string
	group     string
	retries   int
	backoff   time.Duration
	logger    *slog.Logger
	handler   Handler
	dlq       DeadLetterer
	closeOnce sync.Once
}

// NewConsumer creates a new Kafka consumer for a specific topic and group.
// dlq may be nil, in which case exhausted messages are only logged.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq DeadLetterer, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return newConsumer(r, cfg, handler, dlq, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, dlq DeadLetterer, logger *slog.Logger) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		reader:  r,
		topic:   cfg.Topic,
		group:   cfg.GroupID,
		retries: cfg.MaxRetries,
		backoff: cfg.RetryBackoff,
		logger:  logger,
		handler: handler,
		dlq:     dlq,
	}
}

// Start begins consuming messages. It blocks until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.String("topic", c.topic),
		slog.String("group", c.group),
	)
	defer c.Close() //nolint:errcheck

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		CommandsReceived.WithLabelValues(c.topic, c.group).Inc()

		if err := c.process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("message processing aborted", slog.String("error", err.Error()))
		}
	}
}

// process runs the handler with retries and commits the message. Messages
// that cannot be decoded or keep failing are dead-lettered, then committed
// so the partition keeps moving.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
		)
		CommandsCompleted.WithLabelValues(c.topic, c.group, ResultUndecodable).Inc()
		c.deadLetter(ctx, msg, err)
		return c.commit(ctx, msg)
	}

	ctx = ExtractTraceContext(ctx, msg)

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		c.logger.Warn("handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("order_id", event.OrderID),
			slog.String("error", lastErr.Error()),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.retries),
		)
		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}
	CommandHandleDuration.WithLabelValues(c.topic, c.group).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		CommandsCompleted.WithLabelValues(c.topic, c.group, ResultFailed).Inc()
		c.logger.Error("handler failed after all retries",
			slog.String("event_type", event.EventType),
			slog.String("order_id", event.OrderID),
			slog.String("error", lastErr.Error()),
			slog.Int64("offset", msg.Offset),
		)
		c.deadLetter(ctx, msg, lastErr)
		return c.commit(ctx, msg)
	}

	CommandsCompleted.WithLabelValues(c.topic, c.group, ResultHandled).Inc()
	return c.commit(ctx, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.Error("failed to dead-letter message", slog.String("error", err.Error()))
		return
	}
	CommandsDeadLettered.WithLabelValues(c.topic, c.group).Inc()
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) error {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
	}
	return nil
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// TopicPrefix is the prefix for all saga participant topics.
const TopicPrefix = "saga"

// Topic constructs a fully-qualified topic name, e.g. saga.payment.commands.
func Topic(resource, channel string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, resource, channel)
}
