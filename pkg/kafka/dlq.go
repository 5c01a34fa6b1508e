package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix is the prefix for dead-letter topics.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// DeadLetterer parks messages the consumer gave up on.
type DeadLetterer interface {
	Publish(ctx context.Context, originalMsg kafka.Message, lastErr error, consumerGroup string) error
}

// DLQProducer publishes failed messages to a dead-letter topic.
type DLQProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewDLQProducer creates a DLQ producer writing to DLQTopic(<source topic>).
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              1,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &DLQProducer{
		writer: w,
		logger: logger,
	}
}

// DLQTopic constructs the DLQ topic name for a given source topic.
func DLQTopic(originalTopic string) string {
	return fmt.Sprintf("%s.%s", DLQTopicPrefix, originalTopic)
}

// dlqMessage copies the original message and records where it came from and
// why it failed.
func dlqMessage(originalMsg kafka.Message, lastErr error, consumerGroup string) kafka.Message {
	headers := make([]kafka.Header, 0, len(originalMsg.Headers)+5)
	headers = append(headers, originalMsg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(originalMsg.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(originalMsg.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(originalMsg.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(consumerGroup)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(lastErr.Error())})
	}

	return kafka.Message{
		Topic:   DLQTopic(originalMsg.Topic),
		Key:     originalMsg.Key,
		Value:   originalMsg.Value,
		Headers: headers,
	}
}

// Publish sends a failed message to the corresponding DLQ topic.
func (d *DLQProducer) Publish(ctx context.Context, originalMsg kafka.Message, lastErr error, consumerGroup string) error {
	msg := dlqMessage(originalMsg, lastErr, consumerGroup)

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		d.logger.Error("failed to publish message to DLQ",
			slog.String("dlq_topic", msg.Topic),
			slog.String("original_topic", originalMsg.Topic),
			slog.Int64("offset", originalMsg.Offset),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish to DLQ %s: %w", msg.Topic, err)
	}

	d.logger.Warn("message sent to DLQ",
		slog.String("dlq_topic", msg.Topic),
		slog.String("original_topic", originalMsg.Topic),
		slog.Int("partition", originalMsg.Partition),
		slog.Int64("offset", originalMsg.Offset),
		slog.String("consumer_group", consumerGroup),
	)

	return nil
}

// Close closes the DLQ producer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
