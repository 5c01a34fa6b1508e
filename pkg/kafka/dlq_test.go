package kafka

import (
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestDLQTopicPrefix(t *testing.T) {
	if DLQTopicPrefix != "saga.dlq" {
		t.Errorf("DLQTopicPrefix = %q, want %q", DLQTopicPrefix, "saga.dlq")
	}
}

func TestDLQTopic(t *testing.T) {
	tests := []struct {
		name          string
		originalTopic string
		want          string
	}{
		{
			name:          "command topic",
			originalTopic: "saga.payment.commands",
			want:          "saga.dlq.saga.payment.commands",
		},
		{
			name:          "simple topic name",
			originalTopic: "labels",
			want:          "saga.dlq.labels",
		},
		{
			name:          "topic with underscores",
			originalTopic: "inventory_commands",
			want:          "saga.dlq.inventory_commands",
		},
		{
			name:          "empty topic",
			originalTopic: "",
			want:          "saga.dlq.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DLQTopic(tt.originalTopic)
			if got != tt.want {
				t.Errorf("DLQTopic(%q) = %q, want %q", tt.originalTopic, got, tt.want)
			}
		})
	}
}

func TestDLQMessage_CarriesOrigin(t *testing.T) {
	original := kafka.Message{
		Topic:     "saga.label.commands",
		Partition: 2,
		Offset:    41,
		Key:       []byte("ORD-1"),
		Value:     []byte(`{"event_type":"label.execute"}`),
		Headers:   []kafka.Header{{Key: "event_type", Value: []byte("label.execute")}},
	}

	msg := dlqMessage(original, errors.New("reply publish failed"), "label-service")

	if msg.Topic != "saga.dlq.saga.label.commands" {
		t.Errorf("Topic = %q", msg.Topic)
	}
	if string(msg.Key) != "ORD-1" {
		t.Errorf("Key = %q, want ORD-1", msg.Key)
	}
	if string(msg.Value) != string(original.Value) {
		t.Errorf("Value was not copied")
	}

	carrier := (*headerCarrier)(&msg.Headers)
	want := map[string]string{
		"event_type":             "label.execute",
		"dlq.original_topic":     "saga.label.commands",
		"dlq.original_partition": "2",
		"dlq.original_offset":    "41",
		"dlq.consumer_group":     "label-service",
		"dlq.error":              "reply publish failed",
	}
	for k, v := range want {
		if got := carrier.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestDLQMessage_NoErrorHeaderWithoutCause(t *testing.T) {
	msg := dlqMessage(kafka.Message{Topic: "t"}, nil, "g")
	carrier := (*headerCarrier)(&msg.Headers)
	if got := carrier.Get("dlq.error"); got != "" {
		t.Errorf("dlq.error = %q, want empty", got)
	}
}
