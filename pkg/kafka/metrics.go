package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command results recorded by the consumer.
const (
	ResultHandled     = "handled"
	ResultFailed      = "failed"
	ResultUndecodable = "undecodable"
)

var (
	// CommandsReceived counts messages fetched from a command topic.
	CommandsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_commands_received_total",
			Help: "Saga command messages fetched from Kafka",
		},
		[]string{"topic", "group"},
	)

	// CommandsCompleted counts committed command messages by result.
	CommandsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_commands_completed_total",
			Help: "Saga command messages committed, by result",
		},
		[]string{"topic", "group", "result"},
	)

	// CommandHandleDuration observes handler time including retries.
	CommandHandleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saga_command_handle_duration_seconds",
			Help:    "Time spent handling one saga command, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic", "group"},
	)

	// CommandsDeadLettered counts messages copied to the DLQ topic.
	CommandsDeadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_commands_dead_lettered_total",
			Help: "Saga command messages copied to the dead-letter topic",
		},
		[]string{"topic", "group"},
	)

	// EventsPublished counts publish attempts by outcome (ok or error).
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_events_published_total",
			Help: "Saga events written to Kafka, by outcome",
		},
		[]string{"topic", "outcome"},
	)

	// PublishDuration observes write latency per topic.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saga_event_publish_duration_seconds",
			Help:    "Latency of writing one saga event to Kafka",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)
