package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for saga commands and replies on Kafka. The message
// key is the order id so every command for one saga lands on one partition.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	OrderID       string            `json:"order_id"`
	Resource      string            `json:"resource"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// MetadataCommandID names the command a reply answers.
const MetadataCommandID = "command_id"

// NewEvent builds an event for orderID with a fresh id. Its type is
// "<resource>.<action>", e.g. "payment.execute".
func NewEvent(eventType, orderID, resource, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s data: %w", eventType, err)
	}

	return &Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		Resource:  resource,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Data:      raw,
		Metadata:  map[string]string{},
	}, nil
}

// Action returns the part of the event type after "<resource>.", or "" when
// the event is addressed to another resource.
func (e *Event) Action(resource string) string {
	action, ok := strings.CutPrefix(e.EventType, resource+".")
	if !ok {
		return ""
	}
	return action
}

// ReplyTo links e to the command it answers: the correlation id is carried
// over (falling back to the command's event id) and the command id is
// recorded in metadata.
func (e *Event) ReplyTo(cmd *Event) *Event {
	id := cmd.CorrelationID
	if id == "" {
		id = cmd.EventID
	}
	return e.WithCorrelationID(id).WithMetadata(MetadataCommandID, cmd.EventID)
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata adds a key-value pair to the event metadata.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes a message value into an event.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &event, nil
}
