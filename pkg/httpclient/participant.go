package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/logger"
)

// ParticipantConfig describes how to reach one saga participant.
type ParticipantConfig struct {
	// Name labels the breaker and error messages, e.g. "payment".
	Name string
	// BaseURL is the participant root, e.g. http://localhost:5007.
	BaseURL string
	// Resource is the key the participant wraps its records in.
	Resource string
	// ExecutePath and CompensatePath are the action routes. An empty
	// CompensatePath means the participant has no compensating action.
	ExecutePath    string
	CompensatePath string
}

// Reply is a successful participant answer.
type Reply struct {
	StatusCode int
	// Body is the value under the resource key.
	Body json.RawMessage
}

// Created reports whether the call created new state (HTTP 201).
func (r Reply) Created() bool {
	return r.StatusCode == http.StatusCreated
}

// Decode unmarshals the resource body into v.
func (r Reply) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type envelope struct {
	OrderID     string `json:"orderId"`
	RequestData any    `json:"request_data,omitempty"`
}

// ParticipantClient calls a participant's forward and compensating actions
// through a circuit breaker.
type ParticipantClient struct {
	cfg ParticipantConfig
	cb  *Breaker
}

// NewParticipantClient creates a client for one participant.
func NewParticipantClient(cfg ParticipantConfig, client *Client, logger *slog.Logger) *ParticipantClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ParticipantClient{
		cfg: cfg,
		cb:  NewBreaker(client, DefaultBreakerConfig(cfg.Name), logger),
	}
}

// Execute runs the forward action for orderID with the given request data.
func (p *ParticipantClient) Execute(ctx context.Context, orderID string, data any) (Reply, error) {
	return p.call(ctx, p.cfg.ExecutePath, envelope{OrderID: orderID, RequestData: data})
}

// Compensate runs the compensating action for orderID.
func (p *ParticipantClient) Compensate(ctx context.Context, orderID string) (Reply, error) {
	if p.cfg.CompensatePath == "" {
		return Reply{}, apperrors.Unsupported(fmt.Sprintf("%s has no compensating action", p.cfg.Name))
	}
	return p.call(ctx, p.cfg.CompensatePath, envelope{OrderID: orderID})
}

func (p *ParticipantClient) call(ctx context.Context, path string, body envelope) (Reply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s request: %w", p.cfg.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("create %s request: %w", p.cfg.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Order-ID", body.OrderID)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.cb.Call(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	if resp.StatusCode >= 300 {
		return Reply{}, ParseResponseError(resp, p.cfg.Name)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("read %s response: %w", p.cfg.Name, err)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Reply{}, fmt.Errorf("decode %s response: %w", p.cfg.Name, err)
	}
	inner, ok := wrapped[p.cfg.Resource]
	if !ok {
		return Reply{}, fmt.Errorf("%s response has no %q field", p.cfg.Name, p.cfg.Resource)
	}

	return Reply{StatusCode: resp.StatusCode, Body: inner}, nil
}
