package saga

import (
	"encoding/json"
	"io"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
)

// Request is the saga envelope sent by the coordinator. Data holds the
// participant-specific request_data payload; Status carries the final saga
// outcome for terminal notifiers.
type Request[P any] struct {
	OrderID string `json:"orderId"`
	Data    P      `json:"request_data"`
	Status  Status `json:"status,omitempty"`
}

// DecodeRequest reads one envelope from r. Unknown fields are ignored.
func DecodeRequest[P any](r io.Reader) (Request[P], error) {
	var req Request[P]
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request[P]{}, apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return req, nil
}

// DecodeOrderID reads an envelope and keeps only the order id, which is all
// a compensating action needs. The payload is not type checked.
func DecodeOrderID(r io.Reader) (string, error) {
	req, err := DecodeRequest[json.RawMessage](r)
	if err != nil {
		return "", err
	}
	return req.OrderID, nil
}
