package domain

import (
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// Resource is the response key for label records.
const Resource = "label"

// LabelRequest is the request_data of a generate_label call. A label needs
// nothing beyond the order id.
type LabelRequest struct{}

// Label is the shipping label generated for an order.
type Label struct {
	LabelID string      `json:"labelId"`
	Status  saga.Status `json:"status"`
}

// NewLabel returns a freshly created label with a new id.
func NewLabel() Label {
	return Label{LabelID: NewLabelID(), Status: saga.StatusCreated}
}

// NewLabelID returns an id of the form LBL-XXXXXXXX.
func NewLabelID() string {
	return "LBL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
