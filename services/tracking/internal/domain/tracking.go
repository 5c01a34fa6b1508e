package domain

import (
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// Resource is the response key for tracking records.
const Resource = "tracking"

// TrackingRequest is the request_data of an update_status call. The saga
// outcome travels in the envelope's status field.
type TrackingRequest struct{}

// Tracking is the shipment tracking record of an order.
type Tracking struct {
	TrackingID string      `json:"trackingId"`
	Status     saga.Status `json:"status"`
}

// TrackingStatus maps a final saga outcome to a tracking status.
func TrackingStatus(outcome saga.Status) saga.Status {
	switch outcome {
	case saga.StatusCompleted:
		return saga.StatusInTransit
	case saga.StatusFailedAndCompensated:
		return saga.StatusCancelled
	default:
		return saga.StatusUnknown
	}
}

// NewTrackingID returns an id of the form TRK-XXXXXXXXXX.
func NewTrackingID() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
