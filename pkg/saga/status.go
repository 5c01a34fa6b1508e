package saga

// Status is the closed set of record and outcome states a participant reports.
type Status string

const (
	StatusCreated     Status = "CREATED"
	StatusConfirmed   Status = "CONFIRMED"
	StatusInTransit   Status = "IN_TRANSIT"
	StatusCancelled   Status = "CANCELLED"
	StatusUnknown     Status = "UNKNOWN"
	StatusCompensated Status = "COMPENSATED"
	StatusRefunded    Status = "REFUNDED"
	StatusFailed      Status = "FAILED"

	// StatusNotFoundOrAlreadyCompensated is returned when there is nothing to undo.
	StatusNotFoundOrAlreadyCompensated Status = "NOT_FOUND_OR_ALREADY_COMPENSATED"
)

// Final saga outcomes sent by the coordinator to terminal notifiers.
const (
	StatusCompleted            Status = "COMPLETED"
	StatusFailedAndCompensated Status = "FAILED_AND_COMPENSATED"
)

// Outcome is the compensation view for participants whose undo carries no
// resource-specific fields.
type Outcome struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
}
