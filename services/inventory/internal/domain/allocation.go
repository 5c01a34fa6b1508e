package domain

import (
	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// Resource is the response key for inventory records.
const Resource = "inventory"

// StockRequest is the request_data of an update_stock call.
type StockRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

// Units returns the requested quantity, one when unset.
func (r StockRequest) Units() int {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// Allocation is the stock taken for one order.
type Allocation struct {
	OrderID       string `json:"orderId"`
	Product       string `json:"product"`
	Quantity      int    `json:"quantity"`
	StockUpdated  bool   `json:"stockUpdated"`
	PreviousStock int    `json:"previousStock"`
	CurrentStock  int    `json:"currentStock"`
}

// Reversal is the compensation view after an allocation is returned.
type Reversal struct {
	OrderID       string      `json:"orderId"`
	Product       string      `json:"product"`
	Quantity      int         `json:"quantity"`
	Reverted      bool        `json:"reverted"`
	PreviousStock int         `json:"previousStock"`
	CurrentStock  int         `json:"currentStock"`
	Status        saga.Status `json:"status"`
}
