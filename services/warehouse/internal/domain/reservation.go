package domain

import (
	"fmt"
	"math/rand/v2"
)

// Resource is the response key for warehouse records.
const Resource = "warehouse"

// SpaceRequest is the request_data of a reserve_space call.
type SpaceRequest struct {
	User    string `json:"user" validate:"required"`
	Product string `json:"product" validate:"required"`
}

// Reservation is the warehouse space held for an order.
type Reservation struct {
	User          string `json:"user"`
	Product       string `json:"product"`
	LocationID    string `json:"locationId"`
	SpaceReserved bool   `json:"spaceReserved"`
}

// NewLocationID picks a bay between BAY-10 and BAY-99. Bays are not
// exclusive; two orders may share one.
func NewLocationID() string {
	return fmt.Sprintf("BAY-%d", 10+rand.IntN(90)) // #nosec G404 -- display id, not a secret
}
