package provider

import (
	"context"
)

// ChargeInput holds the parameters for charging an order.
type ChargeInput struct {
	OrderID string
	Amount  float64
}

// ChargeResult holds the result of a charge operation from the payment provider.
type ChargeResult struct {
	TransactionID string
}

// RefundInput holds the parameters for refunding a charge.
type RefundInput struct {
	OrderID       string
	TransactionID string
	Amount        float64
}

// Provider defines the interface for payment provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "simulated").
	Name() string

	// Charge processes a payment charge through the provider.
	Charge(ctx context.Context, input *ChargeInput) (*ChargeResult, error)

	// Refund returns a previous charge.
	Refund(ctx context.Context, input *RefundInput) error
}
