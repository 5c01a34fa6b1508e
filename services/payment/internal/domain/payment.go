package domain

import (
	"github.com/utafrali/SagaParticipants/pkg/saga"
)

// Resource is the response key for payment records.
const Resource = "payment"

// PaymentRequest is the request_data of a process_payment call.
type PaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// Payment is the charge recorded for an order.
type Payment struct {
	TransactionID string      `json:"transactionId"`
	Amount        float64     `json:"amount"`
	Status        saga.Status `json:"status"`
}

// Refund is the compensation view of a refunded payment.
type Refund struct {
	OrderID       string      `json:"orderId"`
	TransactionID string      `json:"transactionId"`
	Status        saga.Status `json:"status"`
}

// NewPayment returns a confirmed payment for a completed charge.
func NewPayment(transactionID string, amount float64) Payment {
	return Payment{
		TransactionID: transactionID,
		Amount:        amount,
		Status:        saga.StatusConfirmed,
	}
}

// NewRefund returns the view reported after a payment is refunded.
func NewRefund(orderID string, p Payment) Refund {
	return Refund{
		OrderID:       orderID,
		TransactionID: p.TransactionID,
		Status:        saga.StatusRefunded,
	}
}
