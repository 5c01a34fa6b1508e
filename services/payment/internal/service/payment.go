package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/payment/internal/config"
	"github.com/utafrali/SagaParticipants/services/payment/internal/domain"
	"github.com/utafrali/SagaParticipants/services/payment/internal/provider"
)

// Participant is the payment saga participant.
type Participant = saga.Participant[domain.PaymentRequest, domain.Payment]

// PaymentPolicy charges orders through a payment provider and refunds them
// on compensation.
type PaymentPolicy struct {
	provider provider.Provider
	logger   *slog.Logger
}

// NewPaymentPolicy creates a policy backed by prov.
func NewPaymentPolicy(prov provider.Provider, logger *slog.Logger) *PaymentPolicy {
	return &PaymentPolicy{provider: prov, logger: logger}
}

// Resource implements saga.Policy.
func (p *PaymentPolicy) Resource() string { return domain.Resource }

// Validate implements saga.Policy. The amount is checked by its struct tag.
func (p *PaymentPolicy) Validate(saga.Request[domain.PaymentRequest]) error { return nil }

// Apply charges the order and records a confirmed payment.
func (p *PaymentPolicy) Apply(ctx context.Context, req saga.Request[domain.PaymentRequest], _ *domain.Payment) (domain.Payment, error) {
	res, err := p.provider.Charge(ctx, &provider.ChargeInput{
		OrderID: req.OrderID,
		Amount:  req.Data.Amount,
	})
	if err != nil {
		return domain.Payment{}, fmt.Errorf("charge via %s: %w", p.provider.Name(), err)
	}
	return domain.NewPayment(res.TransactionID, req.Data.Amount), nil
}

// Undo refunds the payment. A provider error is logged and the payment is
// still reported as refunded.
func (p *PaymentPolicy) Undo(ctx context.Context, orderID string, rec domain.Payment) any {
	err := p.provider.Refund(ctx, &provider.RefundInput{
		OrderID:       orderID,
		TransactionID: rec.TransactionID,
		Amount:        rec.Amount,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "provider refund failed",
			slog.String("order_id", orderID),
			slog.String("transaction_id", rec.TransactionID),
			slog.String("error", err.Error()),
		)
	}
	return domain.NewRefund(orderID, rec)
}

// NewParticipant builds the payment participant from configuration.
func NewParticipant(cfg *config.Config, prov provider.Provider, faults saga.FaultInjector, logger *slog.Logger) *Participant {
	stage := saga.FaultBeforeMutation
	if cfg.FaultBeforeReplay {
		stage = saga.FaultBeforeReplay
	}
	return saga.New[domain.PaymentRequest, domain.Payment](NewPaymentPolicy(prov, logger), saga.Options{
		Service:       cfg.ServiceName,
		Faults:        faults,
		FaultStage:    stage,
		OnDuplicate:   saga.ReplayRecord,
		FailureStatus: http.StatusInternalServerError,
		Logger:        logger,
	})
}
