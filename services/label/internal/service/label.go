package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/label/internal/config"
	"github.com/utafrali/SagaParticipants/services/label/internal/domain"
)

// Participant is the shipping label saga participant.
type Participant = saga.Participant[domain.LabelRequest, domain.Label]

// LabelPolicy generates one label per order and voids it on compensation.
type LabelPolicy struct{}

// Resource implements saga.Policy.
func (LabelPolicy) Resource() string { return domain.Resource }

// Validate implements saga.Policy.
func (LabelPolicy) Validate(saga.Request[domain.LabelRequest]) error { return nil }

// Apply generates a new label.
func (LabelPolicy) Apply(context.Context, saga.Request[domain.LabelRequest], *domain.Label) (domain.Label, error) {
	return domain.NewLabel(), nil
}

// Undo voids the label.
func (LabelPolicy) Undo(_ context.Context, orderID string, _ domain.Label) any {
	return saga.Outcome{OrderID: orderID, Status: saga.StatusCompensated}
}

// NewParticipant builds the label participant. Injected failures answer 503.
func NewParticipant(cfg *config.Config, faults saga.FaultInjector, logger *slog.Logger) *Participant {
	return saga.New[domain.LabelRequest, domain.Label](LabelPolicy{}, saga.Options{
		Service:       cfg.ServiceName,
		Faults:        faults,
		FaultStage:    saga.FaultBeforeMutation,
		OnDuplicate:   saga.ReplayRecord,
		FailureStatus: http.StatusServiceUnavailable,
		Logger:        logger,
	})
}
