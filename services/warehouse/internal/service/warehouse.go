package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/warehouse/internal/config"
	"github.com/utafrali/SagaParticipants/services/warehouse/internal/domain"
)

// Participant is the warehouse saga participant.
type Participant = saga.Participant[domain.SpaceRequest, domain.Reservation]

// WarehousePolicy reserves a bay for each order and releases it on
// compensation.
type WarehousePolicy struct {
	locate func() string
}

// NewWarehousePolicy creates a policy that assigns bays with locate. A nil
// locate uses domain.NewLocationID.
func NewWarehousePolicy(locate func() string) *WarehousePolicy {
	if locate == nil {
		locate = domain.NewLocationID
	}
	return &WarehousePolicy{locate: locate}
}

// Resource implements saga.Policy.
func (p *WarehousePolicy) Resource() string { return domain.Resource }

// Validate implements saga.Policy. User and product are checked by their
// struct tags.
func (p *WarehousePolicy) Validate(saga.Request[domain.SpaceRequest]) error { return nil }

// Apply reserves space.
func (p *WarehousePolicy) Apply(_ context.Context, req saga.Request[domain.SpaceRequest], _ *domain.Reservation) (domain.Reservation, error) {
	return domain.Reservation{
		User:          req.Data.User,
		Product:       req.Data.Product,
		LocationID:    p.locate(),
		SpaceReserved: true,
	}, nil
}

// Undo releases the reservation.
func (p *WarehousePolicy) Undo(_ context.Context, orderID string, _ domain.Reservation) any {
	return saga.Outcome{OrderID: orderID, Status: saga.StatusCompensated}
}

// NewParticipant builds the warehouse participant.
func NewParticipant(cfg *config.Config, policy *WarehousePolicy, logger *slog.Logger) *Participant {
	if policy == nil {
		policy = NewWarehousePolicy(nil)
	}
	return saga.New[domain.SpaceRequest, domain.Reservation](policy, saga.Options{
		Service:     cfg.ServiceName,
		OnDuplicate: saga.ReplayRecord,
		Logger:      logger,
	})
}
