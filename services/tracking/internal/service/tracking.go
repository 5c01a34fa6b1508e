package service

import (
	"context"
	"log/slog"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/tracking/internal/config"
	"github.com/utafrali/SagaParticipants/services/tracking/internal/domain"
)

// Participant is the tracking saga participant.
type Participant = saga.Participant[domain.TrackingRequest, domain.Tracking]

// TrackingPolicy records the final saga outcome of an order as a tracking
// status. It has no compensating action.
type TrackingPolicy struct{}

// Resource implements saga.Policy.
func (TrackingPolicy) Resource() string { return domain.Resource }

// Validate requires the saga outcome.
func (TrackingPolicy) Validate(req saga.Request[domain.TrackingRequest]) error {
	if req.Status == "" {
		return apperrors.InvalidInput("status is required")
	}
	return nil
}

// Apply creates the tracking record or updates the status of an existing
// one, keeping its tracking id.
func (TrackingPolicy) Apply(_ context.Context, req saga.Request[domain.TrackingRequest], current *domain.Tracking) (domain.Tracking, error) {
	status := domain.TrackingStatus(req.Status)
	if current != nil {
		return domain.Tracking{TrackingID: current.TrackingID, Status: status}, nil
	}
	return domain.Tracking{TrackingID: domain.NewTrackingID(), Status: status}, nil
}

// NewParticipant builds the tracking participant. Every call upserts.
func NewParticipant(cfg *config.Config, logger *slog.Logger) *Participant {
	return saga.New[domain.TrackingRequest, domain.Tracking](TrackingPolicy{}, saga.Options{
		Service:     cfg.ServiceName,
		OnDuplicate: saga.ReapplyRecord,
		Logger:      logger,
	})
}
