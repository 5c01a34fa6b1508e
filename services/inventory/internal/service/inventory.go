package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/config"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
)

// Participant is the inventory saga participant.
type Participant = saga.Participant[domain.StockRequest, domain.Allocation]

// InventoryPolicy takes stock from the ledger for each order and returns it
// on compensation.
type InventoryPolicy struct {
	ledger *domain.StockLedger
	logger *slog.Logger
}

// NewInventoryPolicy creates a policy over ledger.
func NewInventoryPolicy(ledger *domain.StockLedger, logger *slog.Logger) *InventoryPolicy {
	return &InventoryPolicy{ledger: ledger, logger: logger}
}

// Resource implements saga.Policy.
func (p *InventoryPolicy) Resource() string { return domain.Resource }

// Validate implements saga.Policy.
func (p *InventoryPolicy) Validate(saga.Request[domain.StockRequest]) error { return nil }

// Check rejects products the ledger does not know.
func (p *InventoryPolicy) Check(_ context.Context, req saga.Request[domain.StockRequest]) error {
	if !p.ledger.Has(req.Data.Product) {
		return apperrors.NotFound("product", req.Data.Product)
	}
	return nil
}

// Apply takes the requested units. With an existing allocation (per-call
// mode) the units are added to it.
func (p *InventoryPolicy) Apply(_ context.Context, req saga.Request[domain.StockRequest], current *domain.Allocation) (domain.Allocation, error) {
	qty := req.Data.Units()
	if current != nil && current.Product != req.Data.Product {
		return domain.Allocation{}, apperrors.InvalidInput(fmt.Sprintf(
			"order %s already holds stock of %s", req.OrderID, current.Product))
	}

	prev, curr, err := p.ledger.Take(req.Data.Product, qty)
	if err != nil {
		return domain.Allocation{}, apperrors.NotFound("product", req.Data.Product)
	}

	alloc := domain.Allocation{
		OrderID:       req.OrderID,
		Product:       req.Data.Product,
		Quantity:      qty,
		StockUpdated:  true,
		PreviousStock: prev,
		CurrentStock:  curr,
	}
	if current != nil {
		alloc.Quantity += current.Quantity
	}
	return alloc, nil
}

// Undo returns the whole allocation to the ledger.
func (p *InventoryPolicy) Undo(ctx context.Context, orderID string, rec domain.Allocation) any {
	prev, curr := p.ledger.Restore(rec.Product, rec.Quantity)
	p.logger.DebugContext(ctx, "stock restored",
		slog.String("product", rec.Product),
		slog.Int("quantity", rec.Quantity),
		slog.Int("current_stock", curr),
	)
	return domain.Reversal{
		OrderID:       orderID,
		Product:       rec.Product,
		Quantity:      rec.Quantity,
		Reverted:      true,
		PreviousStock: prev,
		CurrentStock:  curr,
		Status:        saga.StatusCompensated,
	}
}

// NewParticipant builds the inventory participant from configuration.
func NewParticipant(cfg *config.Config, ledger *domain.StockLedger, faults saga.FaultInjector, logger *slog.Logger) *Participant {
	onDuplicate := saga.ReplayRecord
	if cfg.PerCallDecrement {
		onDuplicate = saga.ReapplyRecord
	}
	return saga.New[domain.StockRequest, domain.Allocation](NewInventoryPolicy(ledger, logger), saga.Options{
		Service:       cfg.ServiceName,
		Faults:        faults,
		FaultStage:    saga.FaultBeforeMutation,
		OnDuplicate:   onDuplicate,
		FailureStatus: http.StatusInternalServerError,
		Logger:        logger,
	})
}
