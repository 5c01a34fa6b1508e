package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/config"
	"github.com/utafrali/SagaParticipants/services/inventory/internal/domain"
)

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setup(t *testing.T, perCall bool, faults saga.FaultInjector) (*Participant, *domain.StockLedger) {
	t.Helper()
	ledger := domain.NewStockLedger(domain.DefaultSeed)
	cfg := &config.Config{ServiceName: "inventory-service", PerCallDecrement: perCall}
	return NewParticipant(cfg, ledger, faults, testLogger()), ledger
}

func stockRequest(orderID, product string, qty int) saga.Request[domain.StockRequest] {
	return saga.Request[domain.StockRequest]{
		OrderID: orderID,
		Data:    domain.StockRequest{Product: product, Quantity: qty},
	}
}

func level(t *testing.T, l *domain.StockLedger, product string) int {
	t.Helper()
	n, ok := l.Level(product)
	require.True(t, ok)
	return n
}

// ============================================================================
// Execute
// ============================================================================

func TestExecute_DecrementThenRevert(t *testing.T) {
	p, ledger := setup(t, false, saga.NoFaults{})

	res, err := p.Execute(context.Background(), stockRequest("O1", "product-001", 0))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, domain.Allocation{
		OrderID:       "O1",
		Product:       "product-001",
		Quantity:      1,
		StockUpdated:  true,
		PreviousStock: 50,
		CurrentStock:  49,
	}, res.Record)
	assert.Equal(t, 49, level(t, ledger, "product-001"))

	view, err := p.Compensate(context.Background(), "O1")
	require.NoError(t, err)
	reversal := view.(domain.Reversal)
	assert.True(t, reversal.Reverted)
	assert.Equal(t, 49, reversal.PreviousStock)
	assert.Equal(t, 50, reversal.CurrentStock)
	assert.Equal(t, saga.StatusCompensated, reversal.Status)
	assert.Equal(t, 50, level(t, ledger, "product-001"))
}

func TestExecute_RetryDoesNotDecrementTwice(t *testing.T) {
	p, ledger := setup(t, false, saga.NoFaults{})

	first, err := p.Execute(context.Background(), stockRequest("O1", "product-002", 2))
	require.NoError(t, err)
	second, err := p.Execute(context.Background(), stockRequest("O1", "product-002", 2))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, 18, level(t, ledger, "product-002"))
}

func TestExecute_UnknownProduct(t *testing.T) {
	p, ledger := setup(t, false, saga.AlwaysFail{})

	_, err := p.Execute(context.Background(), stockRequest("O1", "product-999", 1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "unknown product wins over injected failure")
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, domain.DefaultSeed, ledger.Snapshot())
}

func TestExecute_MissingProduct(t *testing.T) {
	p, _ := setup(t, false, saga.NoFaults{})

	_, err := p.Execute(context.Background(), stockRequest("O1", "", 1))

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestExecute_InjectedFailureKeepsStock(t *testing.T) {
	p, ledger := setup(t, false, saga.AlwaysFail{})

	_, err := p.Execute(context.Background(), stockRequest("O1", "product-003", 1))

	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 10, level(t, ledger, "product-003"))
}

func TestExecute_ConcurrentSameOrder(t *testing.T) {
	p, ledger := setup(t, false, saga.NoFaults{})

	var wg sync.WaitGroup
	created := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Execute(context.Background(), stockRequest("O1", "product-001", 1))
			if err == nil {
				created <- res.Created
			}
		}()
	}
	wg.Wait()
	close(created)

	var n int
	for c := range created {
		if c {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, 49, level(t, ledger, "product-001"))
	assert.Equal(t, 1, p.Len())
}

// ============================================================================
// Per-call decrement mode
// ============================================================================

func TestPerCall_DoubleDecrementFullyRestored(t *testing.T) {
	p, ledger := setup(t, true, saga.NoFaults{})

	_, err := p.Execute(context.Background(), stockRequest("O1", "product-001", 1))
	require.NoError(t, err)
	second, err := p.Execute(context.Background(), stockRequest("O1", "product-001", 1))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, 2, second.Record.Quantity)
	assert.Equal(t, 49, second.Record.PreviousStock)
	assert.Equal(t, 48, level(t, ledger, "product-001"))

	view, err := p.Compensate(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.(domain.Reversal).Quantity)
	assert.Equal(t, 50, level(t, ledger, "product-001"))
}

func TestPerCall_DifferentProductRejected(t *testing.T) {
	p, ledger := setup(t, true, saga.NoFaults{})

	_, err := p.Execute(context.Background(), stockRequest("O1", "product-001", 1))
	require.NoError(t, err)
	_, err = p.Execute(context.Background(), stockRequest("O1", "product-002", 1))

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, 20, level(t, ledger, "product-002"))
	assert.Equal(t, 49, level(t, ledger, "product-001"))
}

// ============================================================================
// Compensate
// ============================================================================

func TestCompensate_NeverExecuted(t *testing.T) {
	p, ledger := setup(t, false, saga.NoFaults{})

	view, err := p.Compensate(context.Background(), "O404")

	require.NoError(t, err)
	assert.Equal(t, saga.Outcome{OrderID: "O404", Status: saga.StatusNotFoundOrAlreadyCompensated}, view)
	assert.Equal(t, domain.DefaultSeed, ledger.Snapshot())
}

func TestCompensate_Twice(t *testing.T) {
	p, ledger := setup(t, false, saga.NoFaults{})
	_, err := p.Execute(context.Background(), stockRequest("O1", "product-003", 4))
	require.NoError(t, err)

	_, err = p.Compensate(context.Background(), "O1")
	require.NoError(t, err)
	again, err := p.Compensate(context.Background(), "O1")
	require.NoError(t, err)

	assert.Equal(t, saga.StatusNotFoundOrAlreadyCompensated, again.(saga.Outcome).Status)
	assert.Equal(t, 10, level(t, ledger, "product-003"))
}

// ============================================================================
// Metrics
// ============================================================================

func TestStockCollector(t *testing.T) {
	ledger := domain.NewStockLedger(domain.DefaultSeed)
	c := NewStockCollector("inventory-service", ledger)

	assert.Equal(t, 3, testutil.CollectAndCount(c, "inventory_stock_level"))
}
