package mock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/utafrali/SagaParticipants/services/payment/internal/provider"
)

// Provider is an in-process payment provider that always succeeds and
// issues TX-nnnnnn transaction ids. It keeps the refunded ids so tests can
// check a refund reached the provider.
type Provider struct {
	mu       sync.Mutex
	refunded []string
}

// NewProvider creates a new simulated payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "simulated"
}

// Charge issues a six digit transaction id.
func (p *Provider) Charge(_ context.Context, _ *provider.ChargeInput) (*provider.ChargeResult, error) {
	return &provider.ChargeResult{
		TransactionID: fmt.Sprintf("TX-%d", 100000+rand.IntN(900000)), // #nosec G404 -- display id, not a secret
	}, nil
}

// Refund records the refunded transaction.
func (p *Provider) Refund(_ context.Context, input *provider.RefundInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refunded = append(p.refunded, input.TransactionID)
	return nil
}

// Refunded returns the transaction ids refunded so far.
func (p *Provider) Refunded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.refunded...)
}
