package dispatch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pizzabarbas/pos/internal/domain"
)

// Processor settles a payment once a card, device or manual
// confirmation has been captured. Implementations return nil on
// approval or a *domain.DeclinedError on rejection.
type Processor interface {
	Settle(ctx context.Context, method domain.PaymentMethod, total domain.Money) error
}

// SimulatedProcessor stands in for the real gateway. Contactless and
// wallet settlements are approved with probability SuccessRate after
// Delay; cash and card are manual confirmations and always settle.
type SimulatedProcessor struct {
	SuccessRate float64
	Delay       time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedProcessor(successRate float64, delay time.Duration, seed int64) *SimulatedProcessor {
	return &SimulatedProcessor{
		SuccessRate: successRate,
		Delay:       delay,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (p *SimulatedProcessor) Settle(ctx context.Context, method domain.PaymentMethod, total domain.Money) error {
	select {
	case <-time.After(p.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if method == domain.MethodCash || method == domain.MethodCard {
		return nil
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()

	if roll > p.SuccessRate {
		return &domain.DeclinedError{Method: method, Reason: "declined by processor (simulation)"}
	}
	return nil
}

// DeterministicProcessor settles every payment immediately with a
// fixed outcome. It is the non-simulated mode used in tests.
type DeterministicProcessor struct {
	Err error // nil approves everything
}

func (p *DeterministicProcessor) Settle(ctx context.Context, method domain.PaymentMethod, total domain.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Err
}
