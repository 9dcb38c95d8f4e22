package dispatch

import (
	"context"
	"time"

	"github.com/pizzabarbas/pos/internal/domain"
)

// WalletService presents the platform wallet sheet (Apple Pay or
// Google Pay) and blocks until the customer confirms or ctx is
// cancelled. Approval itself is the processor's call; this step is
// only the device-side authentication.
type WalletService interface {
	PresentSheet(ctx context.Context, method domain.PaymentMethod, total domain.Money) error
}

// SimulatedWallet confirms after a fixed biometric-prompt delay.
type SimulatedWallet struct {
	AuthDelay time.Duration
}

func (w *SimulatedWallet) PresentSheet(ctx context.Context, method domain.PaymentMethod, total domain.Money) error {
	select {
	case <-time.After(w.AuthDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
