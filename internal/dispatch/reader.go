package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pizzabarbas/pos/internal/domain"
)

// CardReader is the contactless scan resource. StartListening blocks
// until a tap is detected, the listening window elapses, or ctx is
// cancelled. Stop tears the scan session down; calling it on an idle
// reader is a no-op, so teardown can run on every exit path.
type CardReader interface {
	StartListening(ctx context.Context, amount domain.Money) (domain.CardInfo, error)
	Stop() error
}

// SimulatedReader mimics the NFC hardware: a fixed detection delay
// followed by a canned card, bounded by a read timeout.
type SimulatedReader struct {
	DetectDelay time.Duration
	ReadTimeout time.Duration
	Card        domain.CardInfo

	mu        sync.Mutex
	listening bool
	stop      chan struct{}
}

func NewSimulatedReader(detectDelay, readTimeout time.Duration, card domain.CardInfo) *SimulatedReader {
	return &SimulatedReader{
		DetectDelay: detectDelay,
		ReadTimeout: readTimeout,
		Card:        card,
	}
}

func (r *SimulatedReader) StartListening(ctx context.Context, amount domain.Money) (domain.CardInfo, error) {
	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return domain.CardInfo{}, fmt.Errorf("reader already listening")
	}
	r.listening = true
	r.stop = make(chan struct{})
	stop := r.stop
	r.mu.Unlock()

	defer r.Stop()

	select {
	case <-time.After(r.DetectDelay):
		return r.Card, nil
	case <-time.After(r.ReadTimeout):
		return domain.CardInfo{}, &domain.TimeoutError{Method: domain.MethodContactless, Window: r.ReadTimeout}
	case <-stop:
		return domain.CardInfo{}, &domain.CancelledError{}
	case <-ctx.Done():
		return domain.CardInfo{}, ctx.Err()
	}
}

// Stop releases the scan session. Safe to call repeatedly.
func (r *SimulatedReader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.listening {
		return nil
	}
	r.listening = false
	close(r.stop)
	return nil
}

// Listening reports whether a scan session is active.
func (r *SimulatedReader) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}
