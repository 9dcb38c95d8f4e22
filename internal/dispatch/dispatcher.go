// Package dispatch runs one payment attempt through its state machine:
// Idle -> Listening/Authenticating -> Settling -> Succeeded, Failed or
// Cancelled. Every attempt ends in exactly one terminal outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pizzabarbas/pos/internal/domain"
)

type State string

const (
	StateIdle           State = "idle"
	StateListening      State = "listening"
	StateAuthenticating State = "authenticating"
	StateSettling       State = "settling"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
	StateCancelled      State = "cancelled"
)

// ErrAttemptInProgress is returned when a dispatch is requested while a
// prior attempt for the flow is still unresolved.
var ErrAttemptInProgress = errors.New("a payment attempt is already in progress")

// Request carries the resolved amounts for one attempt. Retry counts
// how many times the user has re-dispatched the same sale.
type Request struct {
	Method     domain.PaymentMethod
	Subtotal   domain.Money
	Tip        domain.Money
	Total      domain.Money
	EmployeeID string
	Retry      int
}

// attempt is the transient in-flight state. It exists only while
// Dispatch runs and is discarded on completion or cancellation.
type attempt struct {
	req       Request
	startedAt time.Time

	mu    sync.Mutex
	state State
}

func (a *attempt) transition(to State) {
	a.mu.Lock()
	a.state = to
	a.mu.Unlock()
}

// Dispatcher routes a payment to its method-specific handler and
// guarantees at most one terminal outcome per attempt, even when a
// cancellation races a late success or failure signal.
type Dispatcher struct {
	caps   Capabilities
	proc   Processor
	reader CardReader
	wallet WalletService

	mu       sync.Mutex
	inFlight bool
}

func New(caps Capabilities, proc Processor, reader CardReader, wallet WalletService) *Dispatcher {
	return &Dispatcher{caps: caps, proc: proc, reader: reader, wallet: wallet}
}

// Available exposes the capability query for the method-selection step.
func (d *Dispatcher) Available() []domain.PaymentMethod {
	return d.caps.Available()
}

// Dispatch runs one attempt to completion. On success it returns the
// immutable transaction record; on any failure it returns a typed
// error (declined, timeout, cancelled, unavailable) and no record.
// Only one attempt may be active at a time.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*domain.Transaction, error) {
	if !req.Method.Valid() {
		return nil, &domain.UnavailableError{Method: req.Method, Reason: "unknown payment method"}
	}
	if !d.caps.Supports(req.Method) {
		return nil, &domain.UnavailableError{Method: req.Method, Reason: "not supported on this terminal"}
	}
	if req.Subtotal.IsZero() {
		return nil, &domain.InputError{Reason: "amount must be greater than zero"}
	}
	if req.Total != domain.ComputeTotal(req.Subtotal, req.Tip) {
		return nil, &domain.InputError{Reason: "total does not equal subtotal plus tip"}
	}

	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrAttemptInProgress
	}
	d.inFlight = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.inFlight = false
		d.mu.Unlock()
	}()

	a := &attempt{req: req, startedAt: time.Now(), state: StateIdle}
	log.Printf("[dispatch] %s attempt started: total=%s employee=%s retry=%d",
		req.Method, req.Total, req.EmployeeID, req.Retry)

	card, err := d.capture(ctx, a)
	if err != nil {
		return nil, d.fail(a, err)
	}

	a.transition(StateSettling)
	if err := d.settle(ctx, a); err != nil {
		return nil, d.fail(a, err)
	}

	a.transition(StateSucceeded)
	txn := &domain.Transaction{
		ID:            domain.NewTransactionID(),
		Subtotal:      req.Subtotal,
		Tip:           req.Tip,
		Total:         req.Total,
		PaymentMethod: req.Method,
		EmployeeID:    req.EmployeeID,
		CreatedAt:     time.Now(),
		Status:        domain.StatusCompleted,
		Card:          card,
	}
	log.Printf("[dispatch] %s attempt succeeded: %s", req.Method, txn.ID)
	return txn, nil
}

// capture runs the method-specific pre-settlement phase: NFC listening
// for contactless, the wallet sheet for Apple/Google Pay, nothing for
// cash and card.
func (d *Dispatcher) capture(ctx context.Context, a *attempt) (*domain.CardInfo, error) {
	switch a.req.Method {
	case domain.MethodContactless:
		a.transition(StateListening)
		return d.listen(ctx, a)
	case domain.MethodApplePay, domain.MethodGooglePay:
		a.transition(StateAuthenticating)
		return nil, d.authenticate(ctx, a)
	default:
		return nil, nil
	}
}

type listenResult struct {
	card domain.CardInfo
	err  error
}

// listen holds the scan session for the duration of the listening
// state. The reader is released on every exit path, and the buffered
// result channel means a tap that lands after cancellation is dropped
// rather than delivered as a second outcome.
func (d *Dispatcher) listen(ctx context.Context, a *attempt) (*domain.CardInfo, error) {
	defer func() {
		if err := d.reader.Stop(); err != nil {
			log.Printf("[dispatch] WARNING: reader stop: %v", err)
		}
	}()

	ch := make(chan listenResult, 1)
	go func() {
		card, err := d.reader.StartListening(ctx, a.req.Total)
		ch <- listenResult{card: card, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		card := res.card
		return &card, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) authenticate(ctx context.Context, a *attempt) error {
	ch := make(chan error, 1)
	go func() {
		ch <- d.wallet.PresentSheet(ctx, a.req.Method, a.req.Total)
	}()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) settle(ctx context.Context, a *attempt) error {
	ch := make(chan error, 1)
	go func() {
		ch <- d.proc.Settle(ctx, a.req.Method, a.req.Total)
	}()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fail marks the attempt's terminal state and normalizes context
// cancellation into the domain error taxonomy.
func (d *Dispatcher) fail(a *attempt, err error) error {
	if errors.Is(err, context.Canceled) {
		err = &domain.CancelledError{}
	} else if errors.Is(err, context.DeadlineExceeded) {
		err = &domain.TimeoutError{Method: a.req.Method, Window: time.Since(a.startedAt)}
	}

	var cancelled *domain.CancelledError
	if errors.As(err, &cancelled) {
		a.transition(StateCancelled)
	} else {
		a.transition(StateFailed)
	}
	log.Printf("[dispatch] %s attempt ended: %v", a.req.Method, err)
	return fmt.Errorf("dispatch %s: %w", a.req.Method, err)
}
