package domain

import (
	"fmt"
	"time"
)

// InputError marks a sale that cannot proceed to dispatch, such as a
// zero amount. It is resolved at the entry step and never reaches the
// dispatcher.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "invalid input: " + e.Reason }

// UnavailableError is raised before dispatch when a payment method's
// prerequisite service is not initialized or not supported on this
// terminal.
type UnavailableError struct {
	Method PaymentMethod
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("payment method %s unavailable: %s", e.Method, e.Reason)
}

// DeclinedError is a terminal rejection from the payment processor.
type DeclinedError struct {
	Method PaymentMethod
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// TimeoutError means no card or device was detected within the
// listening window. Only contactless attempts can time out.
type TimeoutError struct {
	Method PaymentMethod
	Window time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no card detected within %s", e.Window)
}

// CancelledError is an explicit user abort of an in-flight attempt.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "payment cancelled by user" }
