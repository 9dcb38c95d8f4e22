// Package entry implements the sale-amount keypad: a small state
// machine that accumulates digit presses into a two-decimal amount.
package entry

import (
	"fmt"

	"github.com/pizzabarbas/pos/internal/domain"
)

// Keypad accumulates keypad tokens into a monetary amount. Before the
// decimal separator is pressed, digits shift the whole part left by one
// position; after it, up to two fraction digits are accepted.
type Keypad struct {
	whole   int64
	frac    []int64
	decimal bool
}

// New returns a keypad showing 0,00.
func New() *Keypad {
	return &Keypad{}
}

// PressDigit handles a 0-9 key. A third fraction digit is a no-op.
func (k *Keypad) PressDigit(d int) error {
	if d < 0 || d > 9 {
		return fmt.Errorf("digit out of range: %d", d)
	}
	if k.decimal {
		if len(k.frac) < 2 {
			k.frac = append(k.frac, int64(d))
		}
		return nil
	}
	k.whole = k.whole*10 + int64(d)
	return nil
}

// PressDoubleZero handles the 00 key: two positions in whole mode,
// zero-fill up to capacity in fraction mode.
func (k *Keypad) PressDoubleZero() {
	if k.decimal {
		for len(k.frac) < 2 {
			k.frac = append(k.frac, 0)
		}
		return
	}
	k.whole *= 100
}

// PressSeparator switches to fraction entry. Pressing it again while
// already in fraction mode does nothing.
func (k *Keypad) PressSeparator() {
	k.decimal = true
}

// PressBackspace removes the most recent input: the last fraction
// digit, then the separator itself, then whole digits down to zero.
func (k *Keypad) PressBackspace() {
	if k.decimal {
		if len(k.frac) > 0 {
			k.frac = k.frac[:len(k.frac)-1]
			return
		}
		k.decimal = false
		return
	}
	k.whole /= 10
}

// PressClear resets the keypad to 0,00.
func (k *Keypad) PressClear() {
	k.whole = 0
	k.frac = nil
	k.decimal = false
}

// Display returns the running entry as shown on screen, e.g. "0,00",
// "23,00", "23," or "23,5".
func (k *Keypad) Display() string {
	if !k.decimal {
		return fmt.Sprintf("%d,00", k.whole)
	}
	s := fmt.Sprintf("%d,", k.whole)
	for _, d := range k.frac {
		s += fmt.Sprintf("%d", d)
	}
	return s
}

// Amount normalizes the current entry to cents. Missing fraction
// digits count as zero.
func (k *Keypad) Amount() domain.Money {
	cents := k.whole * 100
	if len(k.frac) > 0 {
		cents += k.frac[0] * 10
	}
	if len(k.frac) > 1 {
		cents += k.frac[1]
	}
	return domain.Money(cents)
}

// Submit returns the normalized amount, rejecting a zero entry so the
// caller cannot continue to payment with nothing rung up.
func (k *Keypad) Submit() (domain.Money, error) {
	amount := k.Amount()
	if amount.IsZero() {
		return 0, &domain.InputError{Reason: "amount must be greater than zero"}
	}
	return amount, nil
}
