package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a non-negative currency amount in cents. Keeping amounts as
// fixed-point integers avoids float drift when adding subtotal and tip.
type Money int64

// NewMoney validates that cents is non-negative.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return 0, fmt.Errorf("amount cannot be negative: %d", cents)
	}
	return Money(cents), nil
}

// ParseMoney parses a two-decimal amount string. Both "." and "," are
// accepted as the decimal separator; the terminal displays amounts with
// a comma.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if w < 0 {
		return 0, fmt.Errorf("amount cannot be negative: %s", s)
	}
	return Money(w*100 + f), nil
}

// Cents returns the raw cent value.
func (m Money) Cents() int64 { return int64(m) }

// Add returns the exact sum of two amounts.
func (m Money) Add(o Money) Money { return m + o }

// IsZero reports whether the amount is 0.00.
func (m Money) IsZero() bool { return m == 0 }

// String formats the amount with a dot separator, e.g. "23.50".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

// Display formats the amount the way the terminal shows it, e.g. "23,50".
func (m Money) Display() string {
	return fmt.Sprintf("%d,%02d", int64(m)/100, int64(m)%100)
}

// PercentOf returns rate*m rounded half-up to the nearest cent.
func (m Money) PercentOf(rate float64) Money {
	return Money(math.Floor(float64(m)*rate + 0.5))
}

// MarshalJSON encodes the amount as a two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a two-decimal string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
