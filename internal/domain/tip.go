package domain

import "fmt"

type TipKind string

const (
	TipPercentage TipKind = "percentage"
	TipCustom     TipKind = "custom"
	TipNone       TipKind = "none"
)

// TipRates are the preset percentages offered on the tip screen.
var TipRates = []float64{0.15, 0.18, 0.20, 0.30}

// TipSelection is a tagged variant: exactly one of the three kinds is
// active when the sale continues to payment.
type TipSelection struct {
	Kind   TipKind `json:"kind"`
	Rate   float64 `json:"rate,omitempty"`
	Amount Money   `json:"amount,omitempty"`
}

func PercentageTip(rate float64) TipSelection {
	return TipSelection{Kind: TipPercentage, Rate: rate}
}

func CustomTip(amount Money) TipSelection {
	return TipSelection{Kind: TipCustom, Amount: amount}
}

func NoTip() TipSelection {
	return TipSelection{Kind: TipNone}
}

// Validate checks that the selection is resolved: a known kind, and for
// percentages one of the preset rates.
func (s TipSelection) Validate() error {
	switch s.Kind {
	case TipPercentage:
		for _, r := range TipRates {
			if s.Rate == r {
				return nil
			}
		}
		return fmt.Errorf("unsupported tip rate: %v", s.Rate)
	case TipCustom, TipNone:
		return nil
	default:
		return fmt.Errorf("unresolved tip selection: %q", s.Kind)
	}
}

// ComputeTip derives the tip amount from the base amount and selection.
// Percentage tips round half-up to the cent; custom tips are taken
// as-is; no tip is 0.00.
func ComputeTip(base Money, sel TipSelection) (Money, error) {
	if err := sel.Validate(); err != nil {
		return 0, err
	}
	switch sel.Kind {
	case TipPercentage:
		return base.PercentOf(sel.Rate), nil
	case TipCustom:
		return sel.Amount, nil
	default:
		return 0, nil
	}
}

// ComputeTotal is exact fixed-point addition of base and tip.
func ComputeTotal(base, tip Money) Money {
	return base.Add(tip)
}
