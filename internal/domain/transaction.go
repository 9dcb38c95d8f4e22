package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodCard        PaymentMethod = "card"
	MethodContactless PaymentMethod = "contactless"
	MethodApplePay    PaymentMethod = "applePay"
	MethodGooglePay   PaymentMethod = "googlePay"
)

// Methods lists every payment method the terminal knows about.
var Methods = []PaymentMethod{
	MethodCash, MethodCard, MethodContactless, MethodApplePay, MethodGooglePay,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// CardInfo is the method-specific metadata read from a contactless tap.
type CardInfo struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// Transaction is the terminal record of a finished sale. It is created
// once by the dispatcher on a definitive outcome and never mutated;
// the ledger owns the collection and hands out copies.
type Transaction struct {
	ID            string            `json:"id"`
	Subtotal      Money             `json:"subtotal"`
	Tip           Money             `json:"tip"`
	Total         Money             `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	EmployeeID    string            `json:"employee_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        TransactionStatus `json:"status"`
	Card          *CardInfo         `json:"card_info,omitempty"`
}

// NewTransactionID returns a session-unique transaction id.
func NewTransactionID() string {
	return fmt.Sprintf("TXN-%s", uuid.NewString())
}
