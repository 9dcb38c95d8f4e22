package dispatch

import "github.com/pizzabarbas/pos/internal/domain"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Capabilities describes what this terminal can offer. It is resolved
// once at startup so method availability is a single query instead of
// platform checks scattered through the flow.
type Capabilities struct {
	Platform Platform
	NFC      bool
}

// Available returns the payment methods this terminal supports. Cash
// and card are always offered; contactless needs the NFC reader;
// wallet methods are restricted to the platform that owns them.
func (c Capabilities) Available() []domain.PaymentMethod {
	methods := []domain.PaymentMethod{domain.MethodCash, domain.MethodCard}
	if c.NFC {
		methods = append(methods, domain.MethodContactless)
	}
	switch c.Platform {
	case PlatformIOS:
		methods = append(methods, domain.MethodApplePay)
	case PlatformAndroid:
		methods = append(methods, domain.MethodGooglePay)
	}
	return methods
}

func (c Capabilities) Supports(m domain.PaymentMethod) bool {
	for _, avail := range c.Available() {
		if m == avail {
			return true
		}
	}
	return false
}
