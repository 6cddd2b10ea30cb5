package payment

import (
	"strings"

	"competition-voting/internal/domain"
)

const (
	ProviderMTN    = "mtn"
	ProviderOrange = "orange"
	MethodCard     = "card"
)

// Method is one of MobileMoney or Card. Each variant validates its own fields.
type Method interface {
	// Name is the method stored on a transaction: the provider for mobile
	// money, "card" for cards.
	Name() string
	// Phone is the number stored on a transaction, empty for cards.
	Phone() string
	Validate() error
}

type MobileMoney struct {
	Provider    string
	PhoneNumber string
}

func (m MobileMoney) Name() string  { return m.Provider }
func (m MobileMoney) Phone() string { return strings.TrimSpace(m.PhoneNumber) }

func (m MobileMoney) Validate() error {
	if m.Provider != ProviderMTN && m.Provider != ProviderOrange {
		return domain.Invalid("payment_method", "unknown mobile money provider")
	}
	if m.Phone() == "" {
		return domain.Invalid("phone", "is required for mobile money")
	}
	return nil
}

type Card struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

func (Card) Name() string  { return MethodCard }
func (Card) Phone() string { return "" }

func (c Card) Validate() error {
	switch {
	case strings.TrimSpace(c.Number) == "":
		return domain.Invalid("card.number", "is required")
	case strings.TrimSpace(c.Expiry) == "":
		return domain.Invalid("card.expiry", "is required")
	case strings.TrimSpace(c.CVV) == "":
		return domain.Invalid("card.cvv", "is required")
	}
	return nil
}

// Details is the flat wire form of a payment choice.
type Details struct {
	Method     string `json:"method"`
	Phone      string `json:"phone,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVV    string `json:"card_cvv,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`
}

// Parse turns wire details into a Method. It does not validate the variant's fields.
func Parse(d Details) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(d.Method)) {
	case ProviderMTN:
		return MobileMoney{Provider: ProviderMTN, PhoneNumber: d.Phone}, nil
	case ProviderOrange:
		return MobileMoney{Provider: ProviderOrange, PhoneNumber: d.Phone}, nil
	case MethodCard:
		return Card{Number: d.CardNumber, Expiry: d.CardExpiry, CVV: d.CardCVV, Holder: d.CardHolder}, nil
	case "":
		return nil, domain.Invalid("payment_method", "is required")
	default:
		return nil, domain.Invalid("payment_method", "must be one of mtn, orange, card")
	}
}

func ValidMethodName(name string) bool {
	return name == ProviderMTN || name == ProviderOrange || name == MethodCard
}
