package enums

import "fmt"

// PaymentMethod describes how a member intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodWeChat  PaymentMethod = "wechat"
	PaymentMethodBalance PaymentMethod = "balance"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodWeChat,
	PaymentMethodBalance,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// UsesBalance reports whether the method draws on the member's stored balance.
func (p PaymentMethod) UsesBalance() bool {
	return p == PaymentMethodBalance
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
