// Package money converts integer minor-unit amounts for display. Arithmetic
// stays in int64 minor units everywhere else.
package money

import "github.com/shopspring/decimal"

const minorDigits = 2

// Format renders a minor-unit amount as a fixed two-decimal string ("45.00").
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(minorDigits)
}

// ToDecimal converts minor units into a major-unit decimal.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-minorDigits)
}
