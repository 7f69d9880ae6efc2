package types

// Coupon is a fixed-amount voucher fetched for the checkout session.
// Values are immutable once fetched.
type Coupon struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	DiscountAmountMinor int64  `json:"amountCent"`
	MinimumSpendMinor   int64  `json:"minSpendCent"`
	Expiry              string `json:"expireDate"`
}

// MeetsMinimumSpend reports whether the coupon applies to the given subtotal.
func (c Coupon) MeetsMinimumSpend(subtotalMinor int64) bool {
	return c.MinimumSpendMinor <= subtotalMinor
}
