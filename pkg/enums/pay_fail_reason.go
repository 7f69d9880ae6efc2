package enums

// PayFailReason is the closed set of causes a checkout payment can fail with.
type PayFailReason string

const (
	PayFailInsufficientBalance PayFailReason = "INSUFFICIENT_BALANCE"
	PayFailOutOfStock          PayFailReason = "OUT_OF_STOCK"
	PayFailNetworkError        PayFailReason = "NETWORK_ERROR"
	PayFailUserCancelled       PayFailReason = "USER_CANCELLED"
	PayFailUnknown             PayFailReason = "UNKNOWN"
)

var validPayFailReasons = []PayFailReason{
	PayFailInsufficientBalance,
	PayFailOutOfStock,
	PayFailNetworkError,
	PayFailUserCancelled,
	PayFailUnknown,
}

// String implements fmt.Stringer.
func (p PayFailReason) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayFailReason.
func (p PayFailReason) IsValid() bool {
	for _, candidate := range validPayFailReasons {
		if candidate == p {
			return true
		}
	}
	return false
}
