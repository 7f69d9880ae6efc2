package types

// User is the member profile returned by the storefront backend.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Points       int    `json:"points"`
	BalanceMinor int64  `json:"balanceCent"`
	Coupons      int    `json:"coupons"`
	MemberCode   string `json:"memberCode,omitempty"`
	IsVIP        bool   `json:"isVip"`
}
