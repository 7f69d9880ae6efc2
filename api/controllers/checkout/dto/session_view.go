package checkoutdto

import (
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// SessionView is the checkout page as exposed through the API. Amounts are
// integer cents with a formatted companion string.
type SessionView struct {
	ID               string              `json:"id"`
	DiningMode       enums.DiningMode    `json:"dining_mode"`
	OrderType        enums.OrderType     `json:"order_type"`
	TableNo          string              `json:"table_no,omitempty"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	Lines            []Line              `json:"lines"`
	ItemCount        int                 `json:"item_count"`
	Pricing          Pricing             `json:"pricing"`
	Member           *Member             `json:"member,omitempty"`
	Coupons          Coupons             `json:"coupons"`
	SelectedCouponID *int64              `json:"selected_coupon_id,omitempty"`
	CouponTouched    bool                `json:"coupon_touched"`
	Payment          PayState            `json:"payment"`
}

type Line struct {
	LineID         string            `json:"line_id"`
	ProductID      int64             `json:"product_id"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	Spec           map[string]string `json:"spec,omitempty"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	UnitPrice      string            `json:"unit_price"`
	TotalCents     int64             `json:"total_cents"`
	Total          string            `json:"total"`
}

type Pricing struct {
	SubtotalCents    int64  `json:"subtotal_cents"`
	DiscountCents    int64  `json:"discount_cents"`
	DeliveryFeeCents int64  `json:"delivery_fee_cents"`
	PayableCents     int64  `json:"payable_cents"`
	Subtotal         string `json:"subtotal"`
	Discount         string `json:"discount"`
	DeliveryFee      string `json:"delivery_fee"`
	Payable          string `json:"payable"`
}

type Member struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
	Coupons      int    `json:"coupons"`
	MemberCode   string `json:"member_code,omitempty"`
	IsVIP        bool   `json:"is_vip"`
}

type Coupons struct {
	Eligible   []Coupon `json:"eligible"`
	Ineligible []Coupon `json:"ineligible"`
}

type Coupon struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	DiscountCents     int64  `json:"discount_cents"`
	Discount          string `json:"discount"`
	MinimumSpendCents int64  `json:"minimum_spend_cents"`
	MinimumSpend      string `json:"minimum_spend"`
	Expiry            string `json:"expiry,omitempty"`
}

// PayState mirrors the payment state machine; OrderID is set once an order
// exists, Reason and Message only on failure.
type PayState struct {
	Status  enums.PayStatus     `json:"status"`
	OrderID string              `json:"order_id,omitempty"`
	Reason  enums.PayFailReason `json:"reason,omitempty"`
	Message string              `json:"message,omitempty"`
}
