package checkoutdto

import "github.com/angelmondragon/storefront-checkout/pkg/types"

// CreateSessionRequest opens a checkout session. A table number forces
// scan-order; Lines and ReorderItems seed the cart.
type CreateSessionRequest struct {
	DiningMode   string            `json:"dining_mode" validate:"omitempty,oneof=dine-in pickup delivery scan-order"`
	TableNo      string            `json:"table_no" validate:"max=16"`
	Lines        []AddLineRequest  `json:"lines" validate:"max=50,dive"`
	ReorderItems []types.OrderItem `json:"reorder_items" validate:"max=50,dive"`
}

// AddLineRequest adds a product, optionally with a spec selection.
type AddLineRequest struct {
	ProductID      int64             `json:"product_id" validate:"gt=0"`
	Name           string            `json:"name" validate:"required,max=120"`
	UnitPriceCents int64             `json:"unit_price_cents" validate:"gte=0,lte=100000000"`
	Quantity       int               `json:"quantity" validate:"gte=1,max=99"`
	Spec           map[string]string `json:"spec,omitempty" validate:"max=8"`
}

type DiningModeRequest struct {
	DiningMode string `json:"dining_mode" validate:"required,oneof=dine-in pickup delivery scan-order"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=wechat balance"`
}

// CouponRequest selects a coupon; a null coupon_id selects none.
type CouponRequest struct {
	CouponID *int64 `json:"coupon_id" validate:"omitempty,gt=0"`
}
