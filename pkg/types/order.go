package types

import "github.com/angelmondragon/storefront-checkout/pkg/enums"

// OrderItem is a single cart line as sent to the order-creation endpoint.
type OrderItem struct {
	ProductID      int64  `json:"productId" validate:"required,gt=0"`
	Name           string `json:"name" validate:"required"`
	UnitPriceMinor int64  `json:"priceCent" validate:"gte=0,lte=100000000"`
	Count          int    `json:"count" validate:"gte=1,lte=999"`
	SpecSnapshot   string `json:"specSnapshot,omitempty"`
}

// CreateOrderPayload is the body of a createOrder call.
type CreateOrderPayload struct {
	StoreID  int64           `json:"storeId" validate:"required,gt=0"`
	Type     enums.OrderType `json:"type" validate:"required"`
	Items    []OrderItem     `json:"items" validate:"required,min=1,dive"`
	TableNo  string          `json:"tableNo,omitempty"`
	CouponID *int64          `json:"couponId,omitempty"`
}

// CreateOrderResult is the createOrder response.
type CreateOrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}
