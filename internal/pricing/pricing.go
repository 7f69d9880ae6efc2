// Package pricing derives the payable amount of a checkout from its subtotal,
// the effective coupon and the dining mode. Everything here is pure.
package pricing

import (
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// FlatDeliveryFeeMinor is the default delivery surcharge in minor units.
const FlatDeliveryFeeMinor int64 = 500

// Result is the price breakdown shown at checkout.
type Result struct {
	SubtotalMinor    int64
	DiscountMinor    int64
	DeliveryFeeMinor int64
	PayableMinor     int64
}

// Calculator prices a checkout with a configurable delivery fee.
type Calculator struct {
	DeliveryFeeMinor int64
}

// NewCalculator returns a calculator; a non-positive fee falls back to the default.
func NewCalculator(deliveryFeeMinor int64) Calculator {
	if deliveryFeeMinor <= 0 {
		deliveryFeeMinor = FlatDeliveryFeeMinor
	}
	return Calculator{DeliveryFeeMinor: deliveryFeeMinor}
}

// Compute prices a checkout using the default delivery fee.
func Compute(subtotalMinor int64, coupon *types.Coupon, mode enums.DiningMode) Result {
	return NewCalculator(FlatDeliveryFeeMinor).Compute(subtotalMinor, coupon, mode)
}

// Compute returns the breakdown for the subtotal, optional coupon and dining
// mode. The discounted subtotal never drops below zero; the delivery fee is
// added after the floor.
func (c Calculator) Compute(subtotalMinor int64, coupon *types.Coupon, mode enums.DiningMode) Result {
	var discount int64
	if coupon != nil && coupon.DiscountAmountMinor > 0 {
		discount = coupon.DiscountAmountMinor
	}

	var fee int64
	if mode == enums.DiningModeDelivery {
		fee = c.DeliveryFeeMinor
	}

	goods := subtotalMinor - discount
	if goods < 0 {
		goods = 0
	}

	return Result{
		SubtotalMinor:    subtotalMinor,
		DiscountMinor:    discount,
		DeliveryFeeMinor: fee,
		PayableMinor:     goods + fee,
	}
}
