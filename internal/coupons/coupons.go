// Package coupons partitions a member's coupons by eligibility and picks the
// coupon applied to a checkout.
package coupons

import (
	"sync"

	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// Partition splits coupons into those whose minimum spend the subtotal meets
// and those it does not. Input order is preserved in both slices.
func Partition(coupons []types.Coupon, subtotalMinor int64) (eligible, ineligible []types.Coupon) {
	eligible = make([]types.Coupon, 0, len(coupons))
	ineligible = make([]types.Coupon, 0)
	for _, c := range coupons {
		if c.MeetsMinimumSpend(subtotalMinor) {
			eligible = append(eligible, c)
		} else {
			ineligible = append(ineligible, c)
		}
	}
	return eligible, ineligible
}

// Recommend returns the eligible coupon with the largest discount. Ties keep
// the first one encountered. Returns nil when eligible is empty.
func Recommend(eligible []types.Coupon) *types.Coupon {
	var best *types.Coupon
	for i := range eligible {
		if best == nil || eligible[i].DiscountAmountMinor > best.DiscountAmountMinor {
			c := eligible[i]
			best = &c
		}
	}
	return best
}

// Selector tracks the selected coupon and whether the member picked it by hand.
// Once touched, recommendations never overwrite the selection again.
type Selector struct {
	mu       sync.RWMutex
	selected *types.Coupon
	touched  bool
}

// NewSelector returns a selector with nothing selected.
func NewSelector() *Selector {
	return &Selector{}
}

// Select records a manual choice. A nil coupon means "no coupon".
func (s *Selector) Select(c *types.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = cloneCoupon(c)
	s.touched = true
}

// MarkTouched records that the member interacted with the selection without
// changing it.
func (s *Selector) MarkTouched() {
	s.mu.Lock()
	s.touched = true
	s.mu.Unlock()
}

// ApplyRecommendation replaces the selection with the best eligible coupon
// unless the member has touched the selection. With nothing eligible the
// current selection is kept; Effective leaves it out of pricing. It reports
// whether the selection was replaced.
func (s *Selector) ApplyRecommendation(coupons []types.Coupon, subtotalMinor int64) bool {
	eligible, _ := Partition(coupons, subtotalMinor)
	recommended := Recommend(eligible)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touched || recommended == nil {
		return false
	}
	s.selected = recommended
	return true
}

// Selected returns a copy of the structurally selected coupon.
func (s *Selector) Selected() *types.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCoupon(s.selected)
}

// Effective returns the coupon that pricing should apply. A selected coupon
// whose minimum spend the subtotal no longer meets is left selected but is
// not applied.
func (s *Selector) Effective(subtotalMinor int64) *types.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil || !s.selected.MeetsMinimumSpend(subtotalMinor) {
		return nil
	}
	return cloneCoupon(s.selected)
}

// Touched reports whether the member made a manual selection.
func (s *Selector) Touched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched
}

func cloneCoupon(c *types.Coupon) *types.Coupon {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
