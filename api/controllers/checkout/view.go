package checkout

import (
	checkoutdto "github.com/angelmondragon/storefront-checkout/api/controllers/checkout/dto"
	"github.com/angelmondragon/storefront-checkout/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/internal/pricing"
	"github.com/angelmondragon/storefront-checkout/pkg/money"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

func newSessionView(view checkoutsvc.View) checkoutdto.SessionView {
	out := checkoutdto.SessionView{
		ID:            view.ID,
		DiningMode:    view.DiningMode,
		OrderType:     view.OrderType,
		TableNo:       view.TableNo,
		PaymentMethod: view.PaymentMethod,
		Lines:         newLines(view.Lines),
		ItemCount:     view.Count,
		Pricing:       newPricing(view.Pricing),
		Member:        newMember(view.User),
		Coupons: checkoutdto.Coupons{
			Eligible:   newCoupons(view.Eligible),
			Ineligible: newCoupons(view.Ineligible),
		},
		CouponTouched: view.CouponTouched,
		Payment:       newPayState(view.PayState),
	}
	if view.SelectedCoupon != nil {
		id := view.SelectedCoupon.ID
		out.SelectedCouponID = &id
	}
	return out
}

func newLines(lines []cart.Line) []checkoutdto.Line {
	out := make([]checkoutdto.Line, 0, len(lines))
	for _, line := range lines {
		total := line.TotalMinor()
		out = append(out, checkoutdto.Line{
			LineID:         line.LineID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			Spec:           line.SelectedSpec,
			UnitPriceCents: line.UnitPriceMinor,
			UnitPrice:      money.Format(line.UnitPriceMinor),
			TotalCents:     total,
			Total:          money.Format(total),
		})
	}
	return out
}

func newPricing(result pricing.Result) checkoutdto.Pricing {
	return checkoutdto.Pricing{
		SubtotalCents:    result.SubtotalMinor,
		DiscountCents:    result.DiscountMinor,
		DeliveryFeeCents: result.DeliveryFeeMinor,
		PayableCents:     result.PayableMinor,
		Subtotal:         money.Format(result.SubtotalMinor),
		Discount:         money.Format(result.DiscountMinor),
		DeliveryFee:      money.Format(result.DeliveryFeeMinor),
		Payable:          money.Format(result.PayableMinor),
	}
}

func newMember(user *types.User) *checkoutdto.Member {
	if user == nil {
		return nil
	}
	return &checkoutdto.Member{
		ID:           user.ID,
		Name:         user.Name,
		Points:       user.Points,
		BalanceCents: user.BalanceMinor,
		Balance:      money.Format(user.BalanceMinor),
		Coupons:      user.Coupons,
		MemberCode:   user.MemberCode,
		IsVIP:        user.IsVIP,
	}
}

func newCoupons(list []types.Coupon) []checkoutdto.Coupon {
	out := make([]checkoutdto.Coupon, 0, len(list))
	for _, c := range list {
		out = append(out, checkoutdto.Coupon{
			ID:                c.ID,
			Name:              c.Name,
			DiscountCents:     c.DiscountAmountMinor,
			Discount:          money.Format(c.DiscountAmountMinor),
			MinimumSpendCents: c.MinimumSpendMinor,
			MinimumSpend:      money.Format(c.MinimumSpendMinor),
			Expiry:            c.Expiry,
		})
	}
	return out
}

func newPayState(state checkoutsvc.PayState) checkoutdto.PayState {
	out := checkoutdto.PayState{Status: state.Status()}
	switch s := state.(type) {
	case checkoutsvc.Paying:
		out.OrderID = s.OrderID
	case checkoutsvc.Succeeded:
		out.OrderID = s.OrderID
	case checkoutsvc.Failed:
		out.Reason = s.Reason
		out.Message = s.Message
	}
	return out
}
