package checkout

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

type fakeCalls struct {
	profile int
	coupons int
	create  int
	pay     int
}

type fakeStorefront struct {
	mu sync.Mutex

	user       *types.User
	coupons    []types.Coupon
	profileErr error

	createResult *types.CreateOrderResult
	createErr    error
	createGate   chan struct{}
	createSeen   chan struct{}

	paid   bool
	payErr error

	couponsHook func(ctx context.Context, call int) ([]types.Coupon, error)

	calls       fakeCalls
	lastPayload *types.CreateOrderPayload
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		user:         &types.User{ID: "u1", Name: "Lin", BalanceMinor: 100000},
		createResult: &types.CreateOrderResult{Success: true, OrderID: "3662"},
		paid:         true,
	}
}

func (f *fakeStorefront) GetUserProfile(ctx context.Context) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.profile++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.user == nil {
		return nil, nil
	}
	u := *f.user
	return &u, nil
}

func (f *fakeStorefront) GetCoupons(ctx context.Context) ([]types.Coupon, error) {
	f.mu.Lock()
	f.calls.coupons++
	call := f.calls.coupons
	hook := f.couponsHook
	coupons := append([]types.Coupon(nil), f.coupons...)
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, call)
	}
	return coupons, nil
}

func (f *fakeStorefront) CreateOrder(ctx context.Context, payload types.CreateOrderPayload) (*types.CreateOrderResult, error) {
	f.mu.Lock()
	f.calls.create++
	f.lastPayload = &payload
	gate, seen := f.createGate, f.createSeen
	result, err := f.createResult, f.createErr
	f.mu.Unlock()

	if seen != nil {
		close(seen)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeStorefront) PayOrder(ctx context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.pay++
	return f.paid, f.payErr
}

func (f *fakeStorefront) snapshot() fakeCalls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStorefront) payload() *types.CreateOrderPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPayload
}
