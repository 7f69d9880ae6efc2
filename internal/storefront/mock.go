package storefront

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// MockCalls counts collaborator invocations.
type MockCalls struct {
	GetUserProfile int
	GetCoupons     int
	CreateOrder    int
	PayOrder       int
}

// Mock is an in-memory storefront used for local development and tests.
type Mock struct {
	mu        sync.Mutex
	user      *types.User
	coupons   []types.Coupon
	latency   time.Duration
	createErr error
	profErr   error
	payResult bool
	payErr    error
	orders    map[string]types.CreateOrderPayload
	calls     MockCalls
	seq       atomic.Int64
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithMockUser replaces the default member profile.
func WithMockUser(user types.User) MockOption {
	return func(m *Mock) {
		m.user = &user
	}
}

// WithMockCoupons sets the coupons returned by GetCoupons.
func WithMockCoupons(coupons ...types.Coupon) MockOption {
	return func(m *Mock) {
		m.coupons = append([]types.Coupon(nil), coupons...)
	}
}

// WithMockLatency delays every call, honoring context cancellation.
func WithMockLatency(d time.Duration) MockOption {
	return func(m *Mock) {
		m.latency = d
	}
}

// WithMockCreateError makes CreateOrder fail with err.
func WithMockCreateError(err error) MockOption {
	return func(m *Mock) {
		m.createErr = err
	}
}

// WithMockProfileError makes GetUserProfile fail with err.
func WithMockProfileError(err error) MockOption {
	return func(m *Mock) {
		m.profErr = err
	}
}

// WithMockPayResult sets what PayOrder returns.
func WithMockPayResult(paid bool, err error) MockOption {
	return func(m *Mock) {
		m.payResult = paid
		m.payErr = err
	}
}

// NewMock returns a mock storefront with a demo member and no coupons.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		user: &types.User{
			ID:         "u123",
			Name:       "Demo Member",
			Phone:      "188****4331",
			Points:     19,
			Coupons:    2,
			MemberCode: "882910",
		},
		payResult: true,
		orders:    make(map[string]types.CreateOrderPayload),
	}
	m.seq.Store(1000)
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// GetUserProfile returns a copy of the configured member.
func (m *Mock) GetUserProfile(ctx context.Context) (*types.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.GetUserProfile++
	if m.profErr != nil {
		return nil, m.profErr
	}
	user := *m.user
	return &user, nil
}

// GetCoupons returns a copy of the configured coupons.
func (m *Mock) GetCoupons(ctx context.Context) ([]types.Coupon, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.GetCoupons++
	return append([]types.Coupon(nil), m.coupons...), nil
}

// CreateOrder records the payload under a new order id.
func (m *Mock) CreateOrder(ctx context.Context, payload types.CreateOrderPayload) (*types.CreateOrderResult, error) {
	m.mu.Lock()
	m.calls.CreateOrder++
	createErr := m.createErr
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if createErr != nil {
		return nil, createErr
	}
	if _, err := enums.ParseOrderType(string(payload.Type)); err != nil {
		return nil, fmt.Errorf("mock storefront: %w", err)
	}

	orderID := fmt.Sprintf("%d", m.seq.Add(1))
	m.mu.Lock()
	m.orders[orderID] = payload
	m.mu.Unlock()
	return &types.CreateOrderResult{Success: true, OrderID: orderID}, nil
}

// PayOrder returns the configured pay result.
func (m *Mock) PayOrder(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	m.calls.PayOrder++
	paid, payErr := m.payResult, m.payErr
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return false, err
	}
	return paid, payErr
}

// Calls returns a snapshot of the call counters.
func (m *Mock) Calls() MockCalls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Order returns the payload recorded for orderID.
func (m *Mock) Order(orderID string) (types.CreateOrderPayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.orders[orderID]
	return payload, ok
}

// SetUser swaps the member profile returned by later calls.
func (m *Mock) SetUser(user types.User) {
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
}

// SetCoupons swaps the coupons returned by later calls.
func (m *Mock) SetCoupons(coupons ...types.Coupon) {
	m.mu.Lock()
	m.coupons = append([]types.Coupon(nil), coupons...)
	m.mu.Unlock()
}

func (m *Mock) wait(ctx context.Context) error {
	m.mu.Lock()
	latency := m.latency
	m.mu.Unlock()
	if latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
