// Package storefront talks to the remote storefront backend that owns member
// profiles, coupons and orders.
package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// ErrOutOfStock is returned by CreateOrder when an ordered item is sold out.
var ErrOutOfStock = errors.New("storefront: item out of stock")

// Service is the collaborator the checkout core depends on.
type Service interface {
	GetUserProfile(ctx context.Context) (*types.User, error)
	GetCoupons(ctx context.Context) ([]types.Coupon, error)
	CreateOrder(ctx context.Context, payload types.CreateOrderPayload) (*types.CreateOrderResult, error)
	PayOrder(ctx context.Context, orderID string) (bool, error)
}

type tokenKey struct{}

// WithBearerToken stores the member's access token for outbound calls.
func WithBearerToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerToken returns the access token stored on ctx, if any.
func BearerToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
