package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-checkout/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout            = 10 * time.Second
	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second
	responseBodyLimit         = 1 << 20
	errorBodyReadLimit        = 1024

	authExpiredMessage = "AUTH_EXPIRED"
)

var errBaseURLRequired = errors.New("storefront base url is required")

// Client calls the storefront REST API. Every response is wrapped in the
// {code, msg, data} envelope; code 200 means success.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
	logg       *logger.Logger

	breakerFailures    uint32
	breakerOpenTimeout time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger records breaker state changes.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		if maxFailures > 0 {
			c.breakerFailures = maxFailures
		}
		if openTimeout > 0 {
			c.breakerOpenTimeout = openTimeout
		}
	}
}

// NewClient builds a storefront client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse storefront base url: %w", err)
	}

	client := &Client{
		baseURL:            trimmed,
		httpClient:         &http.Client{Timeout: defaultTimeout},
		breakerFailures:    defaultBreakerFailures,
		breakerOpenTimeout: defaultBreakerOpenTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	client.breaker = gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "storefront",
		Timeout: client.breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= client.breakerFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if client.logg == nil {
				return
			}
			ctx := client.logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			client.logg.Warn(ctx, "storefront circuit breaker state changed")
		},
	})

	return client, nil
}

// NewClientFromConfig builds a client using the storefront config group.
func NewClientFromConfig(cfg config.StorefrontConfig, logg *logger.Logger) (*Client, error) {
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		WithBreaker(cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout),
		WithLogger(logg),
	)
}

// GetUserProfile fetches the signed-in member's profile.
func (c *Client) GetUserProfile(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.call(ctx, http.MethodGet, "/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCoupons lists the member's coupons.
func (c *Client) GetCoupons(ctx context.Context) ([]types.Coupon, error) {
	var coupons []types.Coupon
	if err := c.call(ctx, http.MethodGet, "/coupons", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// CreateOrder submits the order payload. A sold-out item surfaces as ErrOutOfStock.
func (c *Client) CreateOrder(ctx context.Context, payload types.CreateOrderPayload) (*types.CreateOrderResult, error) {
	var result types.CreateOrderResult
	if err := c.call(ctx, http.MethodPost, "/orders", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type payOrderResult struct {
	Paid bool `json:"paid"`
}

// PayOrder settles a created order and reports whether payment went through.
func (c *Client) PayOrder(ctx context.Context, orderID string) (bool, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var result payOrderResult
	path := "/orders/" + url.PathEscape(orderID) + "/pay"
	if err := c.call(ctx, http.MethodPost, path, nil, &result); err != nil {
		return false, err
	}
	return result.Paid, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	data, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.do(ctx, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront unavailable")
		}
		return err
	}

	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s %s response", method, path))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "marshal storefront request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build storefront request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, authExpiredMessage)
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrOutOfStock
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("storefront %s %s returned %d", method, path, resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": strings.TrimSpace(string(snippet))})
	}

	var envelope types.StorefrontEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyLimit)).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode storefront envelope")
	}
	switch envelope.Code {
	case types.StorefrontCodeOK:
		return envelope.Data, nil
	case http.StatusUnauthorized:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, authExpiredMessage)
	case http.StatusConflict:
		return nil, ErrOutOfStock
	}

	msg := strings.TrimSpace(envelope.Msg)
	if msg == "" {
		msg = "unknown storefront error"
	}
	return nil, pkgerrors.New(pkgerrors.CodeUpstream, msg).WithDetails(map[string]any{"code": envelope.Code})
}

// Only transport-level trouble counts against the breaker; business
// rejections and caller cancellations do not.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return !pkgerrors.HasCode(err, pkgerrors.CodeDependency)
}
