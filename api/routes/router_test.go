package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	checkoutsvc "github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/internal/storefront"
	pkgAuth "github.com/angelmondragon/storefront-checkout/pkg/auth"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/redis"
)

type testRouter struct {
	handler http.Handler
	mock    *storefront.Mock
	reg     *prometheus.Registry
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60},
		Checkout: config.CheckoutConfig{
			IdempotencyTTL: time.Hour,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *testRouter {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redisClient.Close() })

	reg := prometheus.NewRegistry()
	mock := storefront.NewMock()
	registry, err := checkoutsvc.NewRegistry(checkoutsvc.RegistryParams{
		Service: mock,
		StoreID: 1,
		Logger:  logger.Nop(),
		Metrics: metrics.NewCheckoutMetrics(reg),
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(func() { _ = registry.Close() })

	handler := NewRouter(cfg, logger.Nop(), redisClient, registry, reg, metrics.NewHTTPMetrics(reg))
	return &testRouter{handler: handler, mock: mock, reg: reg}
}

func buildToken(t *testing.T, cfg *config.Config, userID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (r *testRouter) serve(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t, testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := router.serve(httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestCheckoutRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())

	resp := router.serve(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", strings.NewReader(`{}`)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPayRouteRequiresIdempotencyKeyAndReplays(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	token := buildToken(t, cfg, "u123")

	create := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions",
		strings.NewReader(`{"lines":[{"product_id":11,"name":"Latte","unit_price_cents":2500,"quantity":1}]}`))
	create.Header.Set("Authorization", "Bearer "+token)
	resp := router.serve(create)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	payPath := "/api/v1/checkout/sessions/" + created.Data.ID + "/pay"

	noKey := httptest.NewRequest(http.MethodPost, payPath, nil)
	noKey.Header.Set("Authorization", "Bearer "+token)
	if resp := router.serve(noKey); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, payPath, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "pay-1")
		resp := router.serve(req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d: %s", i, resp.Code, resp.Body.String())
		}
		bodies = append(bodies, resp.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("expected replayed body to match original")
	}
	if calls := router.mock.Calls(); calls.CreateOrder != 1 || calls.PayOrder != 1 {
		t.Fatalf("expected a single order and payment, got %+v", calls)
	}
}

func TestMetricsEndpointExposesCheckoutMetrics(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", strings.NewReader(`{}`))
	create.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "u123"))
	if resp := router.serve(create); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	resp := router.serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{"checkout_sessions_active 1", "http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %q in metrics output", name)
		}
	}
}
