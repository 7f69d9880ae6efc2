package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-checkout/api/controllers"
	checkoutcontrollers "github.com/angelmondragon/storefront-checkout/api/controllers/checkout"
	"github.com/angelmondragon/storefront-checkout/api/middleware"
	checkoutsvc "github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	registry *checkoutsvc.Registry,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, redisClient, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/checkout/sessions", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/", checkoutcontrollers.CreateSession(registry, logg))
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", checkoutcontrollers.GetSession(registry, logg))
			r.Delete("/", checkoutcontrollers.DeleteSession(registry, logg))
			r.Post("/lines", checkoutcontrollers.AddLine(registry, logg))
			r.Delete("/lines/{lineID}", checkoutcontrollers.RemoveLine(registry, logg))
			r.Put("/dining-mode", checkoutcontrollers.SetDiningMode(registry, logg))
			r.Put("/payment-method", checkoutcontrollers.SetPaymentMethod(registry, logg))
			r.Put("/coupon", checkoutcontrollers.SetCoupon(registry, logg))
			r.With(middleware.Idempotency(redisClient, cfg.Checkout.IdempotencyTTL, logg)).
				Post("/pay", checkoutcontrollers.Pay(registry, logg))
			r.Post("/reset", checkoutcontrollers.Reset(registry, logg))
		})
	})

	return r
}
