package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/storefront-checkout/api/routes"
	"github.com/angelmondragon/storefront-checkout/api/validators"
	"github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/internal/storefront"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/instance"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "checkout-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "checkout-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := newStorefront(cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to create storefront client", err)
		os.Exit(1)
	}

	registry, err := checkout.NewRegistry(checkout.RegistryParams{
		Service:            svc,
		Logger:             logg,
		Metrics:            metrics.NewCheckoutMetrics(promRegistry),
		Validator:          validators.New(),
		StoreID:            cfg.Storefront.StoreID,
		DeliveryFeeMinor:   cfg.Checkout.DeliveryFeeMinor,
		CreateOrderTimeout: cfg.Checkout.CreateOrderTimeout,
		PayOrderTimeout:    cfg.Checkout.PayOrderTimeout,
		SessionTTL:         cfg.Checkout.SessionTTL,
		SweepInterval:      cfg.Checkout.SweepInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout registry", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"instance":        instance.GetID(),
		"storefront_mock": cfg.Storefront.UseMock,
		"store_id":        cfg.Storefront.StoreID,
	})
	logg.Info(serverCtx, "starting checkout api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisClient, registry, promRegistry, metrics.NewHTTPMetrics(promRegistry)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := registry.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()
	closeErr := multierr.Combine(registry.Close(), redisClient.Close())
	if err := multierr.Append(runErr, closeErr); err != nil {
		logg.Error(serverCtx, "checkout api stopped with errors", err)
		os.Exit(1)
	}
	logg.Info(serverCtx, "checkout api stopped")
}

func newStorefront(cfg *config.Config, logg *logger.Logger) (storefront.Service, error) {
	if cfg.Storefront.UseMock {
		logg.Warn(context.Background(), "using in-memory storefront mock")
		return storefront.NewMock(), nil
	}
	return storefront.NewClientFromConfig(cfg.Storefront, logg)
}
