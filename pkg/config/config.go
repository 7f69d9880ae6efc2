package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App        AppConfig
	Storefront StorefrontConfig
	Checkout   CheckoutConfig
	Redis      RedisConfig
	JWT        JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every cross-field problem at once.
func (c *Config) Validate() error {
	var errs error
	if !c.Storefront.UseMock && strings.TrimSpace(c.Storefront.BaseURL) == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s is required unless %s is set", EnvStorefrontBaseURL, EnvStorefrontUseMock))
	}
	if c.Storefront.StoreID <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvStorefrontStoreID))
	}
	if c.Checkout.DeliveryFeeMinor < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must not be negative", EnvDeliveryFeeMinor))
	}
	if c.Checkout.CreateOrderTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvCreateOrderTimeout))
	}
	if c.Checkout.PayOrderTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvPayOrderTimeout))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorefrontConfig points the checkout core at the order/payment backend.
type StorefrontConfig struct {
	BaseURL        string        `envconfig:"STOREFRONT_API_BASE_URL"`
	UseMock        bool          `envconfig:"STOREFRONT_USE_MOCK" default:"false"`
	StoreID        int64         `envconfig:"STOREFRONT_STORE_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_API_REQUEST_TIMEOUT" default:"10s"`

	BreakerMaxFailures uint32        `envconfig:"STOREFRONT_API_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"STOREFRONT_API_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type CheckoutConfig struct {
	DeliveryFeeMinor   int64         `envconfig:"STOREFRONT_CHECKOUT_DELIVERY_FEE_CENT" default:"500"`
	CreateOrderTimeout time.Duration `envconfig:"STOREFRONT_CHECKOUT_CREATE_ORDER_TIMEOUT" default:"15s"`
	PayOrderTimeout    time.Duration `envconfig:"STOREFRONT_CHECKOUT_PAY_ORDER_TIMEOUT" default:"60s"`
	SessionTTL         time.Duration `envconfig:"STOREFRONT_CHECKOUT_SESSION_TTL" default:"30m"`
	SweepInterval      time.Duration `envconfig:"STOREFRONT_CHECKOUT_SWEEP_INTERVAL" default:"1m"`
	IdempotencyTTL     time.Duration `envconfig:"STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}
