package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "STOREFRONT_APP_ENV"
	EnvPort      = "STOREFRONT_APP_PORT"
	EnvLogLevel  = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat = "STOREFRONT_LOG_FORMAT"

	EnvStorefrontBaseURL = "STOREFRONT_API_BASE_URL"
	EnvStorefrontUseMock = "STOREFRONT_USE_MOCK"
	EnvStorefrontStoreID = "STOREFRONT_STORE_ID"

	EnvDeliveryFeeMinor   = "STOREFRONT_CHECKOUT_DELIVERY_FEE_CENT"
	EnvCreateOrderTimeout = "STOREFRONT_CHECKOUT_CREATE_ORDER_TIMEOUT"
	EnvPayOrderTimeout    = "STOREFRONT_CHECKOUT_PAY_ORDER_TIMEOUT"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"
)
