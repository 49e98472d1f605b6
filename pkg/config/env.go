package config

// Environment variable names shared by Load and the test helpers.
const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvAppPort         = "STOREFRONT_APP_PORT"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvShopDomain      = "STOREFRONT_SHOPIFY_SHOP_DOMAIN"
	EnvStorefrontToken = "STOREFRONT_SHOPIFY_STOREFRONT_TOKEN"
	EnvCheckoutTarget  = "STOREFRONT_CHECKOUT_TARGET_HOST"
	EnvCheckoutSource  = "STOREFRONT_CHECKOUT_SOURCE_HOST"
	EnvFreeShipping    = "STOREFRONT_CART_FREE_SHIPPING_THRESHOLD"
)
