package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "storefront"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Shopify  ShopifyConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
	Catalog  CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Shopify.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.ensureSourceHost(cfg.Shopify.ShopDomain); err != nil {
		return nil, err
	}
	return &cfg, nil
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

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ShopifyConfig addresses the Storefront GraphQL API of the backing shop.
type ShopifyConfig struct {
	ShopDomain      string        `envconfig:"STOREFRONT_SHOPIFY_SHOP_DOMAIN" required:"true"`
	StorefrontToken string        `envconfig:"STOREFRONT_SHOPIFY_STOREFRONT_TOKEN" required:"true"`
	APIVersion      string        `envconfig:"STOREFRONT_SHOPIFY_API_VERSION" default:"2024-10"`
	Timeout         time.Duration `envconfig:"STOREFRONT_SHOPIFY_TIMEOUT" default:"10s"`
}

func (s ShopifyConfig) validate() error {
	domain := strings.TrimSpace(s.ShopDomain)
	if domain == "" {
		return fmt.Errorf("shopify shop domain is required")
	}
	if strings.Contains(domain, "://") {
		return fmt.Errorf("shopify shop domain must be a bare host, got %q", domain)
	}
	return nil
}

// Endpoint returns the Storefront GraphQL endpoint for the configured shop.
func (s ShopifyConfig) Endpoint() string {
	u := url.URL{
		Scheme: "https",
		Host:   strings.TrimSpace(s.ShopDomain),
		Path:   fmt.Sprintf("/api/%s/graphql.json", s.APIVersion),
	}
	return u.String()
}

type CartConfig struct {
	FreeShippingThreshold string        `envconfig:"STOREFRONT_CART_FREE_SHIPPING_THRESHOLD" default:"80"`
	CoalesceWindow        time.Duration `envconfig:"STOREFRONT_CART_COALESCE_WINDOW" default:"400ms"`
	SessionTTL            time.Duration `envconfig:"STOREFRONT_CART_SESSION_TTL" default:"720h"`
	StoreIdleEviction     time.Duration `envconfig:"STOREFRONT_CART_STORE_IDLE_EVICTION" default:"30m"`
	MutationWindow        time.Duration `envconfig:"STOREFRONT_CART_RATE_LIMIT_WINDOW" default:"1m"`
	MutationLimit         int           `envconfig:"STOREFRONT_CART_RATE_LIMIT" default:"120"`
}

type CheckoutConfig struct {
	SourceHost string `envconfig:"STOREFRONT_CHECKOUT_SOURCE_HOST"`
	TargetHost string `envconfig:"STOREFRONT_CHECKOUT_TARGET_HOST" required:"true"`
}

// ensureSourceHost defaults the rewrite source to the shop domain so the
// platform-issued checkout URLs match without extra configuration.
func (c *CheckoutConfig) ensureSourceHost(shopDomain string) error {
	if strings.TrimSpace(c.SourceHost) != "" {
		return nil
	}
	domain := strings.TrimSpace(shopDomain)
	if domain == "" {
		return fmt.Errorf("checkout source host could not be derived")
	}
	c.SourceHost = domain
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type CatalogConfig struct {
	VariantCacheTTL time.Duration `envconfig:"STOREFRONT_CATALOG_VARIANT_CACHE_TTL" default:"30s"`
	PageSize        int           `envconfig:"STOREFRONT_CATALOG_PAGE_SIZE" default:"24"`
}
