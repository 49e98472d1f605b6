package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emberlane/storefront-backend/api/controllers"
	"github.com/emberlane/storefront-backend/api/middleware"
	cartsvc "github.com/emberlane/storefront-backend/internal/cart"
	"github.com/emberlane/storefront-backend/internal/catalog"
	"github.com/emberlane/storefront-backend/pkg/config"
	"github.com/emberlane/storefront-backend/pkg/logger"
	"github.com/emberlane/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	CartManager *cartsvc.Manager
	Catalog     catalog.Service
	Redis       *redis.Client
	Gatherer    prometheus.Gatherer
	Health      map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Health))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	mutationLimit := func(next http.Handler) http.Handler { return next }
	if d.Redis != nil {
		mutationLimit = middleware.MutationRateLimit(middleware.MutationRateLimitPolicy{
			Window: cfg.Cart.MutationWindow,
			Limit:  cfg.Cart.MutationLimit,
		}, d.Redis, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg, cfg.Cart.SessionTTL, cfg.App.IsProd()))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(d.CartManager, logg))
			r.Get("/checkout-url", controllers.CartCheckoutURL(d.CartManager, logg))

			r.Group(func(r chi.Router) {
				r.Use(mutationLimit)
				r.Post("/lines", controllers.CartAddLine(d.CartManager, d.Catalog, logg))
				r.Patch("/lines/{lineID}", controllers.CartUpdateLine(d.CartManager, logg))
				r.Delete("/lines/{lineID}", controllers.CartRemoveLine(d.CartManager, logg))
				r.Post("/open", controllers.CartOpen(d.CartManager, logg))
				r.Post("/close", controllers.CartClose(d.CartManager, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Catalog, logg, cfg.Catalog.PageSize))
			r.Get("/{handle}/variants", controllers.ProductVariants(d.Catalog, logg))
		})
	})

	return r
}
