package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/emberlane/storefront-backend/api/controllers"
	"github.com/emberlane/storefront-backend/api/routes"
	cartsvc "github.com/emberlane/storefront-backend/internal/cart"
	"github.com/emberlane/storefront-backend/internal/catalog"
	"github.com/emberlane/storefront-backend/internal/checkout"
	"github.com/emberlane/storefront-backend/internal/shopify"
	"github.com/emberlane/storefront-backend/pkg/config"
	"github.com/emberlane/storefront-backend/pkg/logger"
	"github.com/emberlane/storefront-backend/pkg/metrics"
	"github.com/emberlane/storefront-backend/pkg/money"
	"github.com/emberlane/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	threshold, err := money.Parse(cfg.Cart.FreeShippingThreshold)
	if err != nil {
		logg.Error(context.Background(), "invalid free shipping threshold", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.NewGatewayMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	gateway, err := shopify.NewClient(context.Background(), cfg.Shopify, logg, gatewayMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create storefront client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(gateway, cfg.Catalog.VariantCacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	manager := cartsvc.NewManager(gateway, func(sessionID string) cartsvc.IDStore {
		return cartsvc.NewRedisIDStore(redisClient, sessionID, cfg.Cart.SessionTTL)
	}, logg, storeMetrics, cartsvc.ManagerConfig{
		FreeShippingThreshold: threshold,
		CoalesceWindow:        cfg.Cart.CoalesceWindow,
		IdleEviction:          cfg.Cart.StoreIdleEviction,
		Rewriter:              checkout.NewRewriter(cfg.Checkout.SourceHost, cfg.Checkout.TargetHost),
	})
	go manager.Run(context.Background())

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"shop": cfg.Shopify.ShopDomain,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			CartManager: manager,
			Catalog:     catalogService,
			Redis:       redisClient,
			Gatherer:    registry,
			Health: map[string]controllers.Pinger{
				"redis":    redisClient,
				"platform": gateway,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
