package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/auth"
	"github.com/balt0r/entrega-backend/internal/cart"
	"github.com/balt0r/entrega-backend/internal/catalog"
	"github.com/balt0r/entrega-backend/internal/config"
	"github.com/balt0r/entrega-backend/internal/docstore"
	"github.com/balt0r/entrega-backend/internal/gateway"
	"github.com/balt0r/entrega-backend/internal/seed"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

const service = "store"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger level comes from config, so fall back to defaults here
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := kit.NewMetrics(reg)

	products := openStore(ctx, log, cfg.ProductsPath, "products", cfg.StoreTimeout, metrics)
	users := openStore(ctx, log, cfg.UsersPath, "users", cfg.StoreTimeout, metrics)

	seeder := seed.New(products, seed.Product, seed.WithLogger(log))
	if _, err := seeder.Seed(ctx, cfg.SeedProducts); err != nil {
		log.Fatal("seed products failed", zap.Error(err))
	}

	var lookup cart.Lookup = products
	if cfg.CatalogURL != "" {
		lookup = cart.NewCatalogClient(cfg.CatalogURL)
		log.Info("cart uses remote catalog", zap.String("url", cfg.CatalogURL))
	}
	c := cart.New(lookup)
	c.OnChange(func(lines int) { metrics.CartLines.Set(float64(lines)) })

	h := gateway.NewHandler(
		gateway.Deps{
			Products: &catalog.Server{Store: products, Log: log},
			Users: &auth.Server{
				Log:             log,
				Users:           users,
				JWT:             auth.NewTokenMaker(cfg.JWTSecret, ""),
				TokenTTL:        cfg.TokenTTL,
				LoginLimiter:    kit.NewIPRateLimiter(cfg.LoginLimitPerMin, time.Minute),
				RegisterLimiter: kit.NewIPRateLimiter(cfg.RegisterLimitPerMin, time.Minute),
			},
			Cart: &cart.Server{Cart: c, Log: log},
		},
		gateway.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			Metrics:        metrics,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, log *zap.Logger, path, name string, timeout time.Duration, m *kit.Metrics) *docstore.Store {
	s, err := docstore.Open(ctx, path,
		docstore.WithName(name),
		docstore.WithLogger(log.With(zap.String("collection", name))),
		docstore.WithTimeout(timeout),
		docstore.WithObserver(m.ObserveStore),
	)
	if err != nil {
		log.Fatal("open collection failed", zap.String("collection", name), zap.String("path", path), zap.Error(err))
	}
	return s
}
