// Package gateway composes the products, users and cart APIs behind one
// router together with probes and metrics.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/auth"
	"github.com/balt0r/entrega-backend/internal/cart"
	"github.com/balt0r/entrega-backend/internal/catalog"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	// built from Registry when nil
	Metrics *kit.Metrics

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Products *catalog.Server
	Users    *auth.Server
	Cart     *cart.Server
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Route("/api", func(api chi.Router) {
		api.Mount("/products", deps.Products.Routes())
		api.Mount("/users", deps.Users.Routes())
		api.Mount("/cart", deps.Cart.Routes())
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		if deps.MetricsEnabled {
			deps.Log.Warn("metrics enabled but Registry is nil")
		}
		return
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = kit.NewMetrics(deps.Registry)
	}
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// readyz reports ready only when both collections can be read.
func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	probes := []struct {
		name  string
		store pinger
	}{
		{"products", deps.Products.Store},
		{"users", deps.Users.Users},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, p := range probes {
			if err := checkReady(ctx, p.store); err != nil {
				log.Warn("readyz failed", zap.String("collection", p.name), zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, p.name+" not ready", nil)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, p pinger) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()
	return p.Ping(cctx)
}
