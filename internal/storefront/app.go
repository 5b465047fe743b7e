package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// TrustProxy is set when the storefront is only reachable through the
	// gateway, so the session limiter can key on the shopper's address.
	TrustProxy bool
}

const (
	sessionLimitPerMin = 10
	limitWindow        = 60 * time.Second
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()
	kit.Common(r, deps.Log)

	if deps.Registry != nil {
		r.Use(kit.NewMetrics(deps.Registry, deps.Service).Middleware)
		s.metrics = newCartMetrics(deps.Registry)
	}

	setupRoutes(r, s, deps)
	return r
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	sessionLimiter := kit.NewIPRateLimiter(sessionLimitPerMin, limitWindow).TrustProxy(deps.TrustProxy)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.With(sessionLimiter.Middleware).Post("/sessions", s.createSession)
	r.Get("/products", s.listProducts)

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(RequireSession(s.Tokens))
		cr.Get("/", s.getCart)
		cr.Get("/count", s.count)
		cr.Post("/items", s.addItem)
		cr.Delete("/items/{id}", s.removeItem)
	})

	if deps.Registry != nil && deps.MetricsEnabled {
		r.With(kit.MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
}
