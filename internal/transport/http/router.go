package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"members/internal/members/graph"
	"members/internal/members/handler"
	"members/internal/platform/health"
	"members/internal/platform/metrics"
	"members/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Dependencies are the adapters the router mounts.
type Dependencies struct {
	Logger   *slog.Logger
	Members  *handler.Handler
	Graph    *graph.Handler
	Health   *health.Checker
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires the member REST resource, the GraphQL endpoint, the probes
// and the metrics endpoint behind the shared middleware chain.
func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Correlation)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger, d.Metrics))

	d.Health.Register(r)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		d.Members.Register(r)
		if d.Graph != nil {
			d.Graph.Register(r)
		}
	})
	return r
}
