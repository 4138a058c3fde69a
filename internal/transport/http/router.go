package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "idregistry/internal/identity/handler"
	"idregistry/internal/platform/health"
	"idregistry/pkg/platform/middleware/auth"
	"idregistry/pkg/platform/middleware/request"
	"idregistry/pkg/platform/middleware/requesttime"
	"idregistry/pkg/validation"
)

// Deps are the pieces the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Identity       *identityhandler.Handler
	Health         *health.Handler
	Validator      auth.JWTValidator
	Metrics        *request.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	// Clock pins request time; nil uses the wall clock.
	Clock requesttime.Clock
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps) http.Handler {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.WithClock(clock))
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Metrics))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(timeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		d.Identity.Register(r, auth.RequireAuth(d.Validator, d.Logger))
	})

	return r
}
