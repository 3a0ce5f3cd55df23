package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	request "dummyapi/pkg/platform/middleware/request"
)

// Registrar mounts a group of routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the cross-cutting pieces of the middleware stack.
type RouterConfig struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	// Latency is optional; nil disables the request duration histogram.
	Latency *request.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter wires the middleware stack and every registrar. Handlers stay
// thin and delegate to services so transport concerns remain isolated.
func NewRouter(cfg RouterConfig, registrars ...Registrar) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.ClientIP)
	r.Use(request.RequestTime)
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.Latency, routePattern))
	r.Use(request.Timeout(timeout))
	r.Use(request.ContentTypeJSON)

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	for _, reg := range registrars {
		reg.Register(r)
	}

	return r
}

// routePattern reports the matched chi pattern so metrics use /dummy/{id}
// rather than one label per record.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
