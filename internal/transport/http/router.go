// Package httptransport assembles the public HTTP surface: shared middleware,
// health and metrics endpoints, and the client and admin route groups.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboard/internal/platform/metrics"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/admin"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/platform/middleware/metadata"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/platform/middleware/requesttime"
)

const (
	defaultRequestTimeout = 30 * time.Second
	healthCheckTimeout    = 2 * time.Second
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// RegistrarFunc adapts a plain function to Registrar.
type RegistrarFunc func(r chi.Router)

func (f RegistrarFunc) Register(r chi.Router) { f(r) }

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Clients        auth.KeyVerifier
	AdminToken     string
	RequestTimeout time.Duration
	Health         map[string]HealthCheck

	// ClientMiddleware runs after client authentication.
	ClientMiddleware []func(http.Handler) http.Handler
	// ClientRoutes are mounted behind client authentication.
	ClientRoutes []Registrar
	// AdminRoutes are mounted behind the admin token.
	AdminRoutes []Registrar
}

// NewRouter wires every endpoint behind the shared middleware chain.
func NewRouter(cfg Config) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(metrics.LatencyMiddleware(cfg.Metrics))
	r.Use(chimw.Timeout(timeout))

	r.Get("/health", healthHandler(cfg.Health, cfg.Logger))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireClient(cfg.Clients, cfg.Logger))
		r.Use(cfg.ClientMiddleware...)
		for _, reg := range cfg.ClientRoutes {
			reg.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		for _, reg := range cfg.AdminRoutes {
			reg.Register(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		var failed []string
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"component", name,
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				failed = append(failed, name)
			}
		}
		if len(failed) > 0 {
			slices.Sort(failed)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Failed: failed})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
