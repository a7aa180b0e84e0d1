// Package httpapi assembles the HTTP surface: shared middleware, probes and
// the versioned API routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"ridergate/internal/platform/metrics"
	ratelimitmw "ridergate/internal/ratelimit/middleware"
	ratelimitmodels "ridergate/internal/ratelimit/models"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	metadata "ridergate/pkg/platform/middleware/metadata"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/platform/middleware/requesttime"
)

// APIPrefix is where every domain route is mounted.
const APIPrefix = "/api/v1"

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Check is a named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Deps struct {
	Logger         *slog.Logger
	Validator      auth.CallerValidator
	Metrics        *metrics.HTTP
	RateLimit      *ratelimitmw.Middleware
	RequestTimeout time.Duration
	AllowedOrigins []string
	Checks         []Check
	Handlers       []Registrar
}

// NewRouter mounts probes at the root and the domain handlers under APIPrefix.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Recover(d.Logger))
	r.Use(request.AccessLog(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders:   []string{request.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(d.Checks, d.Logger))
	r.Handle("/metrics", metrics.Handler())

	r.Route(APIPrefix, func(api chi.Router) {
		if d.RequestTimeout > 0 {
			api.Use(request.Timeout(d.RequestTimeout))
		}
		if d.RateLimit != nil {
			api.Use(limitPublic(d.RateLimit))
		}
		api.Use(auth.Authenticate(d.Validator, d.Logger))
		for _, h := range d.Handlers {
			h.Register(api)
		}
	})
	return r
}

func readiness(checks []Check, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "check", c.Name, "error", err)
				results[c.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{"checks": results})
	}
}

// limitPublic applies the per-IP limiter to the unauthenticated endpoints.
func limitPublic(m *ratelimitmw.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := map[ratelimitmodels.Class]http.Handler{}
		for _, class := range []ratelimitmodels.Class{
			ratelimitmodels.ClassVerify,
			ratelimitmodels.ClassVerifyLog,
			ratelimitmodels.ClassIncidentReport,
			ratelimitmodels.ClassSMSInbound,
		} {
			limited[class] = m.Limit(class)(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if class, ok := PublicClass(r.Method, strings.TrimPrefix(r.URL.Path, APIPrefix)); ok {
				limited[class].ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicClass maps a public route to its rate limit class. path is relative
// to APIPrefix.
func PublicClass(method, path string) (ratelimitmodels.Class, bool) {
	switch {
	case method == http.MethodPost && path == "/verify/log":
		return ratelimitmodels.ClassVerifyLog, true
	case method == http.MethodGet && strings.HasPrefix(path, "/verify/") && path != "/verify/stats":
		return ratelimitmodels.ClassVerify, true
	case method == http.MethodPost && path == "/incidents":
		return ratelimitmodels.ClassIncidentReport, true
	case method == http.MethodPost && path == "/sms/inbound":
		return ratelimitmodels.ClassSMSInbound, true
	}
	return "", false
}
