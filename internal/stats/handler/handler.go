package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/stats/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	request "ridergate/pkg/platform/middleware/request"
)

type Service interface {
	Verification(ctx context.Context, scope models.Scope) (*models.VerificationStats, error)
	Incidents(ctx context.Context, scope models.Scope) (*models.IncidentStats, error)
	Jackets(ctx context.Context, jurisdiction domain.JurisdictionID) (*models.JacketStats, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the report routes. All of them require a staff session.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.logger))
		r.Get("/verify/stats", h.handleVerification)
		r.Get("/incidents/stats", h.handleIncidents)
		r.Get("/jackets/stats", h.handleJackets)
	})
}

func (h *Handler) handleVerification(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Verification(r.Context(), scope)
	h.respond(w, r, stats, err, "verification")
}

func (h *Handler) handleIncidents(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Incidents(r.Context(), scope)
	h.respond(w, r, stats, err, "incident")
}

func (h *Handler) handleJackets(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Jackets(r.Context(), scope.Jurisdiction)
	h.respond(w, r, stats, err, "jacket")
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, stats any, err error, report string) {
	if err != nil {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "failed to build statistics",
			"error", err,
			"report", report,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": stats})
}

func parseScope(r *http.Request) (models.Scope, error) {
	q := r.URL.Query()
	var scope models.Scope
	if v := q.Get("lga_id"); v != "" {
		j, err := domain.ParseJurisdictionID(v)
		if err != nil {
			return scope, err
		}
		scope.Jurisdiction = j
	}
	dates, err := domain.ParseDateRange(q.Get("date_range"))
	if err != nil {
		return scope, err
	}
	scope.Dates = dates
	return scope, nil
}
