package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/rider/models"
	"ridergate/internal/rider/service"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	request "ridergate/pkg/platform/middleware/request"
)

type Service interface {
	Register(ctx context.Context, reg models.Registration) (*models.Rider, error)
	Get(ctx context.Context, id domain.RiderID) (*models.Rider, error)
	Update(ctx context.Context, id domain.RiderID, patch models.Patch) (*models.Rider, error)
	Revoke(ctx context.Context, id domain.RiderID) (*models.Rider, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Rider, int, error)
	History(ctx context.Context, id domain.RiderID) (*service.History, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the rider routes. All of them require a staff identity;
// role checks beyond that happen in the service.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.logger))
		r.Get("/riders", h.handleList)
		r.With(auth.RequireRole(h.logger,
			domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin, domain.RoleFieldOfficer)).
			Post("/riders", h.handleRegister)
		r.Get("/riders/{id}", h.handleGet)
		r.Get("/riders/{id}/history", h.handleHistory)
		r.With(auth.RequireRole(h.logger, domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin)).
			Put("/riders/{id}", h.handleUpdate)
		r.With(auth.RequireRole(h.logger, domain.RoleSuperAdmin, domain.RoleAdmin)).
			Delete("/riders/{id}", h.handleRevoke)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rider, err := h.service.Register(ctx, req.toRegistration())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to register rider",
			"error", err,
			"jurisdiction", req.JurisdictionID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": rider})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRiderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rider, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": rider})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRiderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	history, err := h.service.History(ctx, id)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to load rider history",
				"error", err,
				"rider_id", id.String(),
				"request_id", request.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": history})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := domain.ParseRiderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rider, err := h.service.Update(ctx, id, req.patch)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update rider",
			"error", err,
			"rider_id", id.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": rider})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRiderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rider, err := h.service.Revoke(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "rider revoked",
		"data":    rider,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	riders, total, err := h.service.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list riders",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":       riders,
		"pagination": httputil.NewPagination(page, total),
	})
}

// parseFilter reads status (comma separated), lga_id, vehicle_type and search.
func parseFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var f models.ListFilter
	if v := q.Get("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			st := models.Status(strings.TrimSpace(raw))
			if !st.IsValid() {
				return f, dErrors.New(dErrors.CodeValidation, "invalid status filter")
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if v := q.Get("lga_id"); v != "" {
		j, err := domain.ParseJurisdictionID(v)
		if err != nil {
			return f, err
		}
		f.Jurisdiction = j
	}
	if v := q.Get("vehicle_type"); v != "" {
		f.VehicleType = models.VehicleType(v)
		if !f.VehicleType.IsValid() {
			return f, dErrors.New(dErrors.CodeValidation, "invalid vehicle_type filter")
		}
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}
