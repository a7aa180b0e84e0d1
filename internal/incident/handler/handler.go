package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/incident/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	request "ridergate/pkg/platform/middleware/request"
)

type Service interface {
	Create(ctx context.Context, report models.Report) (*models.Incident, error)
	Get(ctx context.Context, id domain.IncidentID) (*models.Incident, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Incident, int, error)
	Update(ctx context.Context, id domain.IncidentID, changes models.Changes) (*models.Incident, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public report route and the staff triage routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/incidents", h.handleCreate)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.logger))
		r.Get("/incidents", h.handleList)
		r.Get("/incidents/{id}", h.handleGet)
		r.With(auth.RequireRole(h.logger, domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin)).
			Put("/incidents/{id}", h.handleUpdate)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ReportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	inc, err := h.service.Create(ctx, req.toReport())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create incident",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": inc})
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
	list, total, err := h.service.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list incidents",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":       list,
		"pagination": httputil.NewPagination(page, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseIncidentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": inc})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := domain.ParseIncidentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	inc, err := h.service.Update(ctx, id, req.changes)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update incident",
			"error", err,
			"incident_id", id.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": inc})
}

func parseFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var f models.ListFilter
	if v := q.Get("status"); v != "" {
		f.Status = models.Status(v)
		if !f.Status.IsValid() {
			return f, invalidQuery("status")
		}
	}
	if v := q.Get("severity"); v != "" {
		f.Severity = models.Severity(v)
		if !f.Severity.IsValid() {
			return f, invalidQuery("severity")
		}
	}
	if v := q.Get("lga_id"); v != "" {
		j, err := domain.ParseJurisdictionID(v)
		if err != nil {
			return f, err
		}
		f.Jurisdiction = j
	}
	if v := q.Get("assigned_to"); v != "" {
		staff, err := domain.ParseStaffID(v)
		if err != nil {
			return f, err
		}
		f.AssignedTo = &staff
	}
	dates, err := domain.ParseDateRange(q.Get("date_range"))
	if err != nil {
		return f, err
	}
	f.Dates = dates
	return f, nil
}

func invalidQuery(param string) error {
	return dErrors.New(dErrors.CodeValidation, "invalid "+param+" filter")
}
