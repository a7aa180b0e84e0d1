package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/jacket/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	request "ridergate/pkg/platform/middleware/request"
)

type Service interface {
	CreateOrder(ctx context.Context, order models.Order) (*models.Jacket, error)
	Get(ctx context.Context, id domain.JacketID) (*models.Jacket, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Jacket, int, error)
	UpdateStatus(ctx context.Context, id domain.JacketID, status models.Status, notes string) (*models.Jacket, error)
	Distribute(ctx context.Context, id domain.JacketID, d models.Distribution) (*models.Jacket, error)
	CreateBatch(ctx context.Context, spec models.BatchSpec) (*models.Batch, error)
	GetBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	manage := auth.RequireRole(h.logger, domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.logger))
		r.Get("/jackets", h.handleList)
		r.With(manage).Post("/jackets/orders", h.handleCreateOrder)
		r.With(manage).Post("/jackets/batches", h.handleCreateBatch)
		r.Get("/jackets/batches/{id}", h.handleGetBatch)
		r.Get("/jackets/{id}", h.handleGet)
		r.With(manage).Put("/jackets/{id}/status", h.handleUpdateStatus)
		r.With(auth.RequireRole(h.logger,
			domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin, domain.RoleFieldOfficer)).
			Post("/jackets/{id}/distribute", h.handleDistribute)
	})
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[OrderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	jacket, err := h.service.CreateOrder(ctx, req.order)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create jacket order",
			"error", err,
			"rider_id", req.order.RiderID.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": jacket})
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
		h.logger.ErrorContext(ctx, "failed to list jackets",
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
	id, err := domain.ParseJacketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	jacket, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": jacket})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	id, err := domain.ParseJacketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	jacket, err := h.service.UpdateStatus(ctx, id, models.Status(req.Status), req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": jacket})
}

func (h *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	id, err := domain.ParseJacketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DistributeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	jacket, err := h.service.Distribute(ctx, id, req.distribution)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to distribute jacket",
			"error", err,
			"jacket_id", id.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": jacket})
}

func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	batch, err := h.service.CreateBatch(ctx, req.spec)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": batch})
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseBatchID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": batch})
}

func parseFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var f models.ListFilter
	if v := q.Get("status"); v != "" {
		f.Status = models.Status(v)
		if !f.Status.IsValid() {
			return f, dErrors.New(dErrors.CodeValidation, "invalid status filter")
		}
	}
	if v := q.Get("lga_id"); v != "" {
		j, err := domain.ParseJurisdictionID(v)
		if err != nil {
			return f, err
		}
		f.Jurisdiction = j
	}
	if v := q.Get("batch_id"); v != "" {
		batch, err := domain.ParseBatchID(v)
		if err != nil {
			return f, err
		}
		f.BatchID = &batch
	}
	return f, nil
}
