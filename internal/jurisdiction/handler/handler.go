package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/jurisdiction/models"
	"ridergate/pkg/platform/httputil"
	request "ridergate/pkg/platform/middleware/request"
)

type Directory interface {
	List(ctx context.Context) ([]models.Jurisdiction, error)
}

type Handler struct {
	directory Directory
	logger    *slog.Logger
}

func New(directory Directory, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

// Register mounts the public directory listing.
func (h *Handler) Register(r chi.Router) {
	r.Get("/jurisdictions", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := h.directory.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list jurisdictions",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": all})
}
