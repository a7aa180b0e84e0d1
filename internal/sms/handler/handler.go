package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"ridergate/internal/sms/models"
	"ridergate/internal/sms/service"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	"ridergate/pkg/platform/middleware/auth"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/requestcontext"
)

type Service interface {
	HandleInbound(ctx context.Context, in models.Inbound) *service.InboundResult
	Send(ctx context.Context, req service.SendRequest) (*models.Delivery, error)
	Logs(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Log, int, error)
}

// HeaderGatewayKey carries the shared secret on inbound gateway calls.
const HeaderGatewayKey = "X-Gateway-Key"

type Handler struct {
	service        Service
	logger         *slog.Logger
	inboundKeyHash []byte
}

type Option func(*Handler)

// WithInboundKeyHash requires inbound webhooks to present a key matching
// the bcrypt hash. An empty hash leaves the webhook open.
func WithInboundKeyHash(hash string) Option {
	return func(h *Handler) {
		if hash != "" {
			h.inboundKeyHash = []byte(hash)
		}
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public gateway webhook and the staff routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sms/inbound", h.handleInbound)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.logger))
		r.Get("/sms/logs", h.handleLogs)
		r.With(auth.RequireRole(h.logger, domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin)).
			Post("/sms/send", h.handleSend)
	})
}

func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if !h.gatewayAuthorized(r) {
		h.logger.WarnContext(ctx, "inbound sms rejected - bad gateway key",
			"client_ip", requestcontext.ClientIP(ctx),
			"request_id", requestID,
			"log_type", "security",
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid gateway key"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[InboundRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result := h.service.HandleInbound(ctx, models.Inbound{
		From:      req.From,
		Text:      req.Text,
		MessageID: req.MessageID,
	})
	h.logger.InfoContext(ctx, "inbound sms processed",
		"action", string(result.Command.Action),
		"reply_type", string(result.Kind),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "SMS processed successfully",
		"data":    result,
	})
}

func (h *Handler) gatewayAuthorized(r *http.Request) bool {
	if h.inboundKeyHash == nil {
		return true
	}
	key := r.Header.Get(HeaderGatewayKey)
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.inboundKeyHash, []byte(key)) == nil
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	delivery, err := h.service.Send(ctx, req.send)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to send sms",
			"error", err,
			"message_type", req.MessageType,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Notification sent successfully",
		"data":    delivery,
	})
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
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
	list, total, err := h.service.Logs(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sms logs",
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

func parseFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	f := models.ListFilter{
		Phone: q.Get("phone"),
		Kind:  models.Kind(q.Get("message_type")),
	}
	if v := q.Get("status"); v != "" {
		f.Status = models.Status(v)
		if !f.Status.IsValid() {
			return f, dErrors.New(dErrors.CodeValidation, "invalid status filter")
		}
	}
	dates, err := domain.ParseDateRange(q.Get("date_range"))
	if err != nil {
		return f, err
	}
	f.Dates = dates
	return f, nil
}
