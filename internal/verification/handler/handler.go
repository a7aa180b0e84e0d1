package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ridergate/internal/verification/models"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/httputil"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/requestcontext"
)

type Service interface {
	Verify(ctx context.Context, req models.Request) (*models.Result, error)
	Record(ctx context.Context, req models.Request) (*models.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public verification routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/{jacket_number}", h.handleVerify)
	r.Post("/verify/log", h.handleLog)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req := models.Request{
		JacketNumber:  chi.URLParam(r, "jacket_number"),
		VerifierPhone: r.URL.Query().Get("phone"),
		UserAgent:     requestcontext.UserAgent(ctx),
		IPAddress:     requestcontext.ClientIP(ctx),
	}
	if req.VerifierPhone != "" && !domain.IsValidPhone(req.VerifierPhone) {
		// An unusable verifier phone is dropped rather than failing the lookup.
		req.VerifierPhone = ""
	}
	if raw := r.URL.Query().Get("method"); raw != "" {
		// An unknown method falls back to the User-Agent so the lookup is
		// still logged.
		if method, err := models.ParseMethod(raw); err == nil {
			req.Method = method
		} else {
			h.logger.InfoContext(ctx, "unknown verification method ignored",
				"method", raw,
				"request_id", requestID,
			)
		}
	}

	result, err := h.service.Verify(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"error", err,
			"jacket_number", req.JacketNumber,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeResult(ctx, w, req.JacketNumber, result)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	body, ok := httputil.DecodeAndPrepare[LogRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Record(ctx, models.Request{
		JacketNumber:  body.JacketNumber,
		VerifierPhone: body.VerifierPhone,
		Method:        models.Method(body.Method),
		Location:      body.Location,
		UserAgent:     requestcontext.UserAgent(ctx),
		IPAddress:     requestcontext.ClientIP(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record verification",
			"error", err,
			"jacket_number", body.JacketNumber,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeResult(ctx, w, body.JacketNumber, result)
}

func (h *Handler) writeResult(ctx context.Context, w http.ResponseWriter, jacketNumber string, result *models.Result) {
	resp := Response{
		Success:   result.Success(),
		Timestamp: requestcontext.Now(ctx).UTC().Format(time.RFC3339),
	}
	if !result.AttemptID.IsNil() {
		resp.VerificationID = result.AttemptID.String()
	}
	if result.Success() {
		resp.Message = "Rider verified successfully"
		resp.Data = result.Rider
	} else {
		resp.Error = &FailureBody{Code: result.Outcome.FailureCode(), Message: result.Message}
		h.logger.InfoContext(ctx, "verification negative",
			"jacket_number", jacketNumber,
			"outcome", string(result.Outcome),
			"request_id", request.GetRequestID(ctx),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
