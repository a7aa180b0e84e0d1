// Package service implements the verification engine: resolve a jacket
// number, decide the outcome, log the attempt, answer with a masked view.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	ridermodels "ridergate/internal/rider/models"
	"ridergate/internal/verification/metrics"
	"ridergate/internal/verification/models"
	"ridergate/pkg/attrs"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/requestcontext"
)

// HistoryLimit is how many attempts rider history shows.
const HistoryLimit = 10

type RiderLookup interface {
	FindByJacketNumber(ctx context.Context, jacketNumber string) (*ridermodels.Rider, error)
}

type AttemptStore interface {
	Append(ctx context.Context, a *models.Attempt) error
	RecentForRider(ctx context.Context, rider domain.RiderID, limit int) ([]*models.Attempt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Service struct {
	riders         RiderLookup
	attempts       AttemptStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(riders RiderLookup, attempts AttemptStore, opts ...Option) *Service {
	s := &Service{
		riders:   riders,
		attempts: attempts,
		tracer:   otel.Tracer("ridergate/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the ordered checks and logs exactly one attempt before
// returning. Negative outcomes are results, not errors; only a failed rider
// lookup returns an error.
func (s *Service) Verify(ctx context.Context, req models.Request) (*models.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()
	defer s.observeVerify(start)

	if req.Method == "" {
		req.Method = models.MethodFromUserAgent(req.UserAgent)
	}
	attempt := &models.Attempt{
		ID:            domain.NewAttemptID(),
		JacketNumber:  models.Loggable(req.JacketNumber, models.MaxLoggedJacketNumber),
		VerifierPhone: req.VerifierPhone,
		Method:        req.Method,
		Location:      req.Location,
		UserAgent:     models.Loggable(req.UserAgent, models.MaxLoggedUserAgent),
		IPAddress:     req.IPAddress,
		CreatedAt:     requestcontext.Now(ctx),
	}

	// Surrounding whitespace is ignored for the lookup; the log keeps the
	// number as typed.
	result, err := s.decide(ctx, strings.TrimSpace(req.JacketNumber), attempt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	attempt.Outcome = result.Outcome
	span.SetAttributes(
		attribute.String("verification.outcome", string(result.Outcome)),
		attribute.String("verification.method", string(req.Method)),
	)

	if s.appendAttempt(ctx, attempt) {
		result.AttemptID = attempt.ID
	}
	s.incVerification(result.Outcome, req.Method)
	s.logAudit(ctx, string(audit.EventVerificationPerformed),
		"jacket_number", attempt.JacketNumber,
		"outcome", string(result.Outcome),
		"method", string(req.Method),
	)
	return result, nil
}

// Record logs a verification performed by a channel client. The outcome is
// re-derived here; clients cannot assert one.
func (s *Service) Record(ctx context.Context, req models.Request) (*models.Result, error) {
	if _, err := models.ParseMethod(string(req.Method)); err != nil {
		return nil, err
	}
	return s.Verify(ctx, req)
}

func (s *Service) RecentForRider(ctx context.Context, rider domain.RiderID, limit int) ([]*models.Attempt, error) {
	if limit <= 0 {
		limit = HistoryLimit
	}
	attempts, err := s.attempts.RecentForRider(ctx, rider, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}
	return attempts, nil
}

func (s *Service) decide(ctx context.Context, jacketNumber string, attempt *models.Attempt) (*models.Result, error) {
	if !domain.IsWellFormedJacketNumber(jacketNumber) {
		return &models.Result{
			Outcome: models.OutcomeInvalidFormat,
			Message: "Invalid jacket number format",
		}, nil
	}

	rider, err := s.riders.FindByJacketNumber(ctx, jacketNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.Result{
				Outcome: models.OutcomeNotFound,
				Message: "Jacket number not found in system",
			}, nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "verification timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up rider")
	}

	riderID := rider.ID
	attempt.RiderID = &riderID
	result := &models.Result{
		Outcome:     models.Assess(string(rider.Status), rider.ExpiryDate, requestcontext.Now(ctx)),
		RiderStatus: string(rider.Status),
	}
	switch result.Outcome {
	case models.OutcomeInactive:
		result.Message = fmt.Sprintf("Rider is not active (status: %s)", rider.Status)
	case models.OutcomeExpired:
		result.Message = "Jacket registration has expired"
	case models.OutcomeValid:
		result.Message = "Rider verified"
		result.Rider = project(rider)
	}
	return result, nil
}

func project(r *ridermodels.Rider) *models.Projection {
	return &models.Projection{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		JurisdictionName: r.JurisdictionName,
		VehicleType:      string(r.VehicleType),
		VehiclePlate:     r.VehiclePlate,
		Phone:            models.MaskPhone(r.Phone),
		Email:            models.MaskEmail(r.Email),
		Status:           string(r.Status),
		RegistrationDate: r.RegistrationDate,
	}
}

// appendAttempt writes the log entry and reports whether it was stored. A
// write failure is reported to the operational log and does not change the
// answer.
func (s *Service) appendAttempt(ctx context.Context, a *models.Attempt) bool {
	if err := s.attempts.Append(ctx, a); err != nil {
		if s.metrics != nil {
			s.metrics.IncAttemptLogFailure()
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to log verification attempt",
				"error", err,
				"attempt_id", a.ID.String(),
				"jacket_number", a.JacketNumber,
				"outcome", string(a.Outcome),
				"request_id", request.GetRequestID(ctx),
			)
		}
		return false
	}
	return true
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   attrs.ExtractString(attributes, "jacket_number"),
		Action:    event,
		Decision:  attrs.ExtractString(attributes, "outcome"),
		RequestID: request.GetRequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
	})
}

func (s *Service) incVerification(outcome models.Outcome, method models.Method) {
	if s.metrics != nil {
		s.metrics.IncVerification(string(outcome), string(method))
	}
}

func (s *Service) observeVerify(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveVerify(start)
	}
}
