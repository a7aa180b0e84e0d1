// Package service records field incidents against jacket numbers and runs
// the staff triage workflow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ridergate/internal/incident/models"
	ridermodels "ridergate/internal/rider/models"
	"ridergate/pkg/attrs"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, inc *models.Incident) error
	FindByID(ctx context.Context, id domain.IncidentID) (*models.Incident, error)
	Update(ctx context.Context, inc *models.Incident) error
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Incident, int, error)
	ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Incident, error)
}

type RiderLookup interface {
	FindByJacketNumber(ctx context.Context, jacketNumber string) (*ridermodels.Rider, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Roles allowed to triage incidents.
var triageRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin}

type Service struct {
	store          Store
	riders         RiderLookup
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func New(store Store, riders RiderLookup, opts ...Option) *Service {
	s := &Service{store: store, riders: riders}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create files a public report. A jacket number that resolves to no rider
// fails with CodeRiderNotFound before anything is written.
func (s *Service) Create(ctx context.Context, report models.Report) (*models.Incident, error) {
	now := requestcontext.Now(ctx)
	inc := &models.Incident{
		ID:            domain.NewIncidentID(),
		JacketNumber:  strings.TrimSpace(report.JacketNumber),
		ReporterName:  strings.TrimSpace(report.ReporterName),
		ReporterPhone: strings.TrimSpace(report.ReporterPhone),
		Type:          report.Type,
		Description:   strings.TrimSpace(report.Description),
		Location:      strings.TrimSpace(report.Location),
		Severity:      report.Severity,
		Status:        models.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if inc.Severity == "" {
		inc.Severity = models.SeverityMedium
	}

	if inc.JacketNumber != "" {
		rider, err := s.riders.FindByJacketNumber(ctx, inc.JacketNumber)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeRiderNotFound, "Jacket number not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up rider")
		}
		riderID := rider.ID
		inc.RiderID = &riderID
		inc.RiderName = rider.FullName()
		inc.JurisdictionID = rider.JurisdictionID
		inc.JurisdictionName = rider.JurisdictionName
	}

	// A reference collision needs the same millisecond and suffix; one
	// retry with a fresh suffix settles it.
	var err error
	for range 2 {
		inc.ReferenceNumber = models.NewReferenceNumber(now)
		if err = s.store.Create(ctx, inc); !errors.Is(err, sentinel.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create incident")
	}

	s.logAudit(ctx, string(audit.EventIncidentReported),
		"reference_number", inc.ReferenceNumber,
		"incident_type", string(inc.Type),
		"jurisdiction", inc.JurisdictionID,
	)
	return inc, nil
}

func (s *Service) Get(ctx context.Context, id domain.IncidentID) (*models.Incident, error) {
	inc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// List returns a page of incidents. Jurisdiction-scoped callers only see
// their own jurisdiction whatever filter they sent.
func (s *Service) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Incident, int, error) {
	if caller := requestcontext.Caller(ctx); caller.IsScoped() {
		filter.Jurisdiction = caller.Jurisdiction
	}
	list, total, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list incidents")
	}
	return list, total, nil
}

func (s *Service) Update(ctx context.Context, id domain.IncidentID, changes models.Changes) (*models.Incident, error) {
	caller := requestcontext.Caller(ctx)
	if !caller.HasRole(triageRoles...) {
		return nil, s.deny(ctx, id.String(), "role may not update incidents")
	}
	if changes.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	inc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, inc); err != nil {
		return nil, err
	}

	changes.Apply(inc, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, inc); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "incident not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update incident")
	}
	s.logAudit(ctx, string(audit.EventIncidentUpdated),
		"reference_number", inc.ReferenceNumber,
		"status", string(inc.Status),
		"staff_id", caller.StaffID,
	)
	return inc, nil
}

func (s *Service) ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Incident, error) {
	list, err := s.store.ListByRider(ctx, rider)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rider incidents")
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, id domain.IncidentID) (*models.Incident, error) {
	inc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "incident not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load incident")
	}
	return inc, nil
}

func (s *Service) authorizeScope(ctx context.Context, inc *models.Incident) error {
	if requestcontext.Caller(ctx).CanAccess(inc.JurisdictionID) {
		return nil
	}
	return s.deny(ctx, inc.ReferenceNumber, "incident outside caller jurisdiction")
}

// deny records the refusal separately from not-found and returns Forbidden.
func (s *Service) deny(ctx context.Context, subject, reason string) error {
	caller := requestcontext.Caller(ctx)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "incident access denied",
			"subject", subject,
			"reason", reason,
			"staff_id", caller.StaffID.String(),
			"role", string(caller.Role),
			"log_type", "security",
			"request_id", request.GetRequestID(ctx),
		)
	}
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			ActorID:   caller.StaffID.String(),
			Subject:   subject,
			Action:    string(audit.EventAccessDenied),
			Decision:  "denied",
			Reason:    reason,
			RequestID: request.GetRequestID(ctx),
			IP:        requestcontext.ClientIP(ctx),
		})
	}
	return dErrors.New(dErrors.CodeForbidden, "access to this incident is not permitted")
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
	var actor string
	if staff := requestcontext.StaffID(ctx); !staff.IsNil() {
		actor = staff.String()
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:      actor,
		Subject:      attrs.ExtractString(attributes, "reference_number"),
		Action:       event,
		Jurisdiction: attrs.ExtractString(attributes, "jurisdiction"),
		RequestID:    request.GetRequestID(ctx),
		IP:           requestcontext.ClientIP(ctx),
	})
}
