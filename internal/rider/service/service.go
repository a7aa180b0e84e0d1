// Package service owns the rider register: registration with jacket number
// allocation, profile updates, revocation and the composite history read.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	incidentmodels "ridergate/internal/incident/models"
	jacketmodels "ridergate/internal/jacket/models"
	jurisdictionmodels "ridergate/internal/jurisdiction/models"
	paymentmodels "ridergate/internal/payment/models"
	"ridergate/internal/rider/metrics"
	"ridergate/internal/rider/models"
	riderstore "ridergate/internal/rider/store"
	verificationmodels "ridergate/internal/verification/models"
	"ridergate/pkg/attrs"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/platform/tx"
	"ridergate/pkg/requestcontext"
)

type Store interface {
	LockJurisdiction(ctx context.Context, id domain.JurisdictionID) error
	Create(ctx context.Context, r *models.Rider) error
	FindByID(ctx context.Context, id domain.RiderID) (*models.Rider, error)
	Update(ctx context.Context, r *models.Rider) error
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Rider, int, error)
}

// Allocator mints the next jacket number for a jurisdiction.
type Allocator interface {
	Next(ctx context.Context, jurisdiction domain.JurisdictionID) (string, error)
}

type Directory interface {
	Resolve(ctx context.Context, id domain.JurisdictionID) (jurisdictionmodels.Jurisdiction, error)
}

type PaymentLister interface {
	ListByRider(ctx context.Context, rider domain.RiderID) ([]*paymentmodels.Payment, error)
}

type JacketLister interface {
	ListByRider(ctx context.Context, rider domain.RiderID) ([]*jacketmodels.Jacket, error)
}

type IncidentLister interface {
	ListByRider(ctx context.Context, rider domain.RiderID) ([]*incidentmodels.Incident, error)
}

type VerificationLister interface {
	RecentForRider(ctx context.Context, rider domain.RiderID, limit int) ([]*verificationmodels.Attempt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// verificationHistoryLimit caps the attempts shown in History.
const verificationHistoryLimit = 10

var (
	createRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin, domain.RoleFieldOfficer}
	updateRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin}
	revokeRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}
)

type Service struct {
	store          Store
	allocator      Allocator
	directory      Directory
	tx             tx.Runner
	payments       PaymentLister
	jackets        JacketLister
	incidents      IncidentLister
	verifications  VerificationLister
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

// WithHistorySources wires the read models History aggregates. Any nil
// source contributes an empty list.
func WithHistorySources(p PaymentLister, j JacketLister, i IncidentLister, v VerificationLister) Option {
	return func(s *Service) {
		s.payments = p
		s.jackets = j
		s.incidents = i
		s.verifications = v
	}
}

func New(store Store, allocator Allocator, directory Directory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:     store,
		allocator: allocator,
		directory: directory,
		tx:        runner,
		tracer:    otel.Tracer("ridergate/rider"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register allocates a jacket number and inserts the rider in one
// transaction. A jacket number conflict retries the whole unit once.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.Rider, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "rider.Register",
		trace.WithAttributes(attribute.Int("rider.jurisdiction", int(reg.Jurisdiction))))
	defer span.End()
	defer s.observeRegister(start)

	caller := requestcontext.Caller(ctx)
	if !caller.HasRole(createRoles...) {
		return nil, s.deny(ctx, "", "role may not register riders")
	}
	if !caller.CanAccess(reg.Jurisdiction) {
		return nil, s.deny(ctx, "", "registration outside caller jurisdiction")
	}

	jurisdiction, err := s.directory.Resolve(ctx, reg.Jurisdiction)
	if err != nil {
		return nil, err
	}

	var rider *models.Rider
	for attempt := 1; ; attempt++ {
		rider, err = s.registerOnce(ctx, reg, caller.StaffID)
		if !errors.Is(err, riderstore.ErrDuplicateJacketNumber) || attempt == 2 {
			break
		}
		s.incJacketConflict()
		if s.logger != nil {
			s.logger.WarnContext(ctx, "jacket number conflict, retrying registration",
				"jurisdiction", reg.Jurisdiction.String(),
				"request_id", request.GetRequestID(ctx),
			)
		}
	}
	if err != nil {
		span.RecordError(err)
		return nil, translateWriteError(err, "failed to register rider")
	}

	rider.JurisdictionName = jurisdiction.Name
	rider.JurisdictionCode = jurisdiction.Code
	span.SetAttributes(attribute.String("rider.jacket_number", rider.JacketNumber))
	s.incRegistered(jurisdiction.Code)
	s.logAudit(ctx, string(audit.EventRiderRegistered),
		"rider_id", rider.ID,
		"jacket_number", rider.JacketNumber,
		"jurisdiction", rider.JurisdictionID,
	)
	return rider, nil
}

func (s *Service) registerOnce(ctx context.Context, reg models.Registration, createdBy domain.StaffID) (*models.Rider, error) {
	var rider *models.Rider
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.LockJurisdiction(ctx, reg.Jurisdiction); err != nil {
			return err
		}
		jacketNumber, err := s.allocator.Next(ctx, reg.Jurisdiction)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		candidate := &models.Rider{
			ID:                    domain.NewRiderID(),
			JacketNumber:          jacketNumber,
			FirstName:             reg.FirstName,
			LastName:              reg.LastName,
			Phone:                 reg.Phone,
			Email:                 reg.Email,
			JurisdictionID:        reg.Jurisdiction,
			VehicleType:           reg.VehicleType,
			VehiclePlate:          reg.VehiclePlate,
			Address:               reg.Address,
			EmergencyContactName:  reg.EmergencyContactName,
			EmergencyContactPhone: reg.EmergencyContactPhone,
			Status:                models.StatusPending,
			RegistrationDate:      now,
			ExpiryDate:            reg.ExpiryDate,
			CreatedBy:             createdBy,
			UpdatedAt:             now,
		}
		if err := candidate.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		if err := s.store.Create(ctx, candidate); err != nil {
			return err
		}
		rider = candidate
		return nil
	})
	return rider, err
}

// Get returns one rider. Jurisdiction-scoped callers get Forbidden for
// riders outside their jurisdiction.
func (s *Service) Get(ctx context.Context, id domain.RiderID) (*models.Rider, error) {
	rider, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, rider); err != nil {
		return nil, err
	}
	return rider, nil
}

// Update applies patch. An empty patch returns the current record.
func (s *Service) Update(ctx context.Context, id domain.RiderID, patch models.Patch) (*models.Rider, error) {
	if !requestcontext.Caller(ctx).HasRole(updateRoles...) {
		return nil, s.deny(ctx, id.String(), "role may not update riders")
	}
	rider, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, rider); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return rider, nil
	}

	if err := patch.Apply(rider); err != nil {
		return nil, err
	}
	if err := rider.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	rider.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, rider); err != nil {
		return nil, translateWriteError(err, "failed to update rider")
	}
	s.logAudit(ctx, string(audit.EventRiderUpdated),
		"rider_id", rider.ID,
		"status", string(rider.Status),
		"jurisdiction", rider.JurisdictionID,
	)
	return rider, nil
}

// Revoke soft-deletes the rider. Revoking a revoked rider succeeds.
func (s *Service) Revoke(ctx context.Context, id domain.RiderID) (*models.Rider, error) {
	if !requestcontext.Caller(ctx).HasRole(revokeRoles...) {
		return nil, s.deny(ctx, id.String(), "role may not revoke riders")
	}
	rider, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rider.IsRevoked() {
		return rider, nil
	}
	rider.Status = models.StatusRevoked
	rider.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, rider); err != nil {
		return nil, translateWriteError(err, "failed to revoke rider")
	}
	s.logAudit(ctx, string(audit.EventRiderRevoked),
		"rider_id", rider.ID,
		"jurisdiction", rider.JurisdictionID,
	)
	return rider, nil
}

// List returns a page of riders, newest first, with the total match count.
func (s *Service) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Rider, int, error) {
	if caller := requestcontext.Caller(ctx); caller.IsScoped() {
		filter.Jurisdiction = caller.Jurisdiction
	}
	riders, total, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list riders")
	}
	return riders, total, nil
}

func (s *Service) load(ctx context.Context, id domain.RiderID) (*models.Rider, error) {
	rider, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rider not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rider")
	}
	return rider, nil
}

func (s *Service) authorizeScope(ctx context.Context, rider *models.Rider) error {
	if requestcontext.Caller(ctx).CanAccess(rider.JurisdictionID) {
		return nil
	}
	return s.deny(ctx, rider.ID.String(), "rider outside caller jurisdiction")
}

func translateWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, riderstore.ErrDuplicatePhone):
		return dErrors.New(dErrors.CodeDuplicatePhone, "phone number already registered")
	case errors.Is(err, riderstore.ErrDuplicateJacketNumber):
		return dErrors.New(dErrors.CodeDuplicateJacketNumber, "jacket number already allocated, retry registration")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "rider not found")
	case errors.Is(err, riderstore.ErrRiderRevoked):
		return dErrors.New(dErrors.CodeInvalidState, "revoked riders cannot be reactivated")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "rider operation timed out")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// deny records the refusal separately from not-found and returns Forbidden.
func (s *Service) deny(ctx context.Context, subject, reason string) error {
	caller := requestcontext.Caller(ctx)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "rider access denied",
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
			ActorID:      caller.StaffID.String(),
			Subject:      subject,
			Action:       string(audit.EventAccessDenied),
			Jurisdiction: caller.Jurisdiction.String(),
			Decision:     "denied",
			Reason:       reason,
			RequestID:    request.GetRequestID(ctx),
			IP:           requestcontext.ClientIP(ctx),
		})
	}
	return dErrors.New(dErrors.CodeForbidden, "access to this rider is not permitted")
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
		ActorID:      requestcontext.StaffID(ctx).String(),
		Subject:      attrs.ExtractString(attributes, "rider_id"),
		Action:       event,
		Jurisdiction: attrs.ExtractString(attributes, "jurisdiction"),
		Decision:     attrs.ExtractString(attributes, "status"),
		RequestID:    request.GetRequestID(ctx),
		IP:           requestcontext.ClientIP(ctx),
	})
}

func (s *Service) observeRegister(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRegister(start)
	}
}

func (s *Service) incRegistered(code string) {
	if s.metrics != nil {
		s.metrics.IncRegistered(code)
	}
}

func (s *Service) incJacketConflict() {
	if s.metrics != nil {
		s.metrics.IncJacketConflict()
	}
}
