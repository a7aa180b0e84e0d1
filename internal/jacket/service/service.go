// Package service places jacket orders against completed payments, tracks
// each jacket through production and hands it to the rider.
package service

import (
	"context"
	"errors"
	"log/slog"

	"ridergate/internal/jacket/models"
	jurisdictionmodels "ridergate/internal/jurisdiction/models"
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
	Create(ctx context.Context, j *models.Jacket) error
	FindByID(ctx context.Context, id domain.JacketID) (*models.Jacket, error)
	Update(ctx context.Context, j *models.Jacket) error
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Jacket, int, error)
	ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Jacket, error)
	ListByBatch(ctx context.Context, batch domain.BatchID) ([]*models.Jacket, error)
	CreateBatch(ctx context.Context, b *models.Batch) error
	FindBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error)
	CountBatchesInYear(ctx context.Context, year int) (int, error)
}

type RiderLookup interface {
	FindByID(ctx context.Context, id domain.RiderID) (*ridermodels.Rider, error)
}

// PaymentChecker answers whether a payment reference is completed for a rider.
type PaymentChecker interface {
	IsCompleted(ctx context.Context, reference string, rider domain.RiderID) (bool, error)
}

type Directory interface {
	Resolve(ctx context.Context, id domain.JurisdictionID) (jurisdictionmodels.Jurisdiction, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

var (
	manageRoles     = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin}
	distributeRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin, domain.RoleFieldOfficer}
)

type Service struct {
	store          Store
	riders         RiderLookup
	payments       PaymentChecker
	directory      Directory
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

func New(store Store, riders RiderLookup, payments PaymentChecker, directory Directory, opts ...Option) *Service {
	s := &Service{store: store, riders: riders, payments: payments, directory: directory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder places a jacket order for a rider whose payment has completed.
// The jacket inherits the rider's jacket number and jurisdiction.
func (s *Service) CreateOrder(ctx context.Context, order models.Order) (*models.Jacket, error) {
	if !requestcontext.Caller(ctx).HasRole(manageRoles...) {
		return nil, s.deny(ctx, order.RiderID.String(), "role may not order jackets")
	}

	paid, err := s.payments.IsCompleted(ctx, order.PaymentReference, order.RiderID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check payment")
	}
	if !paid {
		return nil, dErrors.New(dErrors.CodePaymentNotCompleted, "payment not completed")
	}

	rider, err := s.riders.FindByID(ctx, order.RiderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeRiderNotFound, "rider not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rider")
	}
	if !requestcontext.Caller(ctx).CanAccess(rider.JurisdictionID) {
		return nil, s.deny(ctx, rider.ID.String(), "rider outside caller jurisdiction")
	}

	if order.BatchID != nil {
		if _, err := s.loadBatch(ctx, *order.BatchID); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	jacket := &models.Jacket{
		ID:               domain.NewJacketID(),
		JacketNumber:     rider.JacketNumber,
		RiderID:          rider.ID,
		RiderName:        rider.FullName(),
		BatchID:          order.BatchID,
		PaymentReference: order.PaymentReference,
		JurisdictionID:   rider.JurisdictionID,
		Status:           models.StatusOrdered,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	jacket.AppendNote(order.Notes)
	if err := s.store.Create(ctx, jacket); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "production batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create jacket order")
	}

	s.logAudit(ctx, string(audit.EventJacketOrdered),
		"jacket_number", jacket.JacketNumber,
		"rider_id", jacket.RiderID,
		"payment_reference", jacket.PaymentReference,
		"jurisdiction", jacket.JurisdictionID,
	)
	return jacket, nil
}

func (s *Service) Get(ctx context.Context, id domain.JacketID) (*models.Jacket, error) {
	jacket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, jacket.JacketNumber, jacket.JurisdictionID); err != nil {
		return nil, err
	}
	return jacket, nil
}

// List returns a page of jackets, newest first. Scoped callers only see
// their own jurisdiction.
func (s *Service) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Jacket, int, error) {
	if caller := requestcontext.Caller(ctx); caller.IsScoped() {
		filter.Jurisdiction = caller.Jurisdiction
	}
	list, total, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jackets")
	}
	return list, total, nil
}

func (s *Service) ListByRider(ctx context.Context, rider domain.RiderID) ([]*models.Jacket, error) {
	list, err := s.store.ListByRider(ctx, rider)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rider jackets")
	}
	return list, nil
}

// UpdateStatus moves a jacket through production. Handing over goes through
// Distribute so its precondition cannot be skipped.
func (s *Service) UpdateStatus(ctx context.Context, id domain.JacketID, status models.Status, notes string) (*models.Jacket, error) {
	if !requestcontext.Caller(ctx).HasRole(manageRoles...) {
		return nil, s.deny(ctx, id.String(), "role may not update jackets")
	}
	if status == models.StatusDistributed {
		return nil, dErrors.New(dErrors.CodeInvalidState, "use distribute to hand a jacket over")
	}
	jacket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, jacket.JacketNumber, jacket.JurisdictionID); err != nil {
		return nil, err
	}

	previous := jacket.Status
	jacket.Status = status
	jacket.AppendNote(notes)
	jacket.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, jacket); err != nil {
		return nil, s.translateUpdate(err)
	}
	s.logAudit(ctx, string(audit.EventJacketStatusChanged),
		"jacket_number", jacket.JacketNumber,
		"from", string(previous),
		"status", string(status),
		"jurisdiction", jacket.JurisdictionID,
	)
	return jacket, nil
}

// Distribute hands a quality-checked jacket to its rider.
func (s *Service) Distribute(ctx context.Context, id domain.JacketID, d models.Distribution) (*models.Jacket, error) {
	caller := requestcontext.Caller(ctx)
	if !caller.HasRole(distributeRoles...) {
		return nil, s.deny(ctx, id.String(), "role may not distribute jackets")
	}
	jacket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, jacket.JacketNumber, jacket.JurisdictionID); err != nil {
		return nil, err
	}
	if !jacket.CanDistribute() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "jacket not ready for distribution")
	}

	now := requestcontext.Now(ctx)
	by := d.DistributedBy
	if by.IsNil() {
		by = caller.StaffID
	}
	date := now
	if d.Date != nil {
		date = *d.Date
	}
	jacket.Status = models.StatusDistributed
	jacket.DistributedBy = &by
	jacket.DistributionDate = &date
	jacket.RiderConfirmation = d.RiderConfirmation
	jacket.UpdatedAt = now
	if err := s.store.Update(ctx, jacket); err != nil {
		return nil, s.translateUpdate(err)
	}
	s.logAudit(ctx, string(audit.EventJacketDistributed),
		"jacket_number", jacket.JacketNumber,
		"rider_id", jacket.RiderID,
		"distributed_by", by,
		"jurisdiction", jacket.JurisdictionID,
	)
	return jacket, nil
}

// CreateBatch opens a production run. Batch numbers carry the calendar
// year's running sequence; a collision retries once with a fresh count.
func (s *Service) CreateBatch(ctx context.Context, spec models.BatchSpec) (*models.Batch, error) {
	caller := requestcontext.Caller(ctx)
	if !caller.HasRole(manageRoles...) {
		return nil, s.deny(ctx, "", "role may not create batches")
	}
	if !caller.CanAccess(spec.Jurisdiction) {
		return nil, s.deny(ctx, spec.Jurisdiction.String(), "batch outside caller jurisdiction")
	}
	if spec.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if spec.CostPerUnit < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "cost_per_unit must not be negative")
	}
	jurisdiction, err := s.directory.Resolve(ctx, spec.Jurisdiction)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	batch := &models.Batch{
		ID:                  domain.NewBatchID(),
		JurisdictionID:      jurisdiction.ID,
		JurisdictionName:    jurisdiction.Name,
		Quantity:            spec.Quantity,
		CostPerUnit:         spec.CostPerUnit,
		TotalCost:           float64(spec.Quantity) * spec.CostPerUnit,
		ProductionStartDate: spec.ProductionStartDate,
		Notes:               spec.Notes,
		CreatedBy:           caller.StaffID,
		CreatedAt:           now,
	}
	if batch.ProductionStartDate.IsZero() {
		batch.ProductionStartDate = now
	}

	for attempt := 1; ; attempt++ {
		n, err := s.store.CountBatchesInYear(ctx, now.Year())
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count batches")
		}
		if n+1 > models.MaxBatchSequence {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "batch sequence exhausted for year")
		}
		batch.BatchNumber = models.FormatBatchNumber(now.Year(), jurisdiction.Code, n+1)
		err = s.store.CreateBatch(ctx, batch)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create batch")
		}
		if attempt == 2 {
			return nil, dErrors.New(dErrors.CodeConflict, "batch number already taken, retry")
		}
	}

	s.logAudit(ctx, string(audit.EventBatchCreated),
		"batch_number", batch.BatchNumber,
		"quantity", batch.Quantity,
		"jurisdiction", batch.JurisdictionID,
	)
	return batch, nil
}

// GetBatch returns the batch with its jackets.
func (s *Service) GetBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	batch, err := s.loadBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScope(ctx, batch.BatchNumber, batch.JurisdictionID); err != nil {
		return nil, err
	}
	jackets, err := s.store.ListByBatch(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list batch jackets")
	}
	batch.Jackets = jackets
	return batch, nil
}

func (s *Service) load(ctx context.Context, id domain.JacketID) (*models.Jacket, error) {
	jacket, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "jacket not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load jacket")
	}
	return jacket, nil
}

func (s *Service) loadBatch(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	batch, err := s.store.FindBatch(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "production batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	return batch, nil
}

func (s *Service) translateUpdate(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "jacket not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update jacket")
}

func (s *Service) authorizeScope(ctx context.Context, subject string, j domain.JurisdictionID) error {
	if requestcontext.Caller(ctx).CanAccess(j) {
		return nil
	}
	return s.deny(ctx, subject, "jacket outside caller jurisdiction")
}

func (s *Service) deny(ctx context.Context, subject, reason string) error {
	caller := requestcontext.Caller(ctx)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "jacket access denied",
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
	return dErrors.New(dErrors.CodeForbidden, "access to this jacket is not permitted")
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
	subject := attrs.ExtractString(attributes, "jacket_number")
	if subject == "" {
		subject = attrs.ExtractString(attributes, "batch_number")
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:      requestcontext.StaffID(ctx).String(),
		Subject:      subject,
		Action:       event,
		Jurisdiction: attrs.ExtractString(attributes, "jurisdiction"),
		Decision:     attrs.ExtractString(attributes, "status"),
		RequestID:    request.GetRequestID(ctx),
		IP:           requestcontext.ClientIP(ctx),
	})
}
