package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Allocator,Directory,PaymentLister,JacketLister,IncidentLister,VerificationLister,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	incidentmodels "ridergate/internal/incident/models"
	jacketmodels "ridergate/internal/jacket/models"
	jurisdictionmodels "ridergate/internal/jurisdiction/models"
	paymentmodels "ridergate/internal/payment/models"
	"ridergate/internal/rider/models"
	"ridergate/internal/rider/service/mocks"
	riderstore "ridergate/internal/rider/store"
	verificationmodels "ridergate/internal/verification/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/platform/tx"
	"ridergate/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	store         *mocks.MockStore
	allocator     *mocks.MockAllocator
	directory     *mocks.MockDirectory
	payments      *mocks.MockPaymentLister
	jackets       *mocks.MockJacketLister
	incidents     *mocks.MockIncidentLister
	verifications *mocks.MockVerificationLister
	publisher     *mocks.MockAuditPublisher
	service       *Service
	now           time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.allocator = mocks.NewMockAllocator(s.ctrl)
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.payments = mocks.NewMockPaymentLister(s.ctrl)
	s.jackets = mocks.NewMockJacketLister(s.ctrl)
	s.incidents = mocks.NewMockIncidentLister(s.ctrl)
	s.verifications = mocks.NewMockVerificationLister(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.allocator, s.directory, tx.NewMutexRunner(),
		WithAuditPublisher(s.publisher),
		WithHistorySources(s.payments, s.jackets, s.incidents, s.verifications),
	)
	s.now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func (s *ServiceSuite) ctxAs(role domain.Role, jurisdiction domain.JurisdictionID) context.Context {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	return requestcontext.WithCaller(ctx, domain.Caller{
		StaffID:      domain.StaffID(domain.NewRiderID()),
		Role:         role,
		Jurisdiction: jurisdiction,
	})
}

func registration() models.Registration {
	return models.Registration{
		FirstName:    "Adebayo",
		LastName:     "Ogunleye",
		Phone:        "+2348123456789",
		Jurisdiction: 1,
		VehicleType:  models.VehicleMotorcycle,
	}
}

func storedRider(jurisdiction domain.JurisdictionID) *models.Rider {
	return &models.Rider{
		ID:             domain.NewRiderID(),
		JacketNumber:   "OG-ABN-00003",
		FirstName:      "Adebayo",
		LastName:       "Ogunleye",
		Phone:          "+2348123456789",
		JurisdictionID: jurisdiction,
		VehicleType:    models.VehicleMotorcycle,
		Status:         models.StatusActive,
	}
}

var abeokutaNorth = jurisdictionmodels.Jurisdiction{ID: 1, Name: "Abeokuta North", Code: "ABN"}

func (s *ServiceSuite) TestRegister() {
	s.Run("allocates inside the lock and starts pending", func() {
		ctx := s.ctxAs(domain.RoleFieldOfficer, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), domain.JurisdictionID(1)).Return(abeokutaNorth, nil)
		gomock.InOrder(
			s.store.EXPECT().LockJurisdiction(gomock.Any(), domain.JurisdictionID(1)).Return(nil),
			s.allocator.EXPECT().Next(gomock.Any(), domain.JurisdictionID(1)).Return("OG-ABN-00001", nil),
			s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventRiderRegistered), e.Action)
				s.Equal("1", e.Jurisdiction)
				return nil
			})

		rider, err := s.service.Register(ctx, registration())
		s.Require().NoError(err)
		s.Equal("OG-ABN-00001", rider.JacketNumber)
		s.Equal(models.StatusPending, rider.Status)
		s.Equal("Abeokuta North", rider.JurisdictionName)
		s.Equal("ABN", rider.JurisdictionCode)
		s.Equal(s.now, rider.RegistrationDate)
		s.Equal(requestcontext.StaffID(ctx), rider.CreatedBy)
	})

	s.Run("jacket number conflict retries once", func() {
		ctx := s.ctxAs(domain.RoleAdmin, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), domain.JurisdictionID(1)).Return(abeokutaNorth, nil)
		s.store.EXPECT().LockJurisdiction(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		s.allocator.EXPECT().Next(gomock.Any(), gomock.Any()).Return("OG-ABN-00004", nil)
		s.allocator.EXPECT().Next(gomock.Any(), gomock.Any()).Return("OG-ABN-00005", nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(riderstore.ErrDuplicateJacketNumber)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		rider, err := s.service.Register(ctx, registration())
		s.Require().NoError(err)
		s.Equal("OG-ABN-00005", rider.JacketNumber)
	})

	s.Run("second jacket number conflict surfaces", func() {
		ctx := s.ctxAs(domain.RoleAdmin, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(abeokutaNorth, nil)
		s.store.EXPECT().LockJurisdiction(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		s.allocator.EXPECT().Next(gomock.Any(), gomock.Any()).Return("OG-ABN-00004", nil).Times(2)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(riderstore.ErrDuplicateJacketNumber).Times(2)

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateJacketNumber))
	})

	s.Run("duplicate phone is not retried", func() {
		ctx := s.ctxAs(domain.RoleAdmin, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(abeokutaNorth, nil)
		s.store.EXPECT().LockJurisdiction(gomock.Any(), gomock.Any()).Return(nil)
		s.allocator.EXPECT().Next(gomock.Any(), gomock.Any()).Return("OG-ABN-00004", nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(riderstore.ErrDuplicatePhone)

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicatePhone))
	})

	s.Run("unknown jurisdiction", func() {
		ctx := s.ctxAs(domain.RoleAdmin, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), gomock.Any()).
			Return(jurisdictionmodels.Jurisdiction{}, dErrors.New(dErrors.CodeInvalidJurisdiction, "unknown jurisdiction"))

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidJurisdiction))
	})

	s.Run("viewer may not register", func() {
		ctx := s.ctxAs(domain.RoleViewer, 0)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventAccessDenied), e.Action)
				return nil
			})

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("lga admin confined to own jurisdiction", func() {
		ctx := s.ctxAs(domain.RoleLGAAdmin, 2)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("allocation timeout", func() {
		ctx := s.ctxAs(domain.RoleAdmin, 0)
		s.directory.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(abeokutaNorth, nil)
		s.store.EXPECT().LockJurisdiction(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)

		_, err := s.service.Register(ctx, registration())
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("not found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Get(s.ctxAs(domain.RoleViewer, 0), domain.NewRiderID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("other jurisdiction is forbidden not missing", func() {
		rider := storedRider(3)
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.Get(s.ctxAs(domain.RoleLGAAdmin, 1), rider.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := s.service.Get(s.ctxAs(domain.RoleAdmin, 0), domain.NewRiderID())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestUpdate() {
	s.Run("applies patch and stamps updated_at", func() {
		rider := storedRider(1)
		plate := "ABJ-442-KL"
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.store.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *models.Rider) error {
				s.Equal(plate, r.VehiclePlate)
				s.Equal(s.now, r.UpdatedAt)
				return nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		updated, err := s.service.Update(s.ctxAs(domain.RoleLGAAdmin, 1), rider.ID, models.Patch{VehiclePlate: &plate})
		s.Require().NoError(err)
		s.Equal(plate, updated.VehiclePlate)
	})

	s.Run("empty patch returns current record", func() {
		rider := storedRider(1)
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)

		got, err := s.service.Update(s.ctxAs(domain.RoleAdmin, 0), rider.ID, models.Patch{})
		s.Require().NoError(err)
		s.Equal(rider, got)
	})

	s.Run("revoked rider cannot be reactivated", func() {
		rider := storedRider(1)
		rider.Status = models.StatusRevoked
		active := models.StatusActive
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)

		_, err := s.service.Update(s.ctxAs(domain.RoleAdmin, 0), rider.ID, models.Patch{Status: &active})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("invalid phone is a validation error", func() {
		rider := storedRider(1)
		phone := "12345"
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)

		_, err := s.service.Update(s.ctxAs(domain.RoleAdmin, 0), rider.ID, models.Patch{Phone: &phone})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("phone taken by another rider", func() {
		rider := storedRider(1)
		phone := "08031234567"
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(riderstore.ErrDuplicatePhone)

		_, err := s.service.Update(s.ctxAs(domain.RoleAdmin, 0), rider.ID, models.Patch{Phone: &phone})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicatePhone))
	})

	s.Run("field officer may not update", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.service.Update(s.ctxAs(domain.RoleFieldOfficer, 0), domain.NewRiderID(), models.Patch{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestRevoke() {
	s.Run("revokes and audits", func() {
		rider := storedRider(1)
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventRiderRevoked), e.Action)
				s.Equal(rider.ID.String(), e.Subject)
				return nil
			})

		got, err := s.service.Revoke(s.ctxAs(domain.RoleSuperAdmin, 0), rider.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevoked, got.Status)
	})

	s.Run("already revoked is a no-op", func() {
		rider := storedRider(1)
		rider.Status = models.StatusRevoked
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)

		got, err := s.service.Revoke(s.ctxAs(domain.RoleAdmin, 0), rider.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevoked, got.Status)
	})

	s.Run("lga admin may not revoke", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.service.Revoke(s.ctxAs(domain.RoleLGAAdmin, 1), domain.NewRiderID())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestList() {
	s.Run("scoped caller filter is forced", func() {
		s.store.EXPECT().List(gomock.Any(), gomock.Any(), 20, 0).
			DoAndReturn(func(_ context.Context, f models.ListFilter, _, _ int) ([]*models.Rider, int, error) {
				s.Equal(domain.JurisdictionID(4), f.Jurisdiction)
				return []*models.Rider{storedRider(4)}, 1, nil
			})

		riders, total, err := s.service.List(s.ctxAs(domain.RoleLGAAdmin, 4), models.ListFilter{Jurisdiction: 9}, 20, 0)
		s.Require().NoError(err)
		s.Len(riders, 1)
		s.Equal(1, total)
	})

	s.Run("admin filter passes through", func() {
		s.store.EXPECT().List(gomock.Any(), models.ListFilter{Jurisdiction: 9}, 10, 10).Return(nil, 0, nil)
		_, _, err := s.service.List(s.ctxAs(domain.RoleAdmin, 0), models.ListFilter{Jurisdiction: 9}, 10, 10)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestHistory() {
	s.Run("gathers every source", func() {
		rider := storedRider(1)
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.payments.EXPECT().ListByRider(gomock.Any(), rider.ID).
			Return([]*paymentmodels.Payment{{Reference: "PAY-1", RiderID: rider.ID}}, nil)
		s.jackets.EXPECT().ListByRider(gomock.Any(), rider.ID).
			Return([]*jacketmodels.Jacket{{JacketNumber: rider.JacketNumber}}, nil)
		s.incidents.EXPECT().ListByRider(gomock.Any(), rider.ID).Return(nil, nil)
		s.verifications.EXPECT().RecentForRider(gomock.Any(), rider.ID, 10).
			Return([]*verificationmodels.Attempt{{JacketNumber: rider.JacketNumber}}, nil)

		h, err := s.service.History(s.ctxAs(domain.RoleViewer, 0), rider.ID)
		s.Require().NoError(err)
		s.Equal(rider, h.Rider)
		s.Len(h.Payments, 1)
		s.Len(h.Jackets, 1)
		s.Empty(h.Incidents)
		s.Len(h.Verifications, 1)
	})

	s.Run("any failing source fails the read", func() {
		rider := storedRider(1)
		s.store.EXPECT().FindByID(gomock.Any(), rider.ID).Return(rider, nil)
		s.payments.EXPECT().ListByRider(gomock.Any(), rider.ID).Return(nil, nil).AnyTimes()
		s.jackets.EXPECT().ListByRider(gomock.Any(), rider.ID).Return(nil, nil).AnyTimes()
		s.incidents.EXPECT().ListByRider(gomock.Any(), rider.ID).
			Return([]*incidentmodels.Incident(nil), errors.New("incidents unavailable")).AnyTimes()
		s.verifications.EXPECT().RecentForRider(gomock.Any(), rider.ID, 10).Return(nil, nil).AnyTimes()

		_, err := s.service.History(s.ctxAs(domain.RoleViewer, 0), rider.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing rider skips the fan-out", func() {
		s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.History(s.ctxAs(domain.RoleViewer, 0), domain.NewRiderID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
