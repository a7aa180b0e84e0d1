package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ridergate/internal/jacket/handler/mocks"
	"ridergate/internal/jacket/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) TestCreateOrder() {
	rider := domain.NewRiderID()

	s.Run("unpaid order is 422", func() {
		s.service.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, o models.Order) (*models.Jacket, error) {
				s.Equal(rider, o.RiderID)
				s.Equal("PAY-9", o.PaymentReference)
				s.Nil(o.BatchID)
				return nil, dErrors.New(dErrors.CodePaymentNotCompleted, "payment not completed")
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/orders", map[string]any{
			"rider_id": rider.String(), "payment_reference": " PAY-9 ",
		})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, dErrors.CodePaymentNotCompleted)
	})

	s.Run("missing payment reference", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/orders", map[string]any{"rider_id": rider.String()})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("field officer is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/orders", map[string]any{
			"rider_id": rider.String(), "payment_reference": "PAY-9",
		})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleFieldOfficer, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, dErrors.CodeForbidden)
	})
}

func (s *HandlerSuite) TestDistribute() {
	id := domain.NewJacketID()

	s.Run("field officer distributes", func() {
		s.service.EXPECT().Distribute(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ any, _ domain.JacketID, d models.Distribution) (*models.Jacket, error) {
				s.True(d.RiderConfirmation)
				s.Require().NotNil(d.Date)
				s.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *d.Date)
				return &models.Jacket{ID: id, Status: models.StatusDistributed}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/"+id.String()+"/distribute", map[string]any{
			"distribution_date": "2025-09-01", "rider_confirmation": true,
		})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleFieldOfficer, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("not ready is 409", func() {
		s.service.EXPECT().Distribute(gomock.Any(), id, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "jacket not ready for distribution"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/"+id.String()+"/distribute", map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, dErrors.CodeInvalidState)
	})
}

func (s *HandlerSuite) TestUpdateStatus() {
	id := domain.NewJacketID()

	s.Run("passes status and notes", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), id, models.StatusQualityChecked, "passed QC").
			Return(&models.Jacket{ID: id, Status: models.StatusQualityChecked}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/jackets/"+id.String()+"/status", map[string]any{
			"status": "quality_checked", "notes": "passed QC",
		})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleLGAAdmin, 3))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("unknown status", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/jackets/"+id.String()+"/status", map[string]any{"status": "shipped"})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})
}

func (s *HandlerSuite) TestBatches() {
	s.Run("create", func() {
		s.service.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, spec models.BatchSpec) (*models.Batch, error) {
				s.Equal(domain.JurisdictionID(5), spec.Jurisdiction)
				s.Equal(200, spec.Quantity)
				return &models.Batch{BatchNumber: "BATCH-2025-IFO-001"}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/batches", map[string]any{
			"lga_id": 5, "quantity": 200, "cost_per_unit": 3500, "production_start_date": "2025-09-15",
		})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("zero quantity", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/jackets/batches", map[string]any{"lga_id": 5, "quantity": 0})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("get routes to batch not jacket", func() {
		id := domain.NewBatchID()
		s.service.EXPECT().GetBatch(gomock.Any(), id).Return(&models.Batch{ID: id}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/jackets/batches/"+id.String(), nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}

func (s *HandlerSuite) TestList() {
	batch := domain.NewBatchID()
	s.service.EXPECT().List(gomock.Any(), models.ListFilter{Status: models.StatusOrdered, BatchID: &batch}, 20, 0).
		Return([]*models.Jacket{}, 0, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/jackets?status=ordered&batch_id="+batch.String(), nil)
	rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}
