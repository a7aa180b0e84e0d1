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

	"ridergate/internal/rider/handler/mocks"
	"ridergate/internal/rider/models"
	"ridergate/internal/rider/service"
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

func validRegistration() map[string]any {
	return map[string]any{
		"first_name":   " Adebayo ",
		"last_name":    "Ogunleye",
		"phone":        "08123456789",
		"lga_id":       1,
		"vehicle_type": "motorcycle",
		"expiry_date":  "2026-12-31",
	}
}

func (s *HandlerSuite) TestRegister() {
	s.Run("field officer registers", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reg models.Registration) (*models.Rider, error) {
				s.Equal("Adebayo", reg.FirstName)
				s.Equal(domain.JurisdictionID(1), reg.Jurisdiction)
				s.Require().NotNil(reg.ExpiryDate)
				s.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), *reg.ExpiryDate)
				return &models.Rider{JacketNumber: "OG-ABN-00001", Status: models.StatusPending}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", validRegistration())
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleFieldOfficer, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		body := testutil.UnmarshalResponse[struct {
			Data models.Rider `json:"data"`
		}](s.T(), rr)
		s.Equal("OG-ABN-00001", body.Data.JacketNumber)
	})

	s.Run("viewer is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", validRegistration())
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, dErrors.CodeForbidden)
	})

	s.Run("anonymous is unauthorized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", validRegistration()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, dErrors.CodeUnauthorized)
	})

	s.Run("duplicate phone is 409", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeDuplicatePhone, "phone number already registered"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", validRegistration())
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, dErrors.CodeDuplicatePhone)
	})

	s.Run("invalid jurisdiction is 400", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidJurisdiction, "unknown jurisdiction"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", validRegistration())
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeInvalidJurisdiction)
	})

	invalid := []struct {
		name  string
		field string
		value any
	}{
		{"short first name", "first_name", "A"},
		{"foreign phone", "phone", "+14155550100"},
		{"missing jurisdiction", "lga_id", 0},
		{"bus", "vehicle_type", "bus"},
		{"bad email", "email", "not-an-email"},
		{"bad expiry", "expiry_date", "31/12/2026"},
		{"bad emergency phone", "emergency_contact_phone", "123"},
	}
	for _, tt := range invalid {
		s.Run(tt.name, func() {
			body := validRegistration()
			body[tt.field] = tt.value
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/riders", body)
			rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
		})
	}
}

func (s *HandlerSuite) TestGet() {
	s.Run("malformed id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders/not-a-uuid", nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("forbidden is distinct from missing", func() {
		id := domain.NewRiderID()
		s.service.EXPECT().Get(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeForbidden, "access to this rider is not permitted"))
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders/"+id.String(), nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleLGAAdmin, 2))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, dErrors.CodeForbidden)
	})

	s.Run("missing rider", func() {
		id := domain.NewRiderID()
		s.service.EXPECT().Get(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeNotFound, "rider not found"))
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders/"+id.String(), nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, dErrors.CodeNotFound)
	})
}

func (s *HandlerSuite) TestHistory() {
	id := domain.NewRiderID()
	s.service.EXPECT().History(gomock.Any(), id).Return(&service.History{
		Rider: &models.Rider{ID: id, JacketNumber: "OG-SAG-00010"},
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders/"+id.String()+"/history", nil)
	rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	body := testutil.UnmarshalResponse[struct {
		Data struct {
			Rider models.Rider `json:"rider"`
		} `json:"data"`
	}](s.T(), rr)
	s.Equal("OG-SAG-00010", body.Data.Rider.JacketNumber)
}

func (s *HandlerSuite) TestUpdate() {
	id := domain.NewRiderID()

	s.Run("suspends rider", func() {
		s.service.EXPECT().Update(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ any, _ domain.RiderID, p models.Patch) (*models.Rider, error) {
				s.Require().NotNil(p.Status)
				s.Equal(models.StatusSuspended, *p.Status)
				s.Nil(p.Phone)
				return &models.Rider{ID: id, Status: models.StatusSuspended}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/riders/"+id.String(), map[string]any{"status": "suspended"})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleLGAAdmin, 1))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("empty body passes an empty patch", func() {
		s.service.EXPECT().Update(gomock.Any(), id, models.Patch{}).Return(&models.Rider{ID: id}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/riders/"+id.String(), map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("unknown status", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/riders/"+id.String(), map[string]any{"status": "archived"})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("reactivating revoked rider is 409", func() {
		s.service.EXPECT().Update(gomock.Any(), id, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "revoked riders cannot be reactivated"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/riders/"+id.String(), map[string]any{"status": "active"})
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleAdmin, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, dErrors.CodeInvalidState)
	})
}

func (s *HandlerSuite) TestRevoke() {
	id := domain.NewRiderID()

	s.Run("lga admin may not revoke", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/riders/"+id.String(), nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleLGAAdmin, 1))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, dErrors.CodeForbidden)
	})

	s.Run("super admin revokes", func() {
		s.service.EXPECT().Revoke(gomock.Any(), id).Return(&models.Rider{ID: id, Status: models.StatusRevoked}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/riders/"+id.String(), nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleSuperAdmin, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "message", "rider revoked")
	})
}

func (s *HandlerSuite) TestList() {
	s.Run("parses filters", func() {
		s.service.EXPECT().List(gomock.Any(), gomock.Any(), 20, 0).
			DoAndReturn(func(_ any, f models.ListFilter, _, _ int) ([]*models.Rider, int, error) {
				s.Equal([]models.Status{models.StatusActive, models.StatusSuspended}, f.Statuses)
				s.Equal(domain.JurisdictionID(3), f.Jurisdiction)
				s.Equal(models.VehicleTricycle, f.VehicleType)
				s.Equal("bayo", f.Search)
				return []*models.Rider{}, 0, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders?status=active,suspended&lga_id=3&vehicle_type=tricycle&search=+bayo+", nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("limit above 100 is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders?limit=500", nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})

	s.Run("unknown status filter", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/riders?status=active,gone", nil)
		rr := testutil.DoRequest(s.router, testutil.WithRole(req, domain.RoleViewer, 0))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, dErrors.CodeValidation)
	})
}
