package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Sender,Verifier,IncidentReporter,RiderLookup,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	incidentmodels "ridergate/internal/incident/models"
	ridermodels "ridergate/internal/rider/models"
	"ridergate/internal/sms/models"
	"ridergate/internal/sms/service/mocks"
	verificationmodels "ridergate/internal/verification/models"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/requestcontext"
)

const (
	from   = "08031234567"
	jacket = "OG-IFO-00001"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	sender    *mocks.MockSender
	verifier  *mocks.MockVerifier
	incidents *mocks.MockIncidentReporter
	riders    *mocks.MockRiderLookup
	publisher *mocks.MockAuditPublisher
	service   *Service
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.sender = mocks.NewMockSender(s.ctrl)
	s.verifier = mocks.NewMockVerifier(s.ctrl)
	s.incidents = mocks.NewMockIncidentReporter(s.ctrl)
	s.riders = mocks.NewMockRiderLookup(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.sender, s.verifier, s.incidents, s.riders,
		WithAuditPublisher(s.publisher))
	s.now = time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) ctxAs(role domain.Role) context.Context {
	return requestcontext.WithCaller(s.ctx(), domain.Caller{
		StaffID: domain.StaffID(domain.NewRiderID()),
		Role:    role,
	})
}

// expectInboundLogged expects the inbound log entry followed by one reply
// that the gateway accepts, and returns the captured reply log.
func (s *ServiceSuite) expectInboundLogged(text string) *models.Log {
	reply := &models.Log{}
	gomock.InOrder(
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.Log) error {
			s.Equal(models.DirectionInbound, entry.Direction)
			s.Equal(models.StatusReceived, entry.Status)
			s.Equal(models.KindIncoming, entry.Kind)
			s.Equal(text, entry.Message)
			s.JSONEq(`{"message_id":"gw-1"}`, entry.GatewayResponse)
			return nil
		}),
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg models.Outgoing) (*models.Receipt, error) {
			s.Equal(from, msg.To)
			s.Equal(DefaultSenderID, msg.From)
			return &models.Receipt{Accepted: true, MessageID: "out-1", Raw: `{"code":"ok"}`}, nil
		}),
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.Log) error {
			*reply = *entry
			return nil
		}),
	)
	return reply
}

func (s *ServiceSuite) inbound(text string) *InboundResult {
	return s.service.HandleInbound(s.ctx(), models.Inbound{From: from, Text: text, MessageID: "gw-1"})
}

func (s *ServiceSuite) TestHandleInboundVerify() {
	s.Run("valid rider gets the verification card", func() {
		reply := s.expectInboundLogged("verify og-ifo-00001")
		s.verifier.EXPECT().Verify(gomock.Any(), verificationmodels.Request{
			JacketNumber:  jacket,
			VerifierPhone: from,
			Method:        verificationmodels.MethodSMS,
		}).Return(&verificationmodels.Result{
			Outcome: verificationmodels.OutcomeValid,
			Rider: &verificationmodels.Projection{
				FirstName: "Adebayo", LastName: "Ogunleye", JurisdictionName: "Ifo",
				VehicleType: "motorcycle", Status: "active",
			},
		}, nil)

		result := s.inbound("verify og-ifo-00001")
		s.Equal(models.KindVerification, result.Kind)
		s.Contains(result.Reply, "Adebayo Ogunleye")
		s.Contains(result.Reply, "LGA: Ifo")
		s.Contains(result.Reply, "SMS REPORT "+jacket)
		s.Require().NotNil(result.Delivery)
		s.True(result.Delivery.Success)
		s.Equal(models.StatusSent, reply.Status)
		s.Equal(models.DirectionOutbound, reply.Direction)
		s.Equal(models.Cost(result.Reply), reply.Cost)
	})

	s.Run("unknown jacket gets invalid jacket", func() {
		s.expectInboundLogged("VERIFY OG-IFO-99999")
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(&verificationmodels.Result{Outcome: verificationmodels.OutcomeNotFound}, nil)

		result := s.inbound("VERIFY OG-IFO-99999")
		s.Equal(models.KindInvalidJacket, result.Kind)
		s.Contains(result.Reply, "Jacket OG-IFO-99999 not found")
	})

	s.Run("suspended rider gets status", func() {
		s.expectInboundLogged("VERIFY " + jacket)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(&verificationmodels.Result{Outcome: verificationmodels.OutcomeInactive, RiderStatus: "suspended"}, nil)

		result := s.inbound("VERIFY " + jacket)
		s.Equal(models.KindStatus, result.Kind)
		s.Equal("Jacket "+jacket+" Status: SUSPENDED", result.Reply)
	})

	s.Run("expired jacket reports expired", func() {
		s.expectInboundLogged("VERIFY " + jacket)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(&verificationmodels.Result{Outcome: verificationmodels.OutcomeExpired, RiderStatus: "active"}, nil)

		result := s.inbound("VERIFY " + jacket)
		s.Equal("Jacket "+jacket+" Status: EXPIRED", result.Reply)
	})

	s.Run("engine failure answers unavailable", func() {
		reply := s.expectInboundLogged("VERIFY " + jacket)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "failed to look up rider"))

		result := s.inbound("VERIFY " + jacket)
		s.Equal(models.KindUnavailable, result.Kind)
		s.Equal("Service temporarily unavailable. Please try again later.", result.Reply)
		s.Equal(models.KindUnavailable, reply.Kind)
	})
}

func (s *ServiceSuite) TestHandleInboundReport() {
	s.Run("files an incident of type other", func() {
		rider := domain.NewRiderID()
		reply := s.expectInboundLogged("REPORT " + jacket + " rider was rude")
		s.incidents.EXPECT().Create(gomock.Any(), incidentmodels.Report{
			JacketNumber:  jacket,
			ReporterName:  smsReporterName,
			ReporterPhone: from,
			Type:          incidentmodels.TypeOther,
			Description:   "rider was rude",
			Severity:      incidentmodels.SeverityMedium,
		}).Return(&incidentmodels.Incident{ReferenceNumber: "INC-1-ABCDE", RiderID: &rider}, nil)

		result := s.inbound("REPORT " + jacket + " rider was rude")
		s.Equal(models.KindIncidentReceived, result.Kind)
		s.Contains(result.Reply, "#INC-1-ABCDE")
		s.Require().NotNil(reply.RiderID)
		s.Equal(rider, *reply.RiderID)
	})

	s.Run("unknown jacket answers invalid jacket", func() {
		s.expectInboundLogged("REPORT OG-XXX-00001 bad")
		s.incidents.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRiderNotFound, "Jacket number not found"))

		result := s.inbound("REPORT OG-XXX-00001 bad")
		s.Equal(models.KindInvalidJacket, result.Kind)
	})

	s.Run("store failure answers unavailable", func() {
		s.expectInboundLogged("REPORT " + jacket + " bad")
		s.incidents.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "failed to create incident"))

		result := s.inbound("REPORT " + jacket + " bad")
		s.Equal(models.KindUnavailable, result.Kind)
	})
}

func (s *ServiceSuite) TestHandleInboundStatusHelpUnknown() {
	s.Run("status reads the registry", func() {
		rider := &ridermodels.Rider{ID: domain.NewRiderID(), Status: ridermodels.StatusPending}
		s.expectInboundLogged("STATUS " + jacket)
		s.riders.EXPECT().FindByJacketNumber(gomock.Any(), jacket).Return(rider, nil)

		result := s.inbound("STATUS " + jacket)
		s.Equal("Jacket "+jacket+" Status: PENDING", result.Reply)
	})

	s.Run("status of unknown jacket", func() {
		s.expectInboundLogged("STATUS " + jacket)
		s.riders.EXPECT().FindByJacketNumber(gomock.Any(), jacket).Return(nil, sentinel.ErrNotFound)

		result := s.inbound("STATUS " + jacket)
		s.Equal(models.KindInvalidJacket, result.Kind)
	})

	s.Run("help", func() {
		s.expectInboundLogged("help")
		result := s.inbound("help")
		s.Equal(models.KindHelp, result.Kind)
		s.Contains(result.Reply, "OGUN TRANSPORT HELP")
	})

	s.Run("unknown command", func() {
		s.expectInboundLogged("balance")
		result := s.inbound("balance")
		s.Equal(models.KindUnknownCommand, result.Kind)
		s.Contains(result.Reply, "Command not recognized.")
	})
}

func (s *ServiceSuite) TestHandleInboundSwallowsFailures() {
	s.Run("log and delivery failures still return the reply", func() {
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("db down")).Times(2)
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, errors.New("gateway down"))

		result := s.inbound("HELP")
		s.Equal(models.KindHelp, result.Kind)
		s.NotEmpty(result.Reply)
		s.Nil(result.Delivery)
	})
}

func (s *ServiceSuite) TestSend() {
	s.Run("renders a template and audits", func() {
		var logged *models.Log
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).
			Return(&models.Receipt{Accepted: true, MessageID: "m-9", Raw: `{"code":"ok"}`}, nil)
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.Log) error {
			logged = entry
			return nil
		})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventSMSSent), ev.Action)
			s.Equal("sent", ev.Decision)
			return nil
		})

		delivery, err := s.service.Send(s.ctxAs(domain.RoleAdmin), SendRequest{
			Phone: from,
			Kind:  models.KindPaymentConfirmation,
			Data:  models.Data{"amount": "5000", "jacket_number": jacket, "lga_name": "Ifo"},
		})
		s.Require().NoError(err)
		s.True(delivery.Success)
		s.Equal("m-9", delivery.MessageID)
		s.Equal(logged.ID, delivery.LogID)
		s.Equal(models.KindPaymentConfirmation, logged.Kind)
		s.Equal(4.0, logged.Cost)
	})

	s.Run("free text message", func() {
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg models.Outgoing) (*models.Receipt, error) {
			s.Equal("Your jacket is ready", msg.Body)
			return &models.Receipt{Accepted: false, Raw: `{"code":"rejected"}`}, nil
		})
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		delivery, err := s.service.Send(s.ctxAs(domain.RoleLGAAdmin), SendRequest{
			Phone: from, Kind: models.KindJacketReady, Message: "  Your jacket is ready ",
		})
		s.Require().NoError(err)
		s.False(delivery.Success)
		s.Equal(models.StatusFailed, delivery.Status)
	})

	s.Run("gateway error logs a failed message", func() {
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
		s.store.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.Log) error {
			s.Equal(models.StatusFailed, entry.Status)
			s.Zero(entry.Cost)
			s.Contains(entry.GatewayResponse, "connection refused")
			return nil
		})

		_, err := s.service.Send(s.ctxAs(domain.RoleAdmin), SendRequest{Phone: from, Kind: models.KindGeneral, Message: "hi"})
		s.Require().Error(err)
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})

	s.Run("field officer denied", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		_, err := s.service.Send(s.ctxAs(domain.RoleFieldOfficer), SendRequest{Phone: from, Kind: models.KindGeneral, Message: "hi"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("validation", func() {
		ctx := s.ctxAs(domain.RoleAdmin)
		cases := []SendRequest{
			{Phone: "12345", Kind: models.KindGeneral, Message: "hi"},
			{Phone: from, Kind: models.KindGeneral},
			{Phone: from, Kind: models.KindHelp, Message: "custom"},
			{Phone: from, Kind: models.KindStatus, Data: models.Data{"jacket_number": jacket}},
			{Phone: from, Kind: models.KindGeneral, Message: string(make([]byte, 501))},
		}
		for _, req := range cases {
			_, err := s.service.Send(ctx, req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "%+v", req.Kind)
		}
	})
}

func (s *ServiceSuite) TestLogs() {
	filter := models.ListFilter{Phone: from}
	s.store.EXPECT().List(gomock.Any(), filter, 20, 0).Return([]*models.Log{{Phone: from}}, 1, nil)
	list, total, err := s.service.Logs(s.ctx(), filter, 20, 0)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Len(list, 1)

	s.store.EXPECT().List(gomock.Any(), gomock.Any(), 20, 0).Return(nil, 0, errors.New("db down"))
	_, _, err = s.service.Logs(s.ctx(), filter, 20, 0)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}
