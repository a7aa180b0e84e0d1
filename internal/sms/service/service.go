// Package service answers inbound SMS commands, delivers outbound messages
// and keeps the SMS log.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	incidentmodels "ridergate/internal/incident/models"
	ridermodels "ridergate/internal/rider/models"
	"ridergate/internal/sms/metrics"
	"ridergate/internal/sms/models"
	verificationmodels "ridergate/internal/verification/models"
	"ridergate/pkg/attrs"
	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
	"ridergate/pkg/platform/audit"
	request "ridergate/pkg/platform/middleware/request"
	"ridergate/pkg/platform/sentinel"
	"ridergate/pkg/requestcontext"
)

// DefaultSenderID is the alphanumeric sender shown on handsets.
const DefaultSenderID = "OGUN-TRANS"

// smsReporterName labels incidents filed by text message.
const smsReporterName = "SMS reporter"

type Store interface {
	Append(ctx context.Context, entry *models.Log) error
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Log, int, error)
}

type Sender interface {
	Send(ctx context.Context, msg models.Outgoing) (*models.Receipt, error)
}

type Verifier interface {
	Verify(ctx context.Context, req verificationmodels.Request) (*verificationmodels.Result, error)
}

type IncidentReporter interface {
	Create(ctx context.Context, report incidentmodels.Report) (*incidentmodels.Incident, error)
}

type RiderLookup interface {
	FindByJacketNumber(ctx context.Context, jacketNumber string) (*ridermodels.Rider, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

var sendRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleLGAAdmin}

type Service struct {
	store          Store
	sender         Sender
	verifier       Verifier
	incidents      IncidentReporter
	riders         RiderLookup
	senderID       string
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

// WithSenderID overrides DefaultSenderID. Blank values are ignored.
func WithSenderID(id string) Option {
	return func(s *Service) {
		if id = strings.TrimSpace(id); id != "" {
			s.senderID = id
		}
	}
}

func New(store Store, sender Sender, verifier Verifier, incidents IncidentReporter, riders RiderLookup, opts ...Option) *Service {
	s := &Service{
		store:     store,
		sender:    sender,
		verifier:  verifier,
		incidents: incidents,
		riders:    riders,
		senderID:  DefaultSenderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendRequest asks for one outbound message. Template kinds render from
// Data; free-text kinds take Message as written.
type SendRequest struct {
	Phone   string
	Kind    models.Kind
	Data    models.Data
	Message string
	RiderID *domain.RiderID
}

// InboundResult describes how an inbound message was answered. Delivery is
// nil when the reply could not be handed to the gateway.
type InboundResult struct {
	Command  models.Command   `json:"-"`
	Kind     models.Kind      `json:"reply_type"`
	Reply    string           `json:"reply"`
	Delivery *models.Delivery `json:"delivery,omitempty"`
}

// Send renders and delivers a staff-initiated message.
func (s *Service) Send(ctx context.Context, req SendRequest) (*models.Delivery, error) {
	caller := requestcontext.Caller(ctx)
	if !caller.HasRole(sendRoles...) {
		return nil, s.deny(ctx, "role may not send sms")
	}
	if !domain.IsValidPhone(req.Phone) {
		return nil, dErrors.New(dErrors.CodeValidation, "phone must be a Nigerian mobile number")
	}
	body, err := compose(req)
	if err != nil {
		return nil, err
	}

	delivery, err := s.deliver(ctx, req.Phone, req.Kind, body, req.RiderID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "sms delivery timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sms delivery failed")
	}
	s.logAudit(ctx, string(audit.EventSMSSent),
		"message_type", string(req.Kind),
		"status", string(delivery.Status),
		"log_id", delivery.LogID.String(),
	)
	return delivery, nil
}

func compose(req SendRequest) (string, error) {
	msg := strings.TrimSpace(req.Message)
	switch {
	case msg != "" && req.Kind.IsFreeText():
		if utf8.RuneCountInString(msg) > models.MaxMessageLength {
			return "", dErrors.New(dErrors.CodeValidation, "message must be at most 500 characters")
		}
		return msg, nil
	case msg == "" && models.HasTemplate(req.Kind):
		return models.Render(req.Kind, req.Data)
	case msg == "" && req.Kind.IsFreeText():
		return "", dErrors.New(dErrors.CodeValidation, "message is required for this message type")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "message_type does not accept a custom message")
	}
}

// HandleInbound logs the message, runs the command it carries and sends the
// reply back to the sender. It never fails: errors while running the command
// produce the unavailable reply, and delivery errors are logged.
func (s *Service) HandleInbound(ctx context.Context, in models.Inbound) *InboundResult {
	s.record(ctx, &models.Log{
		ID:              domain.NewSMSLogID(),
		Phone:           in.From,
		Message:         in.Text,
		Kind:            models.KindIncoming,
		Direction:       models.DirectionInbound,
		Status:          models.StatusReceived,
		GatewayResponse: encode(map[string]string{"message_id": in.MessageID}),
		CreatedAt:       requestcontext.Now(ctx),
	})

	cmd := models.ParseCommand(in.Text)
	if s.metrics != nil {
		s.metrics.IncCommand(string(cmd.Action))
	}

	kind, data, rider, err := s.dispatch(ctx, in.From, cmd)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "sms command failed",
				"action", string(cmd.Action),
				"jacket_number", cmd.JacketNumber,
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
		}
		kind, data, rider = models.KindUnavailable, nil, nil
	}
	reply, err := models.Render(kind, data)
	if err != nil {
		kind = models.KindUnavailable
		reply, _ = models.Render(kind, nil)
	}

	result := &InboundResult{Command: cmd, Kind: kind, Reply: reply}
	delivery, err := s.deliver(ctx, in.From, kind, reply, rider)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "sms reply not delivered",
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
		}
		return result
	}
	result.Delivery = delivery
	return result
}

func (s *Service) dispatch(ctx context.Context, from string, cmd models.Command) (models.Kind, models.Data, *domain.RiderID, error) {
	switch cmd.Action {
	case models.ActionVerify:
		return s.verify(ctx, from, cmd.JacketNumber)
	case models.ActionReport:
		return s.report(ctx, from, cmd)
	case models.ActionStatus:
		return s.status(ctx, cmd.JacketNumber)
	case models.ActionHelp:
		return models.KindHelp, nil, nil, nil
	default:
		return models.KindUnknownCommand, nil, nil, nil
	}
}

func (s *Service) verify(ctx context.Context, from, jacketNumber string) (models.Kind, models.Data, *domain.RiderID, error) {
	result, err := s.verifier.Verify(ctx, verificationmodels.Request{
		JacketNumber:  jacketNumber,
		VerifierPhone: from,
		Method:        verificationmodels.MethodSMS,
	})
	if err != nil {
		return "", nil, nil, err
	}
	switch result.Outcome {
	case verificationmodels.OutcomeValid:
		p := result.Rider
		return models.KindVerification, models.Data{
			"first_name":    p.FirstName,
			"last_name":     p.LastName,
			"lga_name":      orDash(p.JurisdictionName),
			"vehicle_type":  p.VehicleType,
			"status":        p.Status,
			"jacket_number": jacketNumber,
		}, nil, nil
	case verificationmodels.OutcomeInactive:
		return models.KindStatus, models.Data{"jacket_number": jacketNumber, "status": result.RiderStatus}, nil, nil
	case verificationmodels.OutcomeExpired:
		return models.KindStatus, models.Data{"jacket_number": jacketNumber, "status": "expired"}, nil, nil
	default:
		return models.KindInvalidJacket, models.Data{"jacket_number": jacketNumber}, nil, nil
	}
}

func (s *Service) report(ctx context.Context, from string, cmd models.Command) (models.Kind, models.Data, *domain.RiderID, error) {
	description := cmd.Description
	if utf8.RuneCountInString(description) > incidentmodels.MaxDescriptionLength {
		description = string([]rune(description)[:incidentmodels.MaxDescriptionLength])
	}
	inc, err := s.incidents.Create(ctx, incidentmodels.Report{
		JacketNumber:  cmd.JacketNumber,
		ReporterName:  smsReporterName,
		ReporterPhone: from,
		Type:          incidentmodels.TypeOther,
		Description:   description,
		Severity:      incidentmodels.SeverityMedium,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeRiderNotFound) {
			return models.KindInvalidJacket, models.Data{"jacket_number": cmd.JacketNumber}, nil, nil
		}
		return "", nil, nil, err
	}
	return models.KindIncidentReceived, models.Data{
		"report_id":     inc.ReferenceNumber,
		"jacket_number": cmd.JacketNumber,
	}, inc.RiderID, nil
}

func (s *Service) status(ctx context.Context, jacketNumber string) (models.Kind, models.Data, *domain.RiderID, error) {
	rider, err := s.riders.FindByJacketNumber(ctx, jacketNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.KindInvalidJacket, models.Data{"jacket_number": jacketNumber}, nil, nil
		}
		return "", nil, nil, err
	}
	id := rider.ID
	return models.KindStatus, models.Data{"jacket_number": jacketNumber, "status": string(rider.Status)}, &id, nil
}

// deliver hands body to the sender and logs the outcome. A sender error is
// logged as a failed message with zero cost and returned.
func (s *Service) deliver(ctx context.Context, phone string, kind models.Kind, body string, rider *domain.RiderID) (*models.Delivery, error) {
	entry := &models.Log{
		ID:        domain.NewSMSLogID(),
		Phone:     phone,
		Message:   body,
		Kind:      kind,
		Direction: models.DirectionOutbound,
		RiderID:   rider,
		CreatedAt: requestcontext.Now(ctx),
	}

	receipt, err := s.sender.Send(ctx, models.Outgoing{To: phone, From: s.senderID, Body: body})
	if err != nil {
		entry.Status = models.StatusFailed
		entry.GatewayResponse = encode(map[string]string{"error": err.Error()})
		s.record(ctx, entry)
		return nil, err
	}

	entry.Status = models.StatusFailed
	if receipt.Accepted {
		entry.Status = models.StatusSent
	}
	entry.GatewayResponse = receipt.Raw
	entry.Cost = models.Cost(body)
	s.record(ctx, entry)

	return &models.Delivery{
		LogID:     entry.ID,
		Success:   receipt.Accepted,
		MessageID: receipt.MessageID,
		Status:    entry.Status,
		Cost:      entry.Cost,
	}, nil
}

// record appends to the SMS log. Failures are reported and swallowed; the
// log never decides whether a message goes out.
func (s *Service) record(ctx context.Context, entry *models.Log) {
	if s.metrics != nil {
		s.metrics.IncMessage(string(entry.Direction), string(entry.Status))
	}
	if err := s.store.Append(ctx, entry); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record sms log",
			"direction", string(entry.Direction),
			"message_type", string(entry.Kind),
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
}

// Logs returns a page of the SMS log, newest first.
func (s *Service) Logs(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Log, int, error) {
	list, total, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sms logs")
	}
	return list, total, nil
}

func (s *Service) deny(ctx context.Context, reason string) error {
	caller := requestcontext.Caller(ctx)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "sms access denied",
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
			Subject:   "sms",
			Action:    string(audit.EventAccessDenied),
			Decision:  "denied",
			Reason:    reason,
			RequestID: request.GetRequestID(ctx),
			IP:        requestcontext.ClientIP(ctx),
		})
	}
	return dErrors.New(dErrors.CodeForbidden, "sending sms is not permitted")
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
		ActorID:   requestcontext.StaffID(ctx).String(),
		Subject:   attrs.ExtractString(attributes, "log_id"),
		Action:    event,
		Decision:  attrs.ExtractString(attributes, "status"),
		RequestID: request.GetRequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
	})
}

func encode(v map[string]string) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
