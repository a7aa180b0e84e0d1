package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive retention and downstream routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to the rider register and incident
	// ledger that the transport authority must be able to reconstruct.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access violations and abuse signals.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the staff member who performed the action. Empty for
	// public callers (verification, public incident reports).
	ActorID string
	// Subject is the entity acted on: rider ID, incident reference or jacket number.
	Subject      string
	Action       string
	Jurisdiction string
	Decision     string
	Reason       string
	RequestID    string
	IP           string
}

type AuditEvent string

const (
	// Rider register events
	EventRiderRegistered AuditEvent = "rider_registered"
	EventRiderUpdated    AuditEvent = "rider_updated"
	EventRiderRevoked    AuditEvent = "rider_revoked"

	// Incident events
	EventIncidentReported AuditEvent = "incident_reported"
	EventIncidentUpdated  AuditEvent = "incident_updated"

	// Jacket lifecycle events
	EventJacketOrdered       AuditEvent = "jacket_ordered"
	EventJacketStatusChanged AuditEvent = "jacket_status_changed"
	EventJacketDistributed   AuditEvent = "jacket_distributed"
	EventBatchCreated        AuditEvent = "batch_created"

	// Verification events
	EventVerificationPerformed AuditEvent = "verification_performed"

	// Messaging events
	EventSMSSent AuditEvent = "sms_sent"

	// Access events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
	EventAccessDenied      AuditEvent = "access_denied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRiderRegistered:   CategoryCompliance,
	EventRiderUpdated:      CategoryCompliance,
	EventRiderRevoked:      CategoryCompliance,
	EventIncidentReported:  CategoryCompliance,
	EventIncidentUpdated:   CategoryCompliance,
	EventJacketDistributed: CategoryCompliance,

	EventRateLimitExceeded: CategorySecurity,
	EventAccessDenied:      CategorySecurity,

	EventJacketOrdered:         CategoryOperations,
	EventJacketStatusChanged:   CategoryOperations,
	EventBatchCreated:          CategoryOperations,
	EventVerificationPerformed: CategoryOperations,
	EventSMSSent:               CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
