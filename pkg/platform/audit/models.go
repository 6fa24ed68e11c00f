package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers decisions on mandates: approvals, rejections,
	// document issuance. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers staff authentication and account changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventMandateSubmitted          AuditEvent = "mandate_submitted"
	EventMandateAdminApproved      AuditEvent = "mandate_admin_approved"
	EventMandateSuperAdminApproved AuditEvent = "mandate_super_admin_approved"
	EventMandateRejected           AuditEvent = "mandate_rejected"
	EventMandatePdfIssued          AuditEvent = "mandate_pdf_issued"
	EventSubmitterUpdated          AuditEvent = "mandate_submitter_updated"

	EventStaffCreated     AuditEvent = "staff_created"
	EventStaffLogin       AuditEvent = "staff_login"
	EventStaffLoginFailed AuditEvent = "staff_login_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventMandateAdminApproved:      CategoryCompliance,
	EventMandateSuperAdminApproved: CategoryCompliance,
	EventMandateRejected:           CategoryCompliance,
	EventMandatePdfIssued:          CategoryCompliance,
	EventSubmitterUpdated:          CategoryCompliance,

	EventStaffCreated:     CategorySecurity,
	EventStaffLoginFailed: CategorySecurity,

	EventMandateSubmitted: CategoryOperations,
	EventStaffLogin:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one audit record. Subject is the aggregate it concerns: a mandate
// id for mandate events, a staff id for account events.
type Event struct {
	ID          uuid.UUID     `json:"id"`
	Category    EventCategory `json:"category"`
	Action      string        `json:"action"`
	Subject     string        `json:"subject"`
	SubjectType string        `json:"subject_type"`
	Reference   string        `json:"reference,omitempty"`
	FromStatus  string        `json:"from_status,omitempty"`
	ToStatus    string        `json:"to_status,omitempty"`
	ActorID     string        `json:"actor_id,omitempty"`
	ActorRole   string        `json:"actor_role,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
	ClientIP    string        `json:"client_ip,omitempty"`
	Device      string        `json:"device,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

const (
	SubjectMandate = "mandate"
	SubjectStaff   = "staff"
)

// Store persists audit events. The Postgres implementation is an outbox.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Record is an outbox row waiting to be relayed.
type Record struct {
	ID        uuid.UUID
	Event     Event
	Payload   []byte
	CreatedAt time.Time
}
