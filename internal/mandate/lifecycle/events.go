package lifecycle

import (
	"time"

	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
)

// EventKind names what a transition did.
type EventKind string

const (
	EventSubmitted          EventKind = "mandate_submitted"
	EventAdminApproved      EventKind = "mandate_admin_approved"
	EventSuperAdminApproved EventKind = "mandate_super_admin_approved"
	EventRejected           EventKind = "mandate_rejected"
	EventPdfIssued          EventKind = "mandate_pdf_issued"
)

// Event is emitted by a successful transition. The service turns events into
// audit records and notifications after the write commits.
type Event struct {
	Kind            EventKind
	MandateID       id.MandateID
	ReferenceNumber string
	Status          models.Status
	Actor           models.Actor
	At              time.Time
}

// Result is a successful transition: the successor value and its events.
type Result struct {
	Mandate models.Mandate
	Events  []Event
}

func newEvent(kind EventKind, m models.Mandate, actor models.Actor, at time.Time) Event {
	return Event{
		Kind:            kind,
		MandateID:       m.ID,
		ReferenceNumber: m.ReferenceNumber,
		Status:          m.Status,
		Actor:           actor,
		At:              at,
	}
}
