package models

import (
	"maps"
	"time"

	id "mandate/pkg/domain"
)

// Mandate is the aggregate root for a citizen's representation request.
//
// Invariants:
//   - ReferenceNumber is assigned once at submission and never changes
//   - AdminApprovedAt, SuperAdminApprovedAt and RejectedAt are each set at most once
//   - Status only changes through internal/mandate/lifecycle
//   - Rejection is impossible once Status is super_admin_approved
//
// Mandate values are treated as immutable: lifecycle functions return a new
// value rather than editing the one they were given.
type Mandate struct {
	ID              id.MandateID  `json:"id"`
	ReferenceNumber string        `json:"reference_number"`
	Status          Status        `json:"status"`
	Submitter       SubmitterData `json:"submitter"`

	AdminApproverID      *id.StaffID `json:"admin_approver_id,omitempty"`
	SuperAdminApproverID *id.StaffID `json:"super_admin_approver_id,omitempty"`
	RejectedByID         *id.StaffID `json:"rejected_by_id,omitempty"`

	AdminApprovedAt      *time.Time `json:"admin_approved_at,omitempty"`
	SuperAdminApprovedAt *time.Time `json:"super_admin_approved_at,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`

	PdfIssued   bool       `json:"pdf_issued"`
	PdfIssuedAt *time.Time `json:"pdf_issued_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitterData is the identity and constituency payload supplied at
// submission. Extra carries form fields the engine passes through untouched.
type SubmitterData struct {
	LastName     string            `json:"last_name"`
	FirstName    string            `json:"first_name"`
	Function     string            `json:"function,omitempty"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Constituency string            `json:"constituency,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// FullName renders "LASTNAME Firstname" the way documents print it.
func (d SubmitterData) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	if d.LastName == "" {
		return d.FirstName
	}
	return d.LastName + " " + d.FirstName
}

// Clone returns a copy that shares no mutable state with d.
func (d SubmitterData) Clone() SubmitterData {
	out := d
	if d.Extra != nil {
		out.Extra = maps.Clone(d.Extra)
	}
	return out
}

// Clone returns a deep copy of m so callers can derive a successor without
// aliasing timestamps or the submitter payload.
func (m Mandate) Clone() Mandate {
	out := m
	out.Submitter = m.Submitter.Clone()
	out.AdminApproverID = clonePtr(m.AdminApproverID)
	out.SuperAdminApproverID = clonePtr(m.SuperAdminApproverID)
	out.RejectedByID = clonePtr(m.RejectedByID)
	out.AdminApprovedAt = clonePtr(m.AdminApprovedAt)
	out.SuperAdminApprovedAt = clonePtr(m.SuperAdminApprovedAt)
	out.RejectedAt = clonePtr(m.RejectedAt)
	out.PdfIssuedAt = clonePtr(m.PdfIssuedAt)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (m Mandate) ApprovalLevel() int { return m.Status.ApprovalLevel() }
func (m Mandate) StatusLabel() string { return m.Status.Label() }
func (m Mandate) IsPending() bool     { return m.Status.IsPending() }
func (m Mandate) IsApproved() bool    { return m.Status.IsApproved() }
func (m Mandate) IsRejected() bool    { return m.Status.IsRejected() }

// CanEditSubmitter reports whether staff may still correct submitter data.
func (m Mandate) CanEditSubmitter() bool {
	return m.Status.IsPending()
}

// Actor is whoever asks for a transition. The zero Actor is the anonymous
// public submitter.
type Actor struct {
	ID   id.StaffID
	Role id.Role
}

func (a Actor) IsAnonymous() bool { return a.ID.IsNil() && a.Role == "" }

// Filter narrows staff listings.
type Filter struct {
	Statuses []Status
	Search   string
	Limit    int
	Offset   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane bounds.
func (f *Filter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// Page is a slice of mandates plus the unpaged total.
type Page struct {
	Items []Mandate `json:"items"`
	Total int       `json:"total"`
}

// StatusCounts feeds the staff dashboard.
type StatusCounts map[Status]int
