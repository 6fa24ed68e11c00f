// Package lifecycle is the mandate state machine.
//
// Every transition is a pure function: it receives the current Mandate value
// and returns either a successor value plus the events it produced, or an
// error. Callers pass "now" in and persist the result themselves.
package lifecycle

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/email"
)

// Transition names an edge of the state machine.
type Transition string

const (
	TransitionSubmit              Transition = "submit"
	TransitionApproveByAdmin      Transition = "approve_by_admin"
	TransitionApproveBySuperAdmin Transition = "approve_by_super_admin"
	TransitionReject              Transition = "reject"
	TransitionIssuePdf            Transition = "issue_pdf"
)

// AllTransitions lists the edges that start from an existing mandate.
var AllTransitions = []Transition{
	TransitionApproveByAdmin,
	TransitionApproveBySuperAdmin,
	TransitionReject,
	TransitionIssuePdf,
}

type rule struct {
	from      []models.Status
	to        models.Status
	authorize func(models.Actor) bool
}

// rules is the single source of truth for which statuses each transition may
// leave from. issue_pdf keeps the current status, so its target is empty.
var rules = map[Transition]rule{
	TransitionApproveByAdmin: {
		from:      []models.Status{models.StatusPendingValidation},
		to:        models.StatusAdminApproved,
		authorize: func(a models.Actor) bool { return a.Role.CanReview() },
	},
	TransitionApproveBySuperAdmin: {
		from:      []models.Status{models.StatusAdminApproved},
		to:        models.StatusSuperAdminApproved,
		authorize: func(a models.Actor) bool { return a.Role.CanFinalize() },
	},
	TransitionReject: {
		from:      []models.Status{models.StatusPendingValidation, models.StatusAdminApproved},
		to:        models.StatusRejected,
		authorize: func(a models.Actor) bool { return a.Role.CanReview() },
	},
	TransitionIssuePdf: {
		from: []models.Status{models.StatusAdminApproved, models.StatusSuperAdminApproved},
	},
}

// AllowedFrom returns the source statuses of t.
func AllowedFrom(t Transition) []models.Status {
	return slices.Clone(rules[t].from)
}

// CanApply reports whether t may leave from status, ignoring the actor.
func CanApply(t Transition, status models.Status) bool {
	r, ok := rules[t]
	return ok && slices.Contains(r.from, status)
}

// Available lists the transitions actor could apply to m right now. Staff
// UIs use it to decide which buttons to show.
func Available(m models.Mandate, actor models.Actor) []Transition {
	var out []Transition
	for _, t := range AllTransitions {
		if guard(t, m.Status, actor) == nil {
			out = append(out, t)
		}
	}
	return out
}

// guard checks the source status first, then the actor's authority.
func guard(t Transition, status models.Status, actor models.Actor) error {
	r, ok := rules[t]
	if !ok {
		return invalid(t, status, "unknown transition")
	}
	if !slices.Contains(r.from, status) {
		return invalid(t, status, describeStatus(status))
	}
	if r.authorize != nil && !r.authorize(actor) {
		return invalid(t, status, "insufficient authority")
	}
	return nil
}

func describeStatus(s models.Status) string {
	switch s {
	case models.StatusAdminApproved:
		return "already approved by an admin"
	case models.StatusSuperAdminApproved:
		return "already finally approved"
	case models.StatusRejected:
		return "already rejected"
	default:
		return "not allowed from current status"
	}
}

// SubmitInput is what the public submission path provides.
type SubmitInput struct {
	ID              id.MandateID
	ReferenceNumber string
	Submitter       models.SubmitterData
}

// Submit constructs a new mandate in pending_validation.
func Submit(in SubmitInput, now time.Time) (Result, error) {
	data := normalizeSubmitter(in.Submitter)
	if err := validateSubmitter(data); err != nil {
		return Result{}, err
	}
	if in.ID.IsNil() {
		return Result{}, dErrors.New(dErrors.CodeInvariantViolation, "mandate id is required")
	}
	if strings.TrimSpace(in.ReferenceNumber) == "" {
		return Result{}, dErrors.New(dErrors.CodeInvariantViolation, "reference number is required")
	}

	m := models.Mandate{
		ID:              in.ID,
		ReferenceNumber: in.ReferenceNumber,
		Status:          models.StatusPendingValidation,
		Submitter:       data,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return Result{
		Mandate: m,
		Events:  []Event{newEvent(EventSubmitted, m, models.Actor{}, now)},
	}, nil
}

// ApproveByAdmin is the first approval step. Super-admins may perform it too.
func ApproveByAdmin(current models.Mandate, actor models.Actor, now time.Time) (Result, error) {
	if err := guard(TransitionApproveByAdmin, current.Status, actor); err != nil {
		return Result{}, err
	}
	next := current.Clone()
	next.Status = models.StatusAdminApproved
	next.AdminApprovedAt = &now
	if !actor.ID.IsNil() {
		approver := actor.ID
		next.AdminApproverID = &approver
	}
	next.UpdatedAt = now
	return Result{
		Mandate: next,
		Events:  []Event{newEvent(EventAdminApproved, next, actor, now)},
	}, nil
}

// ApproveBySuperAdmin grants final approval. Only reachable after admin
// approval and only for super-admins.
func ApproveBySuperAdmin(current models.Mandate, actor models.Actor, now time.Time) (Result, error) {
	if err := guard(TransitionApproveBySuperAdmin, current.Status, actor); err != nil {
		return Result{}, err
	}
	next := current.Clone()
	at := notBefore(now, current.AdminApprovedAt)
	next.Status = models.StatusSuperAdminApproved
	next.SuperAdminApprovedAt = &at
	if !actor.ID.IsNil() {
		approver := actor.ID
		next.SuperAdminApproverID = &approver
	}
	next.UpdatedAt = at
	return Result{
		Mandate: next,
		Events:  []Event{newEvent(EventSuperAdminApproved, next, actor, at)},
	}, nil
}

// Reject ends the request. The rejecting actor's id is always recorded when
// known, whichever stage the request was in.
func Reject(current models.Mandate, actor models.Actor, reason string, now time.Time) (Result, error) {
	if err := guard(TransitionReject, current.Status, actor); err != nil {
		return Result{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Result{}, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxRejectionReasonLength {
		return Result{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("rejection reason must be %d characters or less", MaxRejectionReasonLength))
	}
	next := current.Clone()
	at := notBefore(now, current.AdminApprovedAt)
	next.Status = models.StatusRejected
	next.RejectedAt = &at
	next.RejectionReason = reason
	if !actor.ID.IsNil() {
		rejectedBy := actor.ID
		next.RejectedByID = &rejectedBy
	}
	next.UpdatedAt = at
	return Result{
		Mandate: next,
		Events:  []Event{newEvent(EventRejected, next, actor, at)},
	}, nil
}

// IssuePdf records that a document was produced. Repeating it re-stamps
// PdfIssuedAt and leaves the status alone.
func IssuePdf(current models.Mandate, now time.Time) (Result, error) {
	if err := guard(TransitionIssuePdf, current.Status, models.Actor{}); err != nil {
		return Result{}, err
	}
	next := current.Clone()
	next.PdfIssued = true
	next.PdfIssuedAt = &now
	next.UpdatedAt = now
	return Result{
		Mandate: next,
		Events:  []Event{newEvent(EventPdfIssued, next, models.Actor{}, now)},
	}, nil
}

// Apply dispatches by transition name. Reason is only read by reject.
func Apply(t Transition, current models.Mandate, actor models.Actor, reason string, now time.Time) (Result, error) {
	switch t {
	case TransitionApproveByAdmin:
		return ApproveByAdmin(current, actor, now)
	case TransitionApproveBySuperAdmin:
		return ApproveBySuperAdmin(current, actor, now)
	case TransitionReject:
		return Reject(current, actor, reason, now)
	case TransitionIssuePdf:
		return IssuePdf(current, now)
	default:
		return Result{}, invalid(t, current.Status, "unknown transition")
	}
}

// notBefore keeps approval timestamps monotonic when the caller's clock is
// behind a previously stored stamp.
func notBefore(now time.Time, prev *time.Time) time.Time {
	if prev != nil && now.Before(*prev) {
		return *prev
	}
	return now
}

const (
	MaxNameLength            = 128
	MaxFieldLength           = 256
	MaxRejectionReasonLength = 2000
	MaxExtraFields           = 32
)

func normalizeSubmitter(d models.SubmitterData) models.SubmitterData {
	out := d.Clone()
	out.LastName = strings.TrimSpace(out.LastName)
	out.FirstName = strings.TrimSpace(out.FirstName)
	out.Function = strings.TrimSpace(out.Function)
	out.Email = email.Normalize(out.Email)
	out.Phone = strings.TrimSpace(out.Phone)
	out.Constituency = strings.TrimSpace(out.Constituency)
	return out
}

func validateSubmitter(d models.SubmitterData) error {
	var missing []string
	if d.LastName == "" {
		missing = append(missing, "last_name")
	}
	if d.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if !email.IsValid(d.Email) {
		return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	if utf8.RuneCountInString(d.LastName) > MaxNameLength || utf8.RuneCountInString(d.FirstName) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("names must be %d characters or less", MaxNameLength))
	}
	for _, v := range []string{d.Function, d.Phone, d.Constituency} {
		if utf8.RuneCountInString(v) > MaxFieldLength {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("fields must be %d characters or less", MaxFieldLength))
		}
	}
	if len(d.Extra) > MaxExtraFields {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d extra fields are allowed", MaxExtraFields))
	}
	return nil
}

// ValidateSubmitter normalizes and validates a staff correction of the
// submitter payload. It shares the rules applied at submission.
func ValidateSubmitter(d models.SubmitterData) (models.SubmitterData, error) {
	out := normalizeSubmitter(d)
	if err := validateSubmitter(out); err != nil {
		return models.SubmitterData{}, err
	}
	return out, nil
}
