package models

// Status is the lifecycle state of a mandate request.
type Status string

const (
	StatusDraft              Status = "draft"
	StatusPendingValidation  Status = "pending_validation"
	StatusAdminApproved      Status = "admin_approved"
	StatusSuperAdminApproved Status = "super_admin_approved"
	StatusRejected           Status = "rejected"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusPendingValidation,
	StatusAdminApproved,
	StatusSuperAdminApproved,
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
}

var statusLabels = map[Status]string{
	StatusDraft:              "Draft",
	StatusPendingValidation:  "Awaiting review",
	StatusAdminApproved:      "Approved by admin, awaiting final approval",
	StatusSuperAdminApproved: "Approved",
	StatusRejected:           "Rejected",
	StatusCompleted:          "Completed",
	StatusCancelled:          "Cancelled",
}

// ParseStatus validates a status token from external input.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusLabels[st]
	return st, ok
}

func (s Status) String() string { return string(s) }

// Label is the fixed display string for the status. Unknown tokens are
// returned as-is.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ApprovalLevel drives progress indicators: 1 awaiting review, 2 admin
// approved, 3 final approval, 0 for everything else.
func (s Status) ApprovalLevel() int {
	switch s {
	case StatusPendingValidation:
		return 1
	case StatusAdminApproved:
		return 2
	case StatusSuperAdminApproved:
		return 3
	default:
		return 0
	}
}

// IsPending is true while the request still awaits a decision.
func (s Status) IsPending() bool {
	return s == StatusPendingValidation || s == StatusAdminApproved
}

// IsApproved is true only after final (super-admin) approval.
func (s Status) IsApproved() bool {
	return s == StatusSuperAdminApproved
}

func (s Status) IsRejected() bool {
	return s == StatusRejected
}

// IsTerminal reports whether no further lifecycle transition leaves s.
// Document issuance on a final-approved mandate is not a status change.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuperAdminApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}
