package models

import "time"

// Tracking is what the public tracking page shows for a reference number.
// It never carries contact details.
type Tracking struct {
	ReferenceNumber      string     `json:"reference_number"`
	Status               Status     `json:"status"`
	StatusLabel          string     `json:"status_label"`
	ApprovalLevel        int        `json:"approval_level"`
	SubmittedAt          time.Time  `json:"submitted_at"`
	AdminApprovedAt      *time.Time `json:"admin_approved_at,omitempty"`
	SuperAdminApprovedAt *time.Time `json:"super_admin_approved_at,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	DocumentAvailable    bool       `json:"document_available"`
}

func NewTracking(m Mandate) Tracking {
	return Tracking{
		ReferenceNumber:      m.ReferenceNumber,
		Status:               m.Status,
		StatusLabel:          m.StatusLabel(),
		ApprovalLevel:        m.ApprovalLevel(),
		SubmittedAt:          m.CreatedAt,
		AdminApprovedAt:      m.AdminApprovedAt,
		SuperAdminApprovedAt: m.SuperAdminApprovedAt,
		RejectedAt:           m.RejectedAt,
		RejectionReason:      m.RejectionReason,
		DocumentAvailable:    m.IsApproved(),
	}
}

// Dashboard summarizes the workload by status for staff.
type Dashboard struct {
	Counts  StatusCounts `json:"counts"`
	Total   int          `json:"total"`
	Pending int          `json:"pending"`
}

func NewDashboard(counts StatusCounts) Dashboard {
	d := Dashboard{Counts: counts}
	for status, n := range counts {
		d.Total += n
		if status.IsPending() {
			d.Pending += n
		}
	}
	return d
}

// Document is a rendered mandate ready to be served.
type Document struct {
	Filename string
	Content  []byte
}

func DocumentFilename(reference string) string {
	return "mandate-" + reference + ".pdf"
}
