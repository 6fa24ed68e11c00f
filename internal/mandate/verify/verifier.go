package verify

import (
	"context"
	"errors"
	"strings"
	"time"

	"mandate/internal/mandate/models"
	"mandate/internal/mandate/refnum"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
)

// Reasons a verification comes back invalid.
const (
	ReasonSignatureInvalid = "signature_invalid"
	ReasonNotApproved      = "not_approved"
	ReasonRejected         = "rejected"
)

// Verification is the public projection of a mandate. Submitter contact
// details are never included.
type Verification struct {
	Valid                bool       `json:"valid"`
	Reason               string     `json:"reason,omitempty"`
	ReferenceNumber      string     `json:"reference_number"`
	Status               string     `json:"status,omitempty"`
	StatusLabel          string     `json:"status_label,omitempty"`
	FullName             string     `json:"full_name,omitempty"`
	Function             string     `json:"function,omitempty"`
	Constituency         string     `json:"constituency,omitempty"`
	SuperAdminApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// MandateFinder loads a mandate by its public reference.
type MandateFinder interface {
	FindByReference(ctx context.Context, reference string) (models.Mandate, error)
}

type Verifier struct {
	mandates MandateFinder
	signer   *Signer
}

func NewVerifier(mandates MandateFinder, signer *Signer) *Verifier {
	return &Verifier{mandates: mandates, signer: signer}
}

// Verify reports whether reference names a finally approved, non-rejected
// mandate and signature was issued for it. A bad signature is answered
// without touching storage so it reveals nothing about the reference.
func (v *Verifier) Verify(ctx context.Context, reference, signature string) (*Verification, error) {
	reference = refnum.Normalize(reference)
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reference number is required")
	}
	if !refnum.Valid(reference) {
		return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
	}
	if !v.signer.Valid(reference, strings.TrimSpace(signature)) {
		return &Verification{Valid: false, Reason: ReasonSignatureInvalid, ReferenceNumber: reference}, nil
	}

	m, err := v.mandates.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load mandate")
	}
	return Project(m), nil
}

// Project builds the public view of m. Valid holds only for final approval.
func Project(m models.Mandate) *Verification {
	out := &Verification{
		ReferenceNumber: m.ReferenceNumber,
		Status:          string(m.Status),
		StatusLabel:     m.StatusLabel(),
	}
	switch {
	case m.IsRejected():
		out.Reason = ReasonRejected
	case !m.IsApproved():
		out.Reason = ReasonNotApproved
	default:
		out.Valid = true
		out.FullName = m.Submitter.FullName()
		out.Function = m.Submitter.Function
		out.Constituency = m.Submitter.Constituency
		out.SuperAdminApprovedAt = m.SuperAdminApprovedAt
	}
	return out
}
