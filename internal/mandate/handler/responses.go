package handler

import (
	"time"

	"mandate/internal/mandate/lifecycle"
	"mandate/internal/mandate/models"
	"mandate/pkg/platform/audit"
)

// SubmitResponse is returned to the citizen after submission. It carries
// what they need to track the request and nothing internal.
type SubmitResponse struct {
	ReferenceNumber string        `json:"reference_number"`
	Status          models.Status `json:"status"`
	StatusLabel     string        `json:"status_label"`
	SubmittedAt     time.Time     `json:"submitted_at"`
}

func FromSubmitted(m *models.Mandate) SubmitResponse {
	return SubmitResponse{
		ReferenceNumber: m.ReferenceNumber,
		Status:          m.Status,
		StatusLabel:     m.StatusLabel(),
		SubmittedAt:     m.CreatedAt,
	}
}

// MandateResponse is the staff view of a mandate.
type MandateResponse struct {
	models.Mandate
	StatusLabel      string   `json:"status_label"`
	ApprovalLevel    int      `json:"approval_level"`
	AvailableActions []string `json:"available_actions,omitempty"`
}

func FromMandate(m models.Mandate, actor models.Actor) MandateResponse {
	resp := MandateResponse{
		Mandate:       m,
		StatusLabel:   m.StatusLabel(),
		ApprovalLevel: m.ApprovalLevel(),
	}
	for _, t := range lifecycle.Available(m, actor) {
		resp.AvailableActions = append(resp.AvailableActions, string(t))
	}
	return resp
}

type ListResponse struct {
	Items  []MandateResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func FromPage(page *models.Page, filter models.Filter, actor models.Actor) ListResponse {
	resp := ListResponse{
		Items:  make([]MandateResponse, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, m := range page.Items {
		resp.Items = append(resp.Items, FromMandate(m, actor))
	}
	return resp
}

type HistoryResponse struct {
	MandateID string        `json:"mandate_id"`
	Events    []audit.Event `json:"events"`
}
