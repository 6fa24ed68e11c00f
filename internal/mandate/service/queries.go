package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mandate/internal/mandate/models"
	"mandate/internal/mandate/refnum"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/sentinel"
)

func (s *Service) Get(ctx context.Context, mandateID id.MandateID) (*models.Mandate, error) {
	if mandateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "mandate id is required")
	}
	m, err := s.load(ctx, mandateID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*models.Mandate, error) {
	reference = refnum.Normalize(reference)
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reference number is required")
	}
	if !refnum.Valid(reference) {
		return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
	}
	m, err := s.mandates.FindByReference(ctx, reference)
	if err != nil {
		return nil, wrapMandateErr(err)
	}
	return &m, nil
}

// Track is the public status lookup by reference number.
func (s *Service) Track(ctx context.Context, reference string) (*models.Tracking, error) {
	m, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	t := models.NewTracking(*m)
	return &t, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) (*models.Page, error) {
	filter.Normalize()
	page, err := s.mandates.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mandates")
	}
	return &page, nil
}

func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	counts, err := s.mandates.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count mandates")
	}
	d := models.NewDashboard(counts)
	return &d, nil
}

// History returns the audit trail of a mandate, newest first.
func (s *Service) History(ctx context.Context, mandateID id.MandateID) ([]audit.Event, error) {
	if _, err := s.Get(ctx, mandateID); err != nil {
		return nil, err
	}
	if s.auditPublisher == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditPublisher.List(ctx, mandateID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return events, nil
}

// Document renders the PDF for staff. Admin-approved requests get a
// provisional document; earlier or rejected requests have none.
func (s *Service) Document(ctx context.Context, mandateID id.MandateID) (*models.Document, error) {
	m, err := s.Get(ctx, mandateID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.StatusAdminApproved && !m.IsApproved() {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "no document is available for a request "+m.StatusLabel())
	}
	return s.render(ctx, *m)
}

// PublicDocument serves the PDF of a finally approved request by reference.
func (s *Service) PublicDocument(ctx context.Context, reference string) (*models.Document, error) {
	m, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !m.IsApproved() {
		return nil, dErrors.New(dErrors.CodeForbidden, "document is available after final approval")
	}
	return s.render(ctx, *m)
}

func (s *Service) render(ctx context.Context, m models.Mandate) (*models.Document, error) {
	if s.documents == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "document rendering is not configured")
	}
	data, err := s.documents.Render(ctx, m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render document")
	}
	return &models.Document{Filename: models.DocumentFilename(m.ReferenceNumber), Content: data}, nil
}

func (s *Service) load(ctx context.Context, mandateID id.MandateID) (models.Mandate, error) {
	m, err := s.mandates.FindByID(ctx, mandateID)
	if err != nil {
		return models.Mandate{}, wrapMandateErr(err)
	}
	return m, nil
}

func wrapMandateErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "mandate not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load mandate")
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
