package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	mandatemetrics "mandate/internal/mandate/metrics"
	"mandate/internal/mandate/lifecycle"
	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/requestcontext"
)

// ApproveByAdmin moves a pending request to admin_approved.
func (s *Service) ApproveByAdmin(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
	return s.transition(ctx, lifecycle.TransitionApproveByAdmin, mandateID, actor, "", nil)
}

// ApproveBySuperAdmin grants final approval and, when enabled, issues the
// document afterwards.
func (s *Service) ApproveBySuperAdmin(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
	return s.transition(ctx, lifecycle.TransitionApproveBySuperAdmin, mandateID, actor, "", nil)
}

// Reject ends a pending or admin-approved request with a reason.
func (s *Service) Reject(ctx context.Context, mandateID id.MandateID, actor models.Actor, reason string) (*models.Mandate, error) {
	return s.transition(ctx, lifecycle.TransitionReject, mandateID, actor, reason, nil)
}

// IssueDocument renders the PDF and records the issuance. The status does
// not change; issuing again re-stamps pdf_issued_at.
func (s *Service) IssueDocument(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Document, error) {
	if s.documents == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "document rendering is not configured")
	}
	var content []byte
	m, err := s.transition(ctx, lifecycle.TransitionIssuePdf, mandateID, actor, "",
		func(ctx context.Context, next models.Mandate) error {
			data, err := s.documents.Render(ctx, next)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render document")
			}
			content = data
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &models.Document{Filename: models.DocumentFilename(m.ReferenceNumber), Content: content}, nil
}

// beforeWrite runs after the guard passed and before the conditional write.
// An error aborts the transition.
type beforeWrite func(ctx context.Context, next models.Mandate) error

// transition is the single path every status change takes:
// load, apply the pure transition, write only if the status is unchanged,
// then fire side effects. A lost write race reloads and re-runs the guard,
// so the loser sees the winner's status and gets invalid_transition.
func (s *Service) transition(
	ctx context.Context,
	t lifecycle.Transition,
	mandateID id.MandateID,
	actor models.Actor,
	reason string,
	prepare beforeWrite,
) (_ *models.Mandate, err error) {
	ctx, span := s.tracer.Start(ctx, "mandate."+string(t))
	span.SetAttributes(
		attribute.String("mandate.id", mandateID.String()),
		attribute.String("actor.role", string(actor.Role)),
	)
	start := time.Now()
	defer func() {
		s.observe(string(t), start)
		s.incTransition(t, err)
		endSpan(span, err)
	}()

	if mandateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "mandate id is required")
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := s.load(ctx, mandateID)
		if err != nil {
			return nil, err
		}

		res, err := lifecycle.Apply(t, current, actor, reason, requestcontext.Now(ctx))
		if err != nil {
			return nil, err
		}
		if prepare != nil {
			if err := prepare(ctx, res.Mandate); err != nil {
				return nil, err
			}
		}

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.mandates.UpdateIfStatus(txCtx, res.Mandate, current.Status); err != nil {
				return err
			}
			return s.recordEvents(txCtx, current.Status, res)
		})
		switch {
		case err == nil:
			s.afterCommit(ctx, res)
			return &res.Mandate, nil
		case errors.Is(err, sentinel.ErrInvalidState):
			s.logger.InfoContext(ctx, "mandate changed during transition, re-evaluating",
				"mandate_id", mandateID.String(),
				"transition", string(t),
				"attempt", attempt,
			)
			continue
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save mandate")
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "mandate is being modified concurrently, retry")
}

// UpdateSubmitter corrects submitter data while a decision is still open.
// Status, reference number and approval stamps are left untouched.
func (s *Service) UpdateSubmitter(ctx context.Context, mandateID id.MandateID, actor models.Actor, data models.SubmitterData) (_ *models.Mandate, err error) {
	ctx, span := s.tracer.Start(ctx, "mandate.update_submitter")
	span.SetAttributes(attribute.String("mandate.id", mandateID.String()))
	start := time.Now()
	defer func() {
		s.observe("update_submitter", start)
		endSpan(span, err)
	}()

	if mandateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "mandate id is required")
	}
	if !actor.Role.CanReview() {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	data, err = lifecycle.ValidateSubmitter(data)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := s.load(ctx, mandateID)
		if err != nil {
			return nil, err
		}
		if !current.CanEditSubmitter() {
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "submitter data can no longer be changed")
		}

		next := current.Clone()
		next.Submitter = data
		next.UpdatedAt = requestcontext.Now(ctx)

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.mandates.UpdateIfStatus(txCtx, next, current.Status); err != nil {
				return err
			}
			return s.emitAudit(txCtx, submitterUpdatedEvent(next, actor))
		})
		switch {
		case err == nil:
			if s.documents != nil {
				s.documents.Invalidate(context.WithoutCancel(ctx), next.ReferenceNumber)
			}
			return &next, nil
		case errors.Is(err, sentinel.ErrInvalidState):
			continue
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save mandate")
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "mandate is being modified concurrently, retry")
}

func (s *Service) incTransition(t lifecycle.Transition, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncTransition(string(t), outcomeOf(err))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return mandatemetrics.OutcomeSuccess
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition),
		dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeNotFound):
		return mandatemetrics.OutcomeRejected
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return mandatemetrics.OutcomeConflict
	default:
		return mandatemetrics.OutcomeError
	}
}
