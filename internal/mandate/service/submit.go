package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mandate/internal/mandate/lifecycle"
	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/requestcontext"
)

// Submit validates the public form, allocates a reference number and stores
// the request in pending_validation. A reference collision draws a new
// number; after the configured attempts it surfaces as duplicate_reference.
func (s *Service) Submit(ctx context.Context, data models.SubmitterData) (_ *models.Mandate, err error) {
	ctx, span := s.tracer.Start(ctx, "mandate.submit")
	start := time.Now()
	defer func() {
		s.observe("submit", start)
		s.incTransition(lifecycle.TransitionSubmit, err)
		endSpan(span, err)
	}()

	now := requestcontext.Now(ctx)
	for attempt := 1; ; attempt++ {
		reference, err := s.refs.Generate(now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reference number")
		}

		res, err := lifecycle.Submit(lifecycle.SubmitInput{
			ID:              id.NewMandateID(),
			ReferenceNumber: reference,
			Submitter:       data,
		}, now)
		if err != nil {
			return nil, err
		}

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.mandates.Create(txCtx, res.Mandate); err != nil {
				return err
			}
			return s.recordEvents(txCtx, "", res)
		})
		if err == nil {
			span.SetAttributes(
				attribute.String("mandate.id", res.Mandate.ID.String()),
				attribute.String("mandate.reference", reference),
			)
			if s.metrics != nil {
				s.metrics.IncSubmission()
			}
			s.afterCommit(ctx, res)
			return &res.Mandate, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create mandate")
		}

		if s.metrics != nil {
			s.metrics.IncReferenceCollision()
		}
		s.logger.WarnContext(ctx, "reference number collision",
			"reference_number", reference,
			"attempt", attempt,
		)
		if attempt >= s.referenceAttempts {
			return nil, dErrors.Wrap(err, dErrors.CodeDuplicateReference, "could not allocate a unique reference number")
		}
	}
}
