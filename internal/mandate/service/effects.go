package service

import (
	"context"

	"mandate/internal/mandate/lifecycle"
	"mandate/internal/mandate/models"
	"mandate/internal/notification"
	"mandate/pkg/platform/audit"
	"mandate/pkg/requestcontext"
)

const (
	effectNotification = "notification"
	effectDocument     = "document"
)

// recordEvents writes one audit record per lifecycle event. It runs inside
// the transaction of the status write, so a failed audit append rolls the
// transition back.
func (s *Service) recordEvents(ctx context.Context, from models.Status, res lifecycle.Result) error {
	for _, ev := range res.Events {
		if err := s.emitAudit(ctx, auditEventFor(ctx, from, ev, res.Mandate)); err != nil {
			return err
		}
	}
	return nil
}

func auditEventFor(ctx context.Context, from models.Status, ev lifecycle.Event, m models.Mandate) audit.Event {
	actorID, actorRole := actorAttrs(ctx, ev.Actor)
	out := audit.Event{
		Action:      string(ev.Kind),
		Subject:     m.ID.String(),
		SubjectType: audit.SubjectMandate,
		Reference:   m.ReferenceNumber,
		FromStatus:  string(from),
		ToStatus:    string(ev.Status),
		ActorID:     actorID,
		ActorRole:   actorRole,
		Timestamp:   ev.At,
	}
	if ev.Kind == lifecycle.EventRejected {
		out.Reason = m.RejectionReason
	}
	return out
}

func submitterUpdatedEvent(m models.Mandate, actor models.Actor) audit.Event {
	return audit.Event{
		Action:      string(audit.EventSubmitterUpdated),
		Subject:     m.ID.String(),
		SubjectType: audit.SubjectMandate,
		Reference:   m.ReferenceNumber,
		FromStatus:  string(m.Status),
		ToStatus:    string(m.Status),
		ActorID:     actor.ID.String(),
		ActorRole:   string(actor.Role),
		Timestamp:   m.UpdatedAt,
	}
}

// actorAttrs names who performed an event. System transitions such as
// document issuance fall back to the authenticated staff member, if any.
func actorAttrs(ctx context.Context, actor models.Actor) (string, string) {
	if !actor.IsAnonymous() {
		return actor.ID.String(), string(actor.Role)
	}
	if staffID := requestcontext.StaffID(ctx); !staffID.IsNil() {
		return staffID.String(), string(requestcontext.Role(ctx))
	}
	return "", ""
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"mandate_id", event.Subject,
		"reference_number", event.Reference,
		"from_status", event.FromStatus,
		"to_status", event.ToStatus,
		"actor_id", event.ActorID,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, event)
}

// afterCommit runs side effects of a committed transition. Failures are
// logged and counted; the transition already succeeded.
func (s *Service) afterCommit(ctx context.Context, res lifecycle.Result) {
	ctx = context.WithoutCancel(ctx)
	for _, ev := range res.Events {
		s.notify(ctx, notificationsFor(ev, res.Mandate))
		if ev.Kind == lifecycle.EventSuperAdminApproved && s.autoIssue && s.documents != nil {
			s.autoIssueDocument(ctx, res.Mandate)
		}
	}
}

func (s *Service) notify(ctx context.Context, batch []notification.Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range batch {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.sideEffectFailed(ctx, effectNotification, n.ReferenceNumber, err, "kind", string(n.Kind))
		}
	}
}

func (s *Service) autoIssueDocument(ctx context.Context, m models.Mandate) {
	if _, err := s.IssueDocument(ctx, m.ID, models.Actor{}); err != nil {
		s.sideEffectFailed(ctx, effectDocument, m.ReferenceNumber, err)
	}
}

func (s *Service) sideEffectFailed(ctx context.Context, effect, reference string, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.IncSideEffectFailure(effect)
	}
	args := append([]any{
		"effect", effect,
		"reference_number", reference,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}, attrs...)
	s.logger.ErrorContext(ctx, "mandate side effect failed", args...)
}

// notificationsFor maps a lifecycle event to the messages it triggers.
func notificationsFor(ev lifecycle.Event, m models.Mandate) []notification.Notification {
	base := notification.Notification{
		MandateID:       m.ID.String(),
		ReferenceNumber: m.ReferenceNumber,
		FullName:        m.Submitter.FullName(),
		Status:          string(m.Status),
		StatusLabel:     m.StatusLabel(),
		OccurredAt:      ev.At,
	}
	toSubmitter := func(kind notification.Kind) notification.Notification {
		n := base
		n.Kind = kind
		n.Audience = notification.AudienceSubmitter
		n.Recipient = m.Submitter.Email
		return n
	}
	toStaff := func(audience notification.Audience) notification.Notification {
		n := base
		n.Kind = notification.KindAdminAlert
		n.Audience = audience
		return n
	}

	switch ev.Kind {
	case lifecycle.EventSubmitted:
		return []notification.Notification{
			toSubmitter(notification.KindSubmissionConfirmed),
			toStaff(notification.AudienceAdmins),
		}
	case lifecycle.EventAdminApproved:
		return []notification.Notification{toStaff(notification.AudienceSuperAdmins)}
	case lifecycle.EventSuperAdminApproved:
		return []notification.Notification{toSubmitter(notification.KindApprovalGranted)}
	case lifecycle.EventRejected:
		n := toSubmitter(notification.KindRequestRejected)
		n.Reason = m.RejectionReason
		return []notification.Notification{n}
	default:
		return nil
	}
}
