package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,ReferenceGenerator,Notifier,Documents,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mandatemetrics "mandate/internal/mandate/metrics"
	"mandate/internal/mandate/models"
	"mandate/internal/mandate/service/mocks"
	"mandate/internal/notification"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/requestcontext"
)

// =============================================================================
// Mandate Service Test Suite
// =============================================================================
// Justification for unit tests: the service owns error translation, the
// reload-after-lost-race loop, reference retries and the rule that side
// effects never fail a committed transition. Store behavior is covered by
// the store suites.

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockStore     *mocks.MockStore
	mockRefs      *mocks.MockReferenceGenerator
	mockNotifier  *mocks.MockNotifier
	mockDocuments *mocks.MockDocuments
	mockAudit     *mocks.MockAuditPublisher
	metrics       *mandatemetrics.Metrics
	service       *Service
	ctx           context.Context
	now           time.Time
	admin         models.Actor
	superAdmin    models.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockRefs = mocks.NewMockReferenceGenerator(s.ctrl)
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	s.mockDocuments = mocks.NewMockDocuments(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = mandatemetrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.admin = models.Actor{ID: id.NewStaffID(), Role: id.RoleAdmin}
	s.superAdmin = models.Actor{ID: id.NewStaffID(), Role: id.RoleSuperAdmin}

	var err error
	s.service, err = New(s.mockStore,
		WithReferenceGenerator(s.mockRefs),
		WithNotifier(s.mockNotifier),
		WithDocuments(s.mockDocuments),
		WithAuditPublisher(s.mockAudit),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) pending() models.Mandate {
	return models.Mandate{
		ID:              id.NewMandateID(),
		ReferenceNumber: "MDT-000123-ABCDEF",
		Status:          models.StatusPendingValidation,
		Submitter: models.SubmitterData{
			LastName:  "KOUASSI",
			FirstName: "Jean",
			Email:     "jean.kouassi@example.ci",
		},
		CreatedAt: s.now.Add(-time.Hour),
		UpdatedAt: s.now.Add(-time.Hour),
	}
}

func (s *ServiceSuite) adminApproved() models.Mandate {
	m := s.pending()
	at := s.now.Add(-30 * time.Minute)
	approver := s.admin.ID
	m.Status = models.StatusAdminApproved
	m.AdminApprovedAt = &at
	m.AdminApproverID = &approver
	return m
}

func validSubmitter() models.SubmitterData {
	return models.SubmitterData{
		LastName:     "KOUASSI",
		FirstName:    "Jean",
		Function:     "Delegate",
		Email:        "Jean.Kouassi@Example.ci",
		Constituency: "Abidjan-Sud",
	}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "mandate store is required")
	})

	s.Run("defaults are usable", func() {
		svc, err := New(s.mockStore)
		s.Require().NoError(err)
		s.NotNil(svc.refs)
		s.NotNil(svc.tx)
		s.Equal(DefaultReferenceAttempts, svc.referenceAttempts)
		s.False(svc.autoIssue)
	})

	s.Run("non-positive reference attempts are ignored", func() {
		svc, err := New(s.mockStore, WithReferenceAttempts(0))
		s.Require().NoError(err)
		s.Equal(DefaultReferenceAttempts, svc.referenceAttempts)
	})
}

// =============================================================================
// Submit
// =============================================================================

func (s *ServiceSuite) TestSubmit() {
	s.Run("stores a pending request and notifies submitter and admins", func() {
		s.mockRefs.EXPECT().Generate(s.now).Return("MDT-482913-K7Q2ZD", nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m models.Mandate) error {
				s.Equal(models.StatusPendingValidation, m.Status)
				s.Equal("MDT-482913-K7Q2ZD", m.ReferenceNumber)
				s.Equal("jean.kouassi@example.ci", m.Submitter.Email)
				return nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventMandateSubmitted), e.Action)
				s.Equal(string(models.StatusPendingValidation), e.ToStatus)
				s.Empty(e.FromStatus)
				return nil
			})
		var sent []notification.Notification
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n notification.Notification) error {
				sent = append(sent, n)
				return nil
			}).Times(2)

		m, err := s.service.Submit(s.ctx, validSubmitter())
		s.Require().NoError(err)
		s.Equal(models.StatusPendingValidation, m.Status)
		s.Equal(s.now, m.CreatedAt)
		s.Require().Len(sent, 2)
		s.Equal(notification.KindSubmissionConfirmed, sent[0].Kind)
		s.Equal("jean.kouassi@example.ci", sent[0].Recipient)
		s.Equal(notification.KindAdminAlert, sent[1].Kind)
		s.Equal(notification.AudienceAdmins, sent[1].Audience)
	})

	s.Run("missing fields are a validation error and nothing is stored", func() {
		s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-482913-K7Q2ZD", nil)

		_, err := s.service.Submit(s.ctx, models.SubmitterData{FirstName: "Jean"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "last_name")
		s.Contains(err.Error(), "email")
	})

	s.Run("reference collision draws a new number", func() {
		gomock.InOrder(
			s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-000001-AAAAAA", nil),
			s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-000001-BBBBBB", nil),
		)
		gomock.InOrder(
			s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed),
			s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		m, err := s.service.Submit(s.ctx, validSubmitter())
		s.Require().NoError(err)
		s.Equal("MDT-000001-BBBBBB", m.ReferenceNumber)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ReferenceCollisions))
	})

	s.Run("exhausted attempts surface duplicate reference", func() {
		s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-000001-AAAAAA", nil).Times(DefaultReferenceAttempts)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed).Times(DefaultReferenceAttempts)

		_, err := s.service.Submit(s.ctx, validSubmitter())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateReference))
	})

	s.Run("notification failure does not fail the submission", func() {
		s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-000002-CCCCCC", nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(2)

		m, err := s.service.Submit(s.ctx, validSubmitter())
		s.Require().NoError(err)
		s.Equal("MDT-000002-CCCCCC", m.ReferenceNumber)
		s.GreaterOrEqual(testutil.ToFloat64(s.metrics.SideEffectFailures.WithLabelValues(effectNotification)), 2.0)
	})

	s.Run("audit failure aborts without notifications", func() {
		s.mockRefs.EXPECT().Generate(gomock.Any()).Return("MDT-000003-DDDDDD", nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox unavailable"))

		_, err := s.service.Submit(s.ctx, validSubmitter())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// =============================================================================
// Transitions
// =============================================================================

func (s *ServiceSuite) TestApproveByAdmin() {
	s.Run("approves a pending request", func() {
		current := s.pending()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusPendingValidation).DoAndReturn(
			func(_ context.Context, m models.Mandate, _ models.Status) error {
				s.Equal(models.StatusAdminApproved, m.Status)
				s.Equal(s.admin.ID, *m.AdminApproverID)
				return nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventMandateAdminApproved), e.Action)
				s.Equal(s.admin.ID.String(), e.ActorID)
				s.Equal(string(id.RoleAdmin), e.ActorRole)
				return nil
			})
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n notification.Notification) error {
				s.Equal(notification.KindAdminAlert, n.Kind)
				s.Equal(notification.AudienceSuperAdmins, n.Audience)
				return nil
			})

		m, err := s.service.ApproveByAdmin(s.ctx, current.ID, s.admin)
		s.Require().NoError(err)
		s.Equal(models.StatusAdminApproved, m.Status)
		s.Equal(s.now, *m.AdminApprovedAt)
	})

	s.Run("unknown mandate is not found", func() {
		mandateID := id.NewMandateID()
		s.mockStore.EXPECT().FindByID(gomock.Any(), mandateID).Return(models.Mandate{}, sentinel.ErrNotFound)

		_, err := s.service.ApproveByAdmin(s.ctx, mandateID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("nil id is a bad request", func() {
		_, err := s.service.ApproveByAdmin(s.ctx, id.MandateID{}, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("already approved is an invalid transition", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		rejected := s.metrics.TransitionsTotal.WithLabelValues("approve_by_admin", mandatemetrics.OutcomeRejected)
		before := testutil.ToFloat64(rejected)

		_, err := s.service.ApproveByAdmin(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(before+1, testutil.ToFloat64(rejected))
	})

	s.Run("losing a write race re-evaluates against the winner", func() {
		current := s.pending()
		winner := current.Clone()
		winner.Status = models.StatusRejected
		gomock.InOrder(
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil),
			s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusPendingValidation).Return(sentinel.ErrInvalidState),
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(winner, nil),
		)

		_, err := s.service.ApproveByAdmin(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("store failure is internal", func() {
		current := s.pending()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.ApproveByAdmin(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestApproveBySuperAdmin() {
	s.Run("admin cannot grant final approval", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := s.service.ApproveBySuperAdmin(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Contains(err.Error(), "insufficient authority")
	})

	s.Run("final approval notifies the submitter", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n notification.Notification) error {
				s.Equal(notification.KindApprovalGranted, n.Kind)
				s.Equal(current.Submitter.Email, n.Recipient)
				return nil
			})

		m, err := s.service.ApproveBySuperAdmin(s.ctx, current.ID, s.superAdmin)
		s.Require().NoError(err)
		s.Equal(models.StatusSuperAdminApproved, m.Status)
		s.Equal(s.superAdmin.ID, *m.SuperAdminApproverID)
		s.False(m.PdfIssued)
	})

	s.Run("auto issue renders and records the document", func() {
		s.service.autoIssue = true
		defer func() { s.service.autoIssue = false }()

		current := s.adminApproved()
		approved := current.Clone()
		approved.Status = models.StatusSuperAdminApproved

		gomock.InOrder(
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil),
			s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).Return(nil),
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(approved, nil),
			s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusSuperAdminApproved).DoAndReturn(
				func(_ context.Context, m models.Mandate, _ models.Status) error {
					s.True(m.PdfIssued)
					s.NotNil(m.PdfIssuedAt)
					return nil
				}),
		)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
		s.mockDocuments.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF-1.3"), nil)

		_, err := s.service.ApproveBySuperAdmin(s.ctx, current.ID, s.superAdmin)
		s.Require().NoError(err)
	})

	s.Run("auto issue failure keeps the approval", func() {
		s.service.autoIssue = true
		defer func() { s.service.autoIssue = false }()

		current := s.adminApproved()
		approved := current.Clone()
		approved.Status = models.StatusSuperAdminApproved

		gomock.InOrder(
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil),
			s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).Return(nil),
			s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(approved, nil),
		)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
		s.mockDocuments.EXPECT().Render(gomock.Any(), gomock.Any()).Return(nil, errors.New("font missing"))

		m, err := s.service.ApproveBySuperAdmin(s.ctx, current.ID, s.superAdmin)
		s.Require().NoError(err)
		s.Equal(models.StatusSuperAdminApproved, m.Status)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SideEffectFailures.WithLabelValues(effectDocument)))
	})
}

func (s *ServiceSuite) TestReject() {
	s.Run("rejection records reason and notifies submitter", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventMandateRejected), e.Action)
				s.Equal("Incomplete file", e.Reason)
				s.Equal(string(models.StatusAdminApproved), e.FromStatus)
				return nil
			})
		s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n notification.Notification) error {
				s.Equal(notification.KindRequestRejected, n.Kind)
				s.Equal("Incomplete file", n.Reason)
				return nil
			})

		m, err := s.service.Reject(s.ctx, current.ID, s.superAdmin, "  Incomplete file ")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, m.Status)
		s.Equal(s.superAdmin.ID, *m.RejectedByID)
	})

	s.Run("empty reason is a validation error", func() {
		current := s.pending()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := s.service.Reject(s.ctx, current.ID, s.admin, "   ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("final approval cannot be rejected", func() {
		current := s.adminApproved()
		current.Status = models.StatusSuperAdminApproved
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := s.service.Reject(s.ctx, current.ID, s.superAdmin, "too late")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ServiceSuite) TestIssueDocument() {
	s.Run("pending request has no document", func() {
		current := s.pending()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := s.service.IssueDocument(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("render failure leaves the mandate untouched", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockDocuments.EXPECT().Render(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.IssueDocument(s.ctx, current.ID, s.admin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("issues a provisional document for an admin-approved request", func() {
		ctx := requestcontext.WithStaff(s.ctx, s.admin.ID, s.admin.Role)
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockDocuments.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF-1.3"), nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventMandatePdfIssued), e.Action)
				s.Equal(s.admin.ID.String(), e.ActorID)
				return nil
			})

		doc, err := s.service.IssueDocument(ctx, current.ID, s.admin)
		s.Require().NoError(err)
		s.Equal("mandate-MDT-000123-ABCDEF.pdf", doc.Filename)
		s.Equal([]byte("%PDF-1.3"), doc.Content)
	})
}

// =============================================================================
// Submitter corrections
// =============================================================================

func (s *ServiceSuite) TestUpdateSubmitter() {
	s.Run("anonymous actor is forbidden", func() {
		_, err := s.service.UpdateSubmitter(s.ctx, id.NewMandateID(), models.Actor{}, validSubmitter())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid data is rejected before loading", func() {
		_, err := s.service.UpdateSubmitter(s.ctx, id.NewMandateID(), s.admin, models.SubmitterData{LastName: "X"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("decided requests can no longer be edited", func() {
		current := s.pending()
		current.Status = models.StatusRejected
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := s.service.UpdateSubmitter(s.ctx, current.ID, s.admin, validSubmitter())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("correction keeps status and reference and drops cached documents", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusAdminApproved).DoAndReturn(
			func(_ context.Context, m models.Mandate, _ models.Status) error {
				s.Equal(current.ReferenceNumber, m.ReferenceNumber)
				s.Equal(models.StatusAdminApproved, m.Status)
				s.Equal("Abidjan-Sud", m.Submitter.Constituency)
				return nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventSubmitterUpdated), e.Action)
				return nil
			})
		s.mockDocuments.EXPECT().Invalidate(gomock.Any(), current.ReferenceNumber)

		m, err := s.service.UpdateSubmitter(s.ctx, current.ID, s.admin, validSubmitter())
		s.Require().NoError(err)
		s.Equal("jean.kouassi@example.ci", m.Submitter.Email)
		s.Equal(*current.AdminApprovedAt, *m.AdminApprovedAt)
	})
}

// =============================================================================
// Queries
// =============================================================================

func (s *ServiceSuite) TestQueries() {
	s.Run("track normalizes the reference", func() {
		current := s.adminApproved()
		s.mockStore.EXPECT().FindByReference(gomock.Any(), "MDT-000123-ABCDEF").Return(current, nil)

		t, err := s.service.Track(s.ctx, " mdt-000123-abcdef ")
		s.Require().NoError(err)
		s.Equal(2, t.ApprovalLevel)
		s.Equal(models.StatusAdminApproved.Label(), t.StatusLabel)
		s.False(t.DocumentAvailable)
	})

	s.Run("track of unknown reference is not found", func() {
		s.mockStore.EXPECT().FindByReference(gomock.Any(), gomock.Any()).Return(models.Mandate{}, sentinel.ErrNotFound)

		_, err := s.service.Track(s.ctx, "MDT-000000-ZZZZZZ")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty reference is a bad request", func() {
		_, err := s.service.Track(s.ctx, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("malformed reference is not found without a lookup", func() {
		for _, ref := range []string{"MDT-1", "MDT-000123-ABCDE", "' OR 1=1 --", "MDT_000123_ABCDEF"} {
			_, err := s.service.Track(s.ctx, ref)
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound), ref)
			_, err = s.service.PublicDocument(s.ctx, ref)
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound), ref)
		}
	})

	s.Run("list clamps paging before querying", func() {
		s.mockStore.EXPECT().List(gomock.Any(), models.Filter{Limit: models.MaxPageSize}).Return(models.Page{Total: 0}, nil)

		_, err := s.service.List(s.ctx, models.Filter{Limit: 5000, Offset: -3})
		s.Require().NoError(err)
	})

	s.Run("dashboard totals pending work", func() {
		s.mockStore.EXPECT().CountByStatus(gomock.Any()).Return(models.StatusCounts{
			models.StatusPendingValidation:  4,
			models.StatusAdminApproved:      2,
			models.StatusSuperAdminApproved: 7,
			models.StatusRejected:           1,
		}, nil)

		d, err := s.service.Dashboard(s.ctx)
		s.Require().NoError(err)
		s.Equal(14, d.Total)
		s.Equal(6, d.Pending)
	})

	s.Run("public document requires final approval", func() {
		s.mockStore.EXPECT().FindByReference(gomock.Any(), gomock.Any()).Return(s.adminApproved(), nil)

		_, err := s.service.PublicDocument(s.ctx, "MDT-000123-ABCDEF")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("history checks the mandate exists", func() {
		mandateID := id.NewMandateID()
		s.mockStore.EXPECT().FindByID(gomock.Any(), mandateID).Return(models.Mandate{}, sentinel.ErrNotFound)

		_, err := s.service.History(s.ctx, mandateID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
