// Package service orchestrates the mandate lifecycle: it loads a mandate,
// asks internal/mandate/lifecycle for the successor value, persists it with a
// conditional write, and only then fires notifications and document work.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	mandatemetrics "mandate/internal/mandate/metrics"
	"mandate/internal/mandate/models"
	"mandate/internal/mandate/refnum"
	"mandate/internal/notification"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/tx"
)

const (
	tracerName = "mandate/internal/mandate/service"

	// DefaultReferenceAttempts bounds how many reference numbers Submit
	// tries before reporting duplicate_reference.
	DefaultReferenceAttempts = 3

	// maxTransitionAttempts bounds reload-and-retry after a lost conditional
	// write. The second pass normally ends in invalid_transition.
	maxTransitionAttempts = 3
)

// Store persists mandates. UpdateIfStatus must only write when the stored
// status still equals expected, returning sentinel.ErrInvalidState otherwise.
type Store interface {
	Create(ctx context.Context, m models.Mandate) error
	FindByID(ctx context.Context, mandateID id.MandateID) (models.Mandate, error)
	FindByReference(ctx context.Context, reference string) (models.Mandate, error)
	UpdateIfStatus(ctx context.Context, m models.Mandate, expected models.Status) error
	List(ctx context.Context, filter models.Filter) (models.Page, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

type ReferenceGenerator interface {
	Generate(now time.Time) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

// Documents renders mandate PDFs and drops cached renderings.
type Documents interface {
	Render(ctx context.Context, m models.Mandate) ([]byte, error)
	Invalidate(ctx context.Context, reference string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// Service is the mandate workflow entry point used by HTTP handlers.
type Service struct {
	mandates          Store
	refs              ReferenceGenerator
	notifier          Notifier
	documents         Documents
	auditPublisher    AuditPublisher
	tx                tx.Runner
	logger            *slog.Logger
	metrics           *mandatemetrics.Metrics
	tracer            trace.Tracer
	autoIssue         bool
	referenceAttempts int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *mandatemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithDocuments(d Documents) Option {
	return func(s *Service) {
		s.documents = d
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithTxRunner makes the status write and its audit records one unit of
// work. Use tx.NewSQLRunner with the Postgres stores.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithReferenceGenerator(g ReferenceGenerator) Option {
	return func(s *Service) {
		s.refs = g
	}
}

// WithAutoIssue issues the document right after final approval.
func WithAutoIssue(enabled bool) Option {
	return func(s *Service) {
		s.autoIssue = enabled
	}
}

// WithReferenceAttempts sets how many reference numbers Submit tries.
// Values below one are ignored.
func WithReferenceAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.referenceAttempts = n
		}
	}
}

// New constructs a Service. Only the store is required.
func New(mandates Store, opts ...Option) (*Service, error) {
	if mandates == nil {
		return nil, errors.New("mandate store is required")
	}
	s := &Service{
		mandates:          mandates,
		refs:              refnum.New(refnum.DefaultPrefix),
		tx:                tx.NoopRunner{},
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:            otel.Tracer(tracerName),
		referenceAttempts: DefaultReferenceAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
