package document

import (
	"context"
	"log/slog"
	"time"

	"mandate/internal/mandate/models"
)

// Renderer produces document bytes for a mandate.
type Renderer interface {
	Render(ctx context.Context, m models.Mandate) ([]byte, error)
}

// Cache is optional; a failing cache degrades to rendering every time.
type Cache interface {
	Get(ctx context.Context, reference string, status models.Status) ([]byte, bool, error)
	Set(ctx context.Context, reference string, status models.Status, data []byte) error
	Invalidate(ctx context.Context, reference string) error
}

// Service renders through the cache.
type Service struct {
	renderer Renderer
	cache    Cache
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(renderer Renderer, opts ...Option) *Service {
	s := &Service{renderer: renderer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render satisfies Renderer, consulting the cache first.
func (s *Service) Render(ctx context.Context, m models.Mandate) ([]byte, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, m.ReferenceNumber, m.Status)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "document cache read failed",
				"reference_number", m.ReferenceNumber,
				"error", err,
			)
		case ok:
			s.observeCache("hit")
			return data, nil
		default:
			s.observeCache("miss")
		}
	}

	start := time.Now()
	data, err := s.renderer.Render(ctx, m)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveRender(start)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, m.ReferenceNumber, m.Status, data); err != nil {
			s.logger.WarnContext(ctx, "document cache write failed",
				"reference_number", m.ReferenceNumber,
				"error", err,
			)
		}
	}
	return data, nil
}

// Invalidate drops cached renderings after submitter data changed.
func (s *Service) Invalidate(ctx context.Context, reference string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, reference); err != nil {
		s.logger.WarnContext(ctx, "document cache invalidation failed",
			"reference_number", reference,
			"error", err,
		)
	}
}

func (s *Service) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.IncCache(result)
	}
}
