package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	audit "mandate/pkg/platform/audit"
)

// InMemoryStore keeps audit events in append order. Relay methods let the
// outbox worker run against it in development.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	processed map[uuid.UUID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{processed: make(map[uuid.UUID]bool)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	s.events = append(s.events, event)
	return nil
}

// ListBySubject returns events for subject, most recent first.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

func (s *InMemoryStore) FetchPending(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Record
	for _, e := range s.events {
		if s.processed[e.ID] {
			continue
		}
		out = append(out, audit.Record{ID: e.ID, Event: e, CreatedAt: e.Timestamp})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkProcessed(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, recordID := range ids {
		s.processed[recordID] = true
	}
	return nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.processed = make(map[uuid.UUID]bool)
}
