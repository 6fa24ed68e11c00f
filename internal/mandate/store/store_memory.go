// Package store persists mandates. Both implementations return
// pkg/platform/sentinel errors and leave their meaning to the service.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"mandate/internal/mandate/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// InMemoryStore keeps mandates in a map guarded by a single mutex. Every
// method is atomic, including the compare-and-set in UpdateIfStatus.
type InMemoryStore struct {
	mu    sync.RWMutex
	byID  map[id.MandateID]models.Mandate
	byRef map[string]id.MandateID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:  make(map[id.MandateID]models.Mandate),
		byRef: make(map[string]id.MandateID),
	}
}

// Create inserts a new mandate. A reused reference number yields
// sentinel.ErrAlreadyUsed; a reused id yields sentinel.ErrConflict.
func (s *InMemoryStore) Create(_ context.Context, m models.Mandate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[m.ReferenceNumber]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.byID[m.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[m.ID] = m.Clone()
	s.byRef[m.ReferenceNumber] = m.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, mandateID id.MandateID) (models.Mandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[mandateID]
	if !ok {
		return models.Mandate{}, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *InMemoryStore) FindByReference(_ context.Context, reference string) (models.Mandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mandateID, ok := s.byRef[reference]
	if !ok {
		return models.Mandate{}, sentinel.ErrNotFound
	}
	return s.byID[mandateID].Clone(), nil
}

// UpdateIfStatus replaces the stored mandate only while its status still
// equals expected. A mismatch yields sentinel.ErrInvalidState. The stored
// reference number is kept whatever m carries.
func (s *InMemoryStore) UpdateIfStatus(_ context.Context, m models.Mandate, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[m.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	next := m.Clone()
	next.ReferenceNumber = current.ReferenceNumber
	next.CreatedAt = current.CreatedAt
	s.byID[m.ID] = next
	return nil
}

// List returns mandates newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.Filter) (models.Page, error) {
	filter.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.RLock()
	matched := make([]models.Mandate, 0, len(s.byID))
	for _, m := range s.byID {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, m.Status) {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		matched = append(matched, m.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b models.Mandate) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ReferenceNumber, b.ReferenceNumber)
	})

	page := models.Page{Total: len(matched), Items: []models.Mandate{}}
	if filter.Offset >= len(matched) {
		return page, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	page.Items = matched[filter.Offset:end]
	return page, nil
}

func matchesSearch(m models.Mandate, search string) bool {
	for _, field := range []string{
		m.ReferenceNumber,
		m.Submitter.LastName,
		m.Submitter.FirstName,
		m.Submitter.Email,
		m.Submitter.Constituency,
	} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// CountByStatus returns a count for every known status, zero included.
func (s *InMemoryStore) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(models.StatusCounts, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}
	for _, m := range s.byID {
		counts[m.Status]++
	}
	return counts, nil
}
