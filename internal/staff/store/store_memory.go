// Package store persists staff accounts. Emails are stored lower-cased and
// are unique.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"mandate/internal/staff/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.StaffID]models.Account
	byEmail map[string]id.StaffID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.StaffID]models.Account),
		byEmail: make(map[string]id.StaffID),
	}
}

// Create inserts a new account. A taken email yields sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) Create(_ context.Context, a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[a.Email]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.byID[a.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[a.ID] = a
	s.byEmail[a.Email] = a.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, staffID id.StaffID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[staffID]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	return a, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staffID, ok := s.byEmail[email]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	return s.byID[staffID], nil
}

func (s *InMemoryStore) RecordLogin(_ context.Context, staffID id.StaffID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[staffID]
	if !ok {
		return sentinel.ErrNotFound
	}
	a.LastLoginAt = &at
	a.UpdatedAt = at
	s.byID[staffID] = a
	return nil
}

// CountByRole reports how many active accounts hold role.
func (s *InMemoryStore) CountByRole(_ context.Context, role id.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.byID {
		if a.Role == role && a.Active {
			n++
		}
	}
	return n, nil
}

// List returns every account ordered by email.
func (s *InMemoryStore) List(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b models.Account) int { return strings.Compare(a.Email, b.Email) })
	return out, nil
}
