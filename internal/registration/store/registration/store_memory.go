// Package registration persists completed registrations. Both stores are
// idempotent per wizard session, so a manual resubmit after a lost response
// never stores a duplicate.
package registration

import (
	"context"
	"slices"
	"sync"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
)

// InMemoryStore keeps registrations in submission order.
type InMemoryStore struct {
	mu        sync.RWMutex
	records   []*models.Registration
	bySession map[id.SessionID]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{bySession: make(map[id.SessionID]struct{})}
}

// Submit stores reg unless its session already has a registration.
func (s *InMemoryStore) Submit(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.bySession[reg.SessionID]; dup {
		return nil
	}
	c := *reg
	c.Answers = reg.Answers.Clone()
	s.records = append(s.records, &c)
	s.bySession[reg.SessionID] = struct{}{}
	return nil
}

// List returns registrations newest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Registration, 0, len(s.records))
	for _, r := range slices.Backward(s.records) {
		c := *r
		c.Answers = r.Answers.Clone()
		out = append(out, &c)
	}
	return out, nil
}
