package session

import (
	"context"
	"sync"
	"time"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	"artemiz/pkg/platform/sentinel"
)

type entry struct {
	wizard    *models.Wizard
	expiresAt time.Time
}

// InMemoryStore keeps wizards in a map guarded by a mutex. Entries expire
// ttl after their last write.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[id.SessionID]entry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// NewInMemory creates an in-memory session store.
func NewInMemory(ttl time.Duration, opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.SessionID]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, w *models.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(w.ID); ok {
		return sentinel.ErrConflict
	}
	s.entries[w.ID] = entry{wizard: w.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(sessionID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.wizard.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, sessionID id.SessionID, fn UpdateFunc) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(sessionID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	w := e.wizard.Clone()
	if err := fn(w); err != nil {
		return nil, err
	}
	s.entries[sessionID] = entry{wizard: w, expiresAt: s.now().Add(s.ttl)}
	return w.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(sessionID); !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, sessionID)
	return nil
}

// live returns the entry when present and unexpired. Expired entries are
// dropped. Callers hold mu.
func (s *InMemoryStore) live(sessionID id.SessionID) (entry, bool) {
	e, ok := s.entries[sessionID]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return entry{}, false
	}
	return e, true
}
