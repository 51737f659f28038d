package session

import (
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store implementation keeping sessions in a
// process local map. Safe for concurrent access and best suited for tests.
// Each returned session is cloned to prevent external mutation of internal
// state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Load returns a clone of the stored session or ErrNotFound.
func (s *InMemoryStore) Load(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// Save stores a clone of the provided session snapshot.
func (s *InMemoryStore) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess.Clone()
	cp.Updated = time.Now().UTC()
	s.sessions[sess.ID] = cp
	return nil
}

// List returns the stored session ids in sorted order.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
