// Package session persists conversation transcripts so a run can be resumed
// later. The store interface is deliberately small; implementations range
// from a volatile map for tests to durable files on disk.
package session

import (
	"errors"
	"time"

	"github.com/hupe1980/nanoagent/core"
)

// ErrNotFound is returned when loading a session that does not exist.
var ErrNotFound = errors.New("session not found")

// Session is a resumable conversation transcript.
type Session struct {
	ID       string         `json:"id"`
	Messages []core.Message `json:"messages"`
	Created  time.Time      `json:"created"`
	Updated  time.Time      `json:"updated"`
}

// NewSession creates an empty session with the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Created: now, Updated: now}
}

// Clone returns a deep enough copy that callers can mutate the message slice
// without affecting stored state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = make([]core.Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}

// Store abstracts session persistence.
type Store interface {
	// Load returns the session with the given id, or ErrNotFound.
	Load(id string) (*Session, error)

	// Save persists a snapshot of the session.
	Save(s *Session) error

	// List returns the known session ids, sorted.
	List() ([]string, error)
}
