// Package memory persists agent notes across sessions in a plain markdown
// scratchpad. The scratchpad doubles as part of the system prompt, so
// anything saved here shapes every future conversation.
package memory

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileName is the scratchpad location relative to the working root.
const DefaultFileName = ".nanoagent/memory.md"

// defaultContent seeds a fresh scratchpad.
const defaultContent = `# Memory

Notes saved by the agent for future sessions.
`

// Scratchpad is a file-backed note store the model curates itself: every
// save replaces the whole file, so the model can prune stale notes as well
// as add new ones. Safe for concurrent use, though the agent loop drives it
// from a single goroutine.
type Scratchpad struct {
	mu   sync.Mutex
	path string
}

// NewScratchpad creates a scratchpad rooted at the given working directory.
// The backing file is created lazily on first save.
func NewScratchpad(root string) *Scratchpad {
	return &Scratchpad{path: filepath.Join(root, DefaultFileName)}
}

// Path returns the scratchpad file location.
func (s *Scratchpad) Path() string { return s.path }

// Load returns the scratchpad contents, or the seed content when no file
// exists yet. Never fails the caller: an unreadable scratchpad degrades to
// the default rather than blocking startup.
func (s *Scratchpad) Load() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return defaultContent
	}
	return string(data)
}

// Save replaces the scratchpad contents wholesale, writing atomically via a
// temp file and rename so a crash never leaves a torn scratchpad.
func (s *Scratchpad) Save(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "memory-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
