package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchpadLoadDefault(t *testing.T) {
	s := NewScratchpad(t.TempDir())

	content := s.Load()
	assert.Contains(t, content, "# Memory")
}

func TestScratchpadSaveReplacesContent(t *testing.T) {
	root := t.TempDir()
	s := NewScratchpad(root)

	require.NoError(t, s.Save("# Memory\n\n- user prefers tabs\n"))
	require.NoError(t, s.Save("# Memory\n\n- project uses make\n"))

	// the second save replaces the first so the model can prune notes
	content := s.Load()
	assert.Contains(t, content, "project uses make")
	assert.NotContains(t, content, "user prefers tabs")

	// file lives under the working root
	_, err := os.Stat(filepath.Join(root, DefaultFileName))
	assert.NoError(t, err)
}

func TestScratchpadSaveIsAtomic(t *testing.T) {
	root := t.TempDir()
	s := NewScratchpad(root)
	require.NoError(t, s.Save("notes"))

	dir := filepath.Dir(s.Path())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.md", entries[0].Name())
}
