package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/nanoagent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	sess := NewSession("s1")
	sess.Messages = append(sess.Messages, core.NewTextMessage(core.RoleUser, "hello"))
	require.NoError(t, store.Save(sess))

	// mutating the original must not affect the stored snapshot
	sess.Messages = append(sess.Messages, core.NewTextMessage(core.RoleAssistant, "hi"))

	loaded, err := store.Load("s1")
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 1)
	assert.Equal(t, "hello", loaded.Messages[0].Text())

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	sess := NewSession("s1")
	sess.Messages = append(sess.Messages,
		core.NewTextMessage(core.RoleUser, "ship it"),
		core.Message{Role: core.RoleAssistant, Parts: []core.Part{
			core.TextPart{Text: "on it"},
			core.ToolCallPart{ToolCall: core.ToolCall{ID: "c1", Name: "run_command", Arguments: `{"command":"make"}`}},
		}},
		core.NewToolResultMessage(core.ToolResult{CallID: "c1", Name: "run_command", Output: "ok"}),
	)
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load("s1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 3)
	assert.Equal(t, "ship it", loaded.Messages[0].Text())

	calls := loaded.Messages[1].ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "run_command", calls[0].Name)

	results := loaded.Messages[2].ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].CallID)
}

func TestFileStoreListAndNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(NewSession("b")))
	require.NoError(t, store.Save(NewSession("a")))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStoreIgnoresLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(NewSession("s1")))
	// simulate a crash that left a half-written temp file behind
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-123.tmp"), []byte("{trunc"), 0o644))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(NewSession("s1")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())
	assert.Equal(t, filepath.Ext(entries[0].Name()), ".json")
}
