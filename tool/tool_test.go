package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/nanoagent/core"
	"github.com/hupe1980/nanoagent/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, mode Mode) *Context {
	t.Helper()
	return &Context{Mode: mode, Root: t.TempDir(), Logger: logging.NoOpLogger{}}
}

func TestFuncToolValidation(t *testing.T) {
	tool := NewFuncTool("echo", "Echo the input", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}, func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
		return args["text"], nil
	})

	tc := testContext(t, ModeAct)

	out, err := tool.Call(context.Background(), tc, map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = tool.Call(context.Background(), tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	_, err = tool.Call(context.Background(), tc, map[string]any{"text": 42})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFuncToolExecutionError(t *testing.T) {
	tool := NewFuncTool("boom", "Always fails", map[string]any{"type": "object"},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			return nil, errors.New("kaboom")
		})

	_, err := tool.Call(context.Background(), testContext(t, ModeAct), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "kaboom", toolErr.Message)
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	tool := NewReadFileTool()

	require.NoError(t, r.Register(tool))
	err := r.Register(tool)
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	r := NewRegistry()
	for _, tool := range Builtins() {
		require.NoError(t, r.Register(tool))
	}

	defs := r.Definitions()
	require.Len(t, defs, 7)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Name, defs[i].Name)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()

	res := r.Dispatch(context.Background(), core.ToolCall{ID: "c1", Name: "nope"}, testContext(t, ModeAct))
	assert.True(t, res.IsError)
	assert.Equal(t, "c1", res.CallID)
	assert.Contains(t, res.Output, "unknown tool")
}

func TestDispatchInvalidArguments(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewReadFileTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c2", Name: "read_file", Arguments: "{not json",
	}, testContext(t, ModeAct))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "invalid tool arguments")
}

func TestDispatchNullArgumentIsErrorResult(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewReadFileTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c2b", Name: "read_file", Arguments: `{"path":null}`,
	}, testContext(t, ModeAct))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "validation failed")
}

func TestDispatchTimeout(t *testing.T) {
	r := NewRegistry(func(o *RegistryOptions) { o.Timeout = 20 * time.Millisecond })
	slow := NewFuncTool("sleep", "Sleeps", map[string]any{"type": "object"},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return "done", nil
			}
		})
	require.NoError(t, r.Register(slow))

	res := r.Dispatch(context.Background(), core.ToolCall{ID: "c3", Name: "sleep", Arguments: "{}"}, testContext(t, ModeAct))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "timed out")
}

func TestReadFileNumbersLines(t *testing.T) {
	tc := testContext(t, ModeAct)
	require.NoError(t, os.WriteFile(filepath.Join(tc.Root, "a.txt"), []byte("one\ntwo"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.Register(NewReadFileTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c4", Name: "read_file", Arguments: `{"path":"a.txt"}`,
	}, tc)
	require.False(t, res.IsError, res.Output)
	assert.Contains(t, res.Output, "1 | one")
	assert.Contains(t, res.Output, "2 | two")
}

func TestWriteFileBlockedInPlanMode(t *testing.T) {
	tc := testContext(t, ModePlan)
	r := NewRegistry()
	require.NoError(t, r.Register(NewWriteFileTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c5", Name: "write_file", Arguments: `{"path":"a.txt","content":"x"}`,
	}, tc)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "plan mode")

	// PLAN.md is the one exception.
	res = r.Dispatch(context.Background(), core.ToolCall{
		ID: "c6", Name: "write_file", Arguments: `{"path":"PLAN.md","content":"steps"}`,
	}, tc)
	require.False(t, res.IsError, res.Output)

	data, err := os.ReadFile(filepath.Join(tc.Root, "PLAN.md"))
	require.NoError(t, err)
	assert.Equal(t, "steps", string(data))
}

func TestRunCommandBlockedInPlanMode(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewRunCommandTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c7", Name: "run_command", Arguments: `{"command":"true"}`,
	}, testContext(t, ModePlan))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "plan mode")
}

func TestEditFileReplacesExactString(t *testing.T) {
	tc := testContext(t, ModeAct)
	require.NoError(t, os.WriteFile(filepath.Join(tc.Root, "a.txt"), []byte("hello world"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.Register(NewEditFileTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c8", Name: "edit_file", Arguments: `{"path":"a.txt","old_string":"world","new_string":"go"}`,
	}, tc)
	require.False(t, res.IsError, res.Output)

	data, err := os.ReadFile(filepath.Join(tc.Root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello go", string(data))

	res = r.Dispatch(context.Background(), core.ToolCall{
		ID: "c9", Name: "edit_file", Arguments: `{"path":"a.txt","old_string":"missing","new_string":"x"}`,
	}, tc)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Output, "not found")
}

func TestSearchCodebase(t *testing.T) {
	tc := testContext(t, ModeAct)
	require.NoError(t, os.WriteFile(filepath.Join(tc.Root, "a.go"), []byte("package main\nfunc Hello() {}\n"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.Register(NewSearchCodebaseTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c10", Name: "search_codebase", Arguments: `{"query":"hello"}`,
	}, tc)
	require.False(t, res.IsError, res.Output)
	assert.Contains(t, res.Output, "a.go:2:")

	res = r.Dispatch(context.Background(), core.ToolCall{
		ID: "c11", Name: "search_codebase", Arguments: `{"query":"zzz-absent"}`,
	}, tc)
	require.False(t, res.IsError)
	assert.Equal(t, "No matches found", res.Output)
}

func TestResolvePathRejectsEscape(t *testing.T) {
	root := t.TempDir()

	_, err := resolvePath(root, "../outside.txt")
	assert.Error(t, err)

	_, err = resolvePath(root, "/etc/passwd")
	assert.Error(t, err)

	p, err := resolvePath(root, "sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "file.txt"), p)
}

type fakeMemory struct{ content string }

func (m *fakeMemory) Save(content string) error {
	m.content = content
	return nil
}

func TestSaveMemoryReplacesContent(t *testing.T) {
	mem := &fakeMemory{content: "- stale note"}
	tc := testContext(t, ModeAct)
	tc.Memory = mem

	r := NewRegistry()
	require.NoError(t, r.Register(NewSaveMemoryTool()))

	res := r.Dispatch(context.Background(), core.ToolCall{
		ID: "c12", Name: "save_memory", Arguments: `{"content":"- prefers tabs"}`,
	}, tc)
	require.False(t, res.IsError, res.Output)
	assert.Equal(t, "- prefers tabs", mem.content)
}
