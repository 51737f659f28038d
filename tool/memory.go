package tool

import (
	"context"
	"errors"
)

// NewSaveMemoryTool returns a tool that rewrites the persistent scratchpad.
// The model supplies the full contents each time, so it curates its own
// memory across sessions.
func NewSaveMemoryTool() *FuncTool {
	return NewFuncTool(
		"save_memory",
		"Replace the persistent memory file with the given content",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{"type": "string", "description": "Full memory contents; replaces what was stored before"},
			},
			"required": []string{"content"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			if tc.Memory == nil {
				return nil, errors.New("no memory store configured")
			}
			if err := tc.Memory.Save(args["content"].(string)); err != nil {
				return nil, err
			}
			return "Memory saved", nil
		},
	)
}

// Builtins returns the built-in tool set in registration order.
func Builtins() []Tool {
	return []Tool{
		NewReadFileTool(),
		NewWriteFileTool(),
		NewEditFileTool(),
		NewListFilesTool(),
		NewSearchCodebaseTool(),
		NewRunCommandTool(),
		NewSaveMemoryTool(),
	}
}
