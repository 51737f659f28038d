// Package tool implements the function calling subsystem that lets the agent
// invoke structured capabilities (file access, command execution, memory) with
// schema validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/nanoagent/internal/util"
	"github.com/hupe1980/nanoagent/logging"
)

// Mode gates side-effecting tools. In plan mode the agent may read and search
// but not write, edit, or run commands, with PLAN.md as the single exception
// so it can record its plan.
type Mode string

const (
	ModePlan Mode = "plan"
	ModeAct  Mode = "act"
)

// MemoryWriter persists notes across sessions. Save replaces the stored
// contents wholesale so the model can prune as well as add. Implemented by
// the memory scratchpad and injected into the context so tools stay
// storage-agnostic.
type MemoryWriter interface {
	Save(content string) error
}

// Context carries per-dispatch state into tool implementations.
type Context struct {
	// Mode is the current plan/act mode.
	Mode Mode
	// Root is the working directory all file paths are resolved against.
	Root string
	// Memory receives save_memory entries. May be nil.
	Memory MemoryWriter
	// CallID correlates model request and tool execution in logs.
	CallID string
	// Logger is never nil; the registry substitutes a no-op logger.
	Logger logging.Logger
}

// Tool defines the interface for extending the agent with callable functions.
//
// Tool implementations should:
//   - Provide clear, descriptive snake_case names
//   - Define a JSON schema for parameters
//   - Return errors rather than panicking
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-validated arguments. The returned
	// value is rendered to text before being fed back to the model.
	Call(ctx context.Context, tc *Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
