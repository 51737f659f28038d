package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/nanoagent/internal/util"
)

// FuncTool is a generic adapter that exposes a plain Go function as a tool.
//
// It validates model supplied arguments against a JSON-Schema-like parameter
// specification before execution and normalizes error handling so callers
// receive *ToolError with consistent codes:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> the wrapped function returned an error (non-ToolError)
//	(custom codes preserved if the function returns *ToolError directly)
//
// A FuncTool has no mutable state after construction and is safe for
// concurrent use.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, tc *Context, args map[string]any) (any, error)
}

// NewFuncTool constructs a FuncTool from an explicit schema and function.
//
// Example:
//
//	sumTool := NewFuncTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFuncTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, tc *Context, args map[string]any) (any, error),
) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFuncToolFromStruct derives the parameter schema from a struct using
// reflection, equivalent to util.CreateSchema(structType).
func NewFuncToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, tc *Context, args map[string]any) (any, error),
) *FuncTool {
	return NewFuncTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FuncTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FuncTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FuncTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
func (t *FuncTool) Call(ctx context.Context, tc *Context, args map[string]any) (any, error) {
	logger := tc.Logger

	logger.Debug("tool.call.start", "tool", t.name, "call_id", tc.CallID)

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(ctx, tc, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return result, nil
}
