package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
	"github.com/hupe1980/nanoagent/logging"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDuplicateTool signals a second registration under an existing name.
var ErrDuplicateTool = errors.New("tool already registered")

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// Timeout bounds a single dispatch. Zero disables the deadline.
	Timeout time.Duration
	Logger  logging.Logger
}

// Registry manages tool registration and dispatch.
//
// Dispatch never returns an error: every failure mode (unknown tool, invalid
// arguments, execution failure, timeout) is reported as a core.ToolResult
// with IsError set, so the model sees failures as data and can react.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	opts  RegistryOptions
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Timeout: 60 * time.Second,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Registry{tools: make(map[string]Tool), opts: opts}
}

// Register adds a tool to the registry. Registering a name twice is a
// programming error and is rejected.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// MustRegister registers a tool and panics on duplicate names. Intended for
// wiring up the built-in set at startup.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the declarations advertised to the model, sorted by
// name for a stable prompt.
func (r *Registry) Definitions() []brain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]brain.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, brain.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch routes a model-issued tool call to its implementation and renders
// the outcome as a result the conversation can carry.
func (r *Registry) Dispatch(ctx context.Context, call core.ToolCall, tc *Context) core.ToolResult {
	if tc.Logger == nil {
		tc.Logger = r.opts.Logger
	}
	tc.CallID = call.ID

	t, ok := r.Get(call.Name)
	if !ok {
		return errorResult(call, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errorResult(call, fmt.Sprintf("invalid tool arguments: %v", err))
		}
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := t.Call(ctx, tc, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.opts.Logger.Warn("tool.dispatch.timeout", "tool", call.Name, "call_id", call.ID)
			return errorResult(call, fmt.Sprintf("tool %s timed out after %s", call.Name, r.opts.Timeout))
		}
		r.opts.Logger.Error("tool.dispatch.error", "tool", call.Name, "call_id", call.ID, "error", err.Error())
		return errorResult(call, err.Error())
	}

	r.opts.Logger.Info("tool.dispatch.success",
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return core.ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Output: renderOutput(out),
	}
}

func errorResult(call core.ToolCall, msg string) core.ToolResult {
	return core.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Output:  msg,
		IsError: true,
	}
}

// renderOutput converts a tool return value into the text fed back to the
// model. Strings pass through untouched; everything else is JSON encoded.
func renderOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
