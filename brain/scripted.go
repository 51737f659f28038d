package brain

import (
	"context"

	"github.com/hupe1980/nanoagent/core"
)

// ScriptedBrain is a lightweight in-memory Brain useful for tests and
// examples. It replays a fixed sequence of responses (or errors) and
// records every request it receives.
type ScriptedBrain struct {
	info     Info
	script   []scriptStep
	Requests []Request
}

type scriptStep struct {
	resp *Response
	err  error
}

// NewScriptedBrain constructs an empty scripted brain with a generous
// context window so compaction stays inert unless a test arms it.
func NewScriptedBrain() *ScriptedBrain {
	return &ScriptedBrain{
		info: Info{Name: "scripted", Provider: "test", ContextWindow: 200_000},
	}
}

// AddResponse appends a canned response to the script.
func (b *ScriptedBrain) AddResponse(resp *Response) *ScriptedBrain {
	b.script = append(b.script, scriptStep{resp: resp})
	return b
}

// AddText is shorthand for a final text-only response.
func (b *ScriptedBrain) AddText(text string) *ScriptedBrain {
	return b.AddResponse(&Response{Text: text, StopReason: "stop"})
}

// AddToolCall appends a response requesting a single tool invocation.
func (b *ScriptedBrain) AddToolCall(id, name, args string) *ScriptedBrain {
	return b.AddResponse(&Response{
		ToolCalls:  []core.ToolCall{{ID: id, Name: name, Arguments: args}},
		StopReason: "tool_use",
	})
}

// AddError appends a failing step.
func (b *ScriptedBrain) AddError(err error) *ScriptedBrain {
	b.script = append(b.script, scriptStep{err: err})
	return b
}

// Calls returns how many completions have been requested so far.
func (b *ScriptedBrain) Calls() int { return len(b.Requests) }

// Complete implements Brain by replaying the script in order. Once the
// script is exhausted it answers with a fixed final text so runaway loops
// terminate deterministically.
func (b *ScriptedBrain) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	b.Requests = append(b.Requests, req)
	idx := len(b.Requests) - 1
	if idx >= len(b.script) {
		return &Response{Text: "no more scripted responses", StopReason: "stop"}, nil
	}
	step := b.script[idx]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

// Info implements Brain.
func (b *ScriptedBrain) Info() Info { return b.info }
