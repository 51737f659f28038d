// Package agent implements the turn loop that connects a model brain to the
// tool registry: send the conversation, execute any tool calls, feed the
// results back, and repeat until the model answers in plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
	"github.com/hupe1980/nanoagent/logging"
	"github.com/hupe1980/nanoagent/session"
	"github.com/hupe1980/nanoagent/tool"
)

// ErrTurnLimit is returned when a single turn exceeds the iteration budget
// without the model producing a plain text answer.
var ErrTurnLimit = errors.New("turn iteration limit exceeded")

// Error wraps a failure inside a turn with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string { return fmt.Sprintf("agent: %s: %v", e.Op, e.Err) }

// Unwrap exposes the cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// DefaultSystemPrompt is the base instruction prepended to every request.
const DefaultSystemPrompt = `You are a coding agent working in the user's repository.
Use the available tools to read, search, edit, and run code. Prefer small,
verifiable steps. When you are done, answer in plain text without tool calls.`

// Memory supplies persistent notes for the system prompt and receives
// save_memory rewrites.
type Memory interface {
	Load() string
	Save(content string) error
}

// Options configure an Agent.
type Options struct {
	// SystemPrompt is the base instruction. The memory scratchpad and the
	// plan mode notice are appended to it.
	SystemPrompt string

	// Root is the working directory tools operate in.
	Root string

	// Mode is the initial plan/act mode.
	Mode tool.Mode

	// MaxIterations bounds brain calls within a single Step.
	MaxIterations int

	// MaxRetries bounds additional attempts after a retryable brain failure.
	MaxRetries int

	// BrainTimeout bounds a single brain call. Zero disables the deadline.
	BrainTimeout time.Duration

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration

	// Store persists the transcript after each completed turn. May be nil.
	Store session.Store

	// SessionID identifies the transcript in the store.
	SessionID string

	// Memory is the persistent scratchpad. May be nil.
	Memory Memory

	// Trim decides when and how to shrink the conversation between turns.
	Trim TrimPolicy

	Logger logging.Logger
}

// Agent drives a conversation with a single brain at a time. It is not safe
// for concurrent use; the REPL drives it from one goroutine.
type Agent struct {
	brain    brain.Brain
	registry *tool.Registry
	opts     Options

	messages  []core.Message
	lastUsage *brain.TokenUsage
}

// New creates an agent around a brain and a tool registry.
func New(b brain.Brain, registry *tool.Registry, optFns ...func(o *Options)) *Agent {
	opts := Options{
		SystemPrompt:   DefaultSystemPrompt,
		Root:           ".",
		Mode:           tool.ModeAct,
		MaxIterations:  10,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		Trim:           NoTrim{},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Trim == nil {
		opts.Trim = NoTrim{}
	}
	if opts.SessionID == "" {
		opts.SessionID = core.NewID()
	}
	return &Agent{brain: b, registry: registry, opts: opts}
}

// Brain returns the currently active brain.
func (a *Agent) Brain() brain.Brain { return a.brain }

// SetBrain swaps the active brain. The conversation carries over since the
// transcript is provider neutral.
func (a *Agent) SetBrain(b brain.Brain) { a.brain = b }

// Mode returns the current plan/act mode.
func (a *Agent) Mode() tool.Mode { return a.opts.Mode }

// SetMode switches between plan and act mode.
func (a *Agent) SetMode(m tool.Mode) { a.opts.Mode = m }

// SessionID returns the transcript identifier.
func (a *Agent) SessionID() string { return a.opts.SessionID }

// Messages returns the live transcript. Callers must not mutate it.
func (a *Agent) Messages() []core.Message { return a.messages }

// Resume replaces the transcript with a stored session.
func (a *Agent) Resume(sess *session.Session) {
	a.opts.SessionID = sess.ID
	a.messages = append(a.messages[:0], sess.Messages...)
}

// StepResult is the outcome of a completed turn.
type StepResult struct {
	// Text is the model's final plain text answer.
	Text string
	// Iterations counts the brain calls the turn consumed.
	Iterations int
}

// Step runs one full turn: append the user input, then loop completing and
// dispatching tool calls until the model answers without any, or the
// iteration budget runs out.
//
// On brain failure the transcript is rolled back to its state at entry, so a
// failed Step can be retried with the same input without duplicating
// messages. Tool failures never abort the turn; they are returned to the
// model as error results.
func (a *Agent) Step(ctx context.Context, userText string) (*StepResult, error) {
	mark := len(a.messages)
	a.messages = append(a.messages, core.NewTextMessage(core.RoleUser, userText))

	for i := 0; i < a.opts.MaxIterations; i++ {
		if err := a.maybeTrim(ctx); err != nil {
			a.opts.Logger.Warn("agent.trim.failed", "error", err.Error())
		}
		// Compaction may have shrunk the transcript below the entry mark;
		// rollback then restores the compacted state, not the pre-turn one.
		if mark > len(a.messages) {
			mark = len(a.messages)
		}

		req := brain.Request{
			System:   a.systemPrompt(),
			Messages: a.messages,
			Tools:    a.registry.Definitions(),
		}

		resp, err := a.completeWithRetry(ctx, req)
		if err != nil {
			a.messages = a.messages[:mark]
			return nil, &Error{Op: "complete", Err: err}
		}

		a.messages = append(a.messages, resp.Message())
		a.lastUsage = resp.Usage

		if len(resp.ToolCalls) == 0 {
			a.snapshot()
			return &StepResult{Text: resp.Text, Iterations: i + 1}, nil
		}

		results := make([]core.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			tc := &tool.Context{
				Mode:   a.opts.Mode,
				Root:   a.opts.Root,
				Memory: a.opts.Memory,
				Logger: a.opts.Logger,
			}
			results = append(results, a.registry.Dispatch(ctx, call, tc))
		}
		a.messages = append(a.messages, core.NewToolResultMessage(results...))
	}

	a.snapshot()
	return nil, fmt.Errorf("%w after %d iterations", ErrTurnLimit, a.opts.MaxIterations)
}

// completeWithRetry calls the brain, backing off and retrying on transient
// failures. Non-retryable errors and context cancellation end immediately.
func (a *Agent) completeWithRetry(ctx context.Context, req brain.Request) (*brain.Response, error) {
	var lastErr error
	delay := a.opts.RetryBaseDelay

	for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			a.opts.Logger.Warn("agent.brain.retry",
				"attempt", attempt,
				"delay", delay.String(),
				"error", lastErr.Error(),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := a.complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !brain.Retryable(err) {
			break
		}
	}
	return nil, lastErr
}

// complete runs one brain call under the configured timeout.
func (a *Agent) complete(ctx context.Context, req brain.Request) (*brain.Response, error) {
	if a.opts.BrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.BrainTimeout)
		defer cancel()
	}
	return a.brain.Complete(ctx, req)
}

// systemPrompt assembles the base instruction, the memory scratchpad, and
// the plan mode notice.
func (a *Agent) systemPrompt() string {
	var b strings.Builder
	b.WriteString(a.opts.SystemPrompt)
	if a.opts.Memory != nil {
		b.WriteString("\n\n")
		b.WriteString(a.opts.Memory.Load())
	}
	if a.opts.Mode == tool.ModePlan {
		b.WriteString("\n\nYou are in PLAN mode: investigate and write your plan to PLAN.md, but do not modify other files or run commands.")
	}
	return b.String()
}

// maybeTrim applies the trim policy using the previous turn's token usage.
func (a *Agent) maybeTrim(ctx context.Context) error {
	trimmed, changed, err := a.opts.Trim.Apply(ctx, a.messages, a.lastUsage, a.brain.Info().ContextWindow)
	if err != nil {
		return err
	}
	if changed {
		a.opts.Logger.Info("agent.trim.applied",
			"before", len(a.messages),
			"after", len(trimmed),
		)
		a.messages = trimmed
		a.lastUsage = nil
	}
	return nil
}

// snapshot saves the transcript when a store is configured.
func (a *Agent) snapshot() {
	if a.opts.Store == nil {
		return
	}
	sess := session.NewSession(a.opts.SessionID)
	sess.Messages = append(sess.Messages, a.messages...)
	if err := a.opts.Store.Save(sess); err != nil {
		a.opts.Logger.Error("agent.session.save_failed", "session_id", a.opts.SessionID, "error", err.Error())
	}
}
