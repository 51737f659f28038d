package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/core"
)

// TrimPolicy decides when and how to shrink the conversation before the next
// brain call. Apply receives the token usage reported by the previous call,
// which may be nil when no call has happened yet.
type TrimPolicy interface {
	Apply(ctx context.Context, messages []core.Message, usage *brain.TokenUsage, contextWindow int) ([]core.Message, bool, error)
}

// NoTrim never shrinks the conversation.
type NoTrim struct{}

func (NoTrim) Apply(_ context.Context, messages []core.Message, _ *brain.TokenUsage, _ int) ([]core.Message, bool, error) {
	return messages, false, nil
}

// Compactor replaces the conversation with a model-written summary once the
// prompt grows past a fraction of the context window. The summary is carried
// as a single user message so any brain can pick the conversation up.
type Compactor struct {
	// Brain writes the summary. Usually the same brain driving the agent.
	Brain brain.Brain

	// Threshold is the fraction of the context window that triggers
	// compaction. Zero means the default of 0.75.
	Threshold float64
}

const summaryPrompt = `Summarize the conversation so far for your own future reference.
Keep: the user's goal, decisions made, files touched, and any unresolved problems.
Be concise; this summary replaces the full history.`

func (c *Compactor) Apply(ctx context.Context, messages []core.Message, usage *brain.TokenUsage, contextWindow int) ([]core.Message, bool, error) {
	threshold := c.Threshold
	if threshold == 0 {
		threshold = 0.75
	}
	if usage == nil || contextWindow <= 0 {
		return messages, false, nil
	}
	if float64(usage.PromptTokens) < threshold*float64(contextWindow) {
		return messages, false, nil
	}

	req := brain.Request{
		Messages: append(append([]core.Message{}, messages...),
			core.NewTextMessage(core.RoleUser, summaryPrompt)),
	}
	resp, err := c.Brain.Complete(ctx, req)
	if err != nil {
		return messages, false, fmt.Errorf("compaction summary failed: %w", err)
	}
	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return messages, false, nil
	}

	compacted := []core.Message{
		core.NewTextMessage(core.RoleUser, "Summary of the conversation so far:\n\n"+summary),
	}
	return compacted, true, nil
}
