// Package nanoagent provides a high-level façade wiring configuration, a
// model brain, the built-in tool set, persistent memory, and session storage
// into a ready-to-run coding agent. Most applications interact with this
// package by:
//  1. Creating an instance via New() with a config.Config
//  2. Calling Step() per user input, or embedding the agent in a REPL
//
// Importing this package registers all built-in brain backends.
package nanoagent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/nanoagent/agent"
	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/config"
	"github.com/hupe1980/nanoagent/logging"
	"github.com/hupe1980/nanoagent/memory"
	"github.com/hupe1980/nanoagent/session"
	"github.com/hupe1980/nanoagent/tool"

	// Register the built-in brain backends.
	_ "github.com/hupe1980/nanoagent/brain/anthropic"
	_ "github.com/hupe1980/nanoagent/brain/gemini"
	_ "github.com/hupe1980/nanoagent/brain/ollama"
	_ "github.com/hupe1980/nanoagent/brain/openai"
)

// Options configure the façade beyond what config.Config carries.
type Options struct {
	// Mode is the initial plan/act mode.
	Mode tool.Mode

	// SessionID resumes an existing transcript when it exists in the store.
	SessionID string

	// Store overrides the file-backed session store. Nil selects the default.
	Store session.Store

	// Logger defaults to a slog logger built from the config.
	Logger logging.Logger
}

// NanoAgent aggregates the wired components.
type NanoAgent struct {
	agent    *agent.Agent
	registry *tool.Registry
	store    session.Store
	logger   logging.Logger
}

// New builds a fully wired agent from configuration.
func New(cfg config.Config, optFns ...func(o *Options)) (*NanoAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{Mode: tool.ModePlan}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, nil)
	}

	b, err := brain.New(cfg.Brain, brain.Config{
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create brain %q: %w", cfg.Brain, err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		sessionDir := cfg.SessionDir
		if !filepath.IsAbs(sessionDir) {
			sessionDir = filepath.Join(root, sessionDir)
		}
		store, err = session.NewFileStore(sessionDir)
		if err != nil {
			return nil, err
		}
	}

	scratchpad := memory.NewScratchpad(root)

	registry := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = opts.Logger
	})
	for _, t := range tool.Builtins() {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	a := agent.New(b, registry, func(o *agent.Options) {
		o.Root = root
		o.Mode = opts.Mode
		o.MaxIterations = cfg.MaxIterations
		o.Store = store
		o.SessionID = opts.SessionID
		o.Memory = scratchpad
		o.Trim = &agent.Compactor{Brain: b}
		o.Logger = opts.Logger
	})

	if opts.SessionID != "" {
		if sess, err := store.Load(opts.SessionID); err == nil {
			a.Resume(sess)
		}
	}

	return &NanoAgent{agent: a, registry: registry, store: store, logger: opts.Logger}, nil
}

// Step runs one full conversational turn.
func (n *NanoAgent) Step(ctx context.Context, userText string) (*agent.StepResult, error) {
	return n.agent.Step(ctx, userText)
}

// Agent exposes the underlying turn loop for mode and brain switching.
func (n *NanoAgent) Agent() *agent.Agent { return n.agent }

// SwitchBrain replaces the active brain with a freshly constructed backend.
// The transcript carries over.
func (n *NanoAgent) SwitchBrain(name string, cfg brain.Config) error {
	b, err := brain.New(name, cfg)
	if err != nil {
		return err
	}
	n.agent.SetBrain(b)
	n.logger.Info("brain.switched", "provider", name)
	return nil
}

// Sessions lists the transcripts known to the store.
func (n *NanoAgent) Sessions() ([]string, error) { return n.store.List() }
