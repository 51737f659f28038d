// Command nanoagent is a terminal coding agent. It reads user input line by
// line, lets a model brain drive the built-in tools against the working
// directory, and prints the model's answers.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nanoagent"
	"github.com/hupe1980/nanoagent/brain"
	"github.com/hupe1980/nanoagent/config"
	"github.com/hupe1980/nanoagent/tool"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		act       bool
		sessionID string
	)

	cfg, err := config.FromEnv()
	if err != nil {
		cfg = config.Default()
	}

	cmd := &cobra.Command{
		Use:   "nanoagent",
		Short: "A minimal terminal coding agent",
		Long: `nanoagent is a line-based coding agent. Type a request and the model
will use tools to read, search, edit, and run code in the working directory.

Commands inside the REPL:
  /q              quit
  /mode plan|act  switch between planning and acting
  /switch <name>  switch the model backend (anthropic, openai, ollama, gemini)`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := tool.ModePlan
			if act {
				mode = tool.ModeAct
			}
			app, err := nanoagent.New(cfg, func(o *nanoagent.Options) {
				o.Mode = mode
				o.SessionID = sessionID
			})
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), app, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Brain, "brain", cfg.Brain, "model backend: "+strings.Join(brain.Backends(), ", "))
	cmd.Flags().StringVar(&cfg.Model, "model", cfg.Model, "override the backend's default model")
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "override the backend endpoint")
	cmd.Flags().BoolVar(&act, "act", false, "start in act mode instead of plan mode")
	cmd.Flags().StringVar(&cfg.Root, "root", cfg.Root, "working directory for tools")
	cmd.Flags().StringVar(&sessionID, "session", "", "resume the session with this id")
	cmd.Flags().StringVar(&cfg.SessionDir, "session-dir", cfg.SessionDir, "directory for session transcripts")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	cmd.Flags().IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "brain calls allowed per turn")

	return cmd
}

// turnContext arms interrupt handling for a single turn, so Ctrl+C cancels
// the in-flight step without poisoning later turns.
func turnContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runREPL(ctx context.Context, app *nanoagent.NanoAgent, cfg config.Config) error {
	a := app.Agent()
	info := a.Brain().Info()
	fmt.Printf("nanoagent ready (%s/%s, %s mode, session %s)\n", info.Provider, info.Name, a.Mode(), a.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Printf("[%s] > ", a.Mode())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(app, cfg, line); quit {
				return nil
			}
			continue
		}

		stepCtx, stop := turnContext(ctx)
		res, err := app.Step(stepCtx, line)
		stop()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("interrupted")
				continue
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(res.Text)
	}
}

// handleCommand processes a slash command and reports whether to quit.
func handleCommand(app *nanoagent.NanoAgent, cfg config.Config, line string) bool {
	a := app.Agent()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/q", "/quit", "/exit":
		return true

	case "/mode":
		if len(fields) != 2 {
			fmt.Printf("current mode: %s (use /mode plan or /mode act)\n", a.Mode())
			return false
		}
		switch fields[1] {
		case "plan":
			a.SetMode(tool.ModePlan)
		case "act":
			a.SetMode(tool.ModeAct)
		default:
			fmt.Println("unknown mode:", fields[1])
			return false
		}
		fmt.Println("mode:", a.Mode())

	case "/switch":
		if len(fields) != 2 {
			fmt.Println("available brains:", strings.Join(brain.Backends(), ", "))
			return false
		}
		if err := app.SwitchBrain(fields[1], brain.Config{Model: cfg.Model, BaseURL: cfg.BaseURL}); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return false
		}
		info := a.Brain().Info()
		fmt.Printf("switched to %s/%s\n", info.Provider, info.Name)

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}
