package tool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hupe1980/nanoagent/internal/util"
	shellwords "github.com/mattn/go-shellwords"
)

// maxCommandOutput bounds captured stdout/stderr per stream.
const maxCommandOutput = 10_000

// NewRunCommandTool returns a tool that executes a shell command in the
// working directory and reports captured stdout/stderr plus the exit status.
// Commands are parsed with shell word splitting, not run through a shell, so
// pipes and redirects are not available. Blocked entirely in plan mode.
func NewRunCommandTool() *FuncTool {
	return NewFuncTool(
		"run_command",
		"Execute a command in the working directory and return its output",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "description": "Command line to execute"},
			},
			"required": []string{"command"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			if tc.Mode == ModePlan {
				return nil, errors.New("run_command is blocked in plan mode")
			}

			line := args["command"].(string)
			parts, err := shellwords.Parse(line)
			if err != nil {
				return nil, fmt.Errorf("parse command: %w", err)
			}
			if len(parts) == 0 {
				return nil, errors.New("empty command")
			}

			cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
			cmd.Dir = tc.Root

			var stdout, stderr strings.Builder
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			runErr := cmd.Run()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			var b strings.Builder
			exitCode := 0
			if runErr != nil {
				var exitErr *exec.ExitError
				if errors.As(runErr, &exitErr) {
					exitCode = exitErr.ExitCode()
				} else {
					return nil, runErr
				}
			}
			fmt.Fprintf(&b, "Exit code: %d\n", exitCode)
			if out := stdout.String(); out != "" {
				fmt.Fprintf(&b, "STDOUT:\n%s\n", util.Truncate(out, maxCommandOutput))
			}
			if out := stderr.String(); out != "" {
				fmt.Fprintf(&b, "STDERR:\n%s\n", util.Truncate(out, maxCommandOutput))
			}
			return b.String(), nil
		},
	)
}
