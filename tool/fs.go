package tool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/nanoagent/internal/util"
)

const (
	// planFileName is the one file writable in plan mode.
	planFileName = "PLAN.md"

	// maxFileOutput bounds the text returned by read_file and search_codebase.
	maxFileOutput = 50_000
)

// skipDirs are directory names excluded from listing and searching.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".nanoagent":   true,
}

// resolvePath resolves p against the working root and rejects any path that
// escapes it, including via .. segments.
func resolvePath(root, p string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the working directory", p)
	}
	return target, nil
}

// guardWrite enforces plan mode: only the plan file may be written.
func guardWrite(tc *Context, path string) error {
	if tc.Mode == ModePlan && filepath.Base(path) != planFileName {
		return fmt.Errorf("write blocked in plan mode; only %s may be modified", planFileName)
	}
	return nil
}

// NewReadFileTool returns a tool that reads a file and prefixes each line
// with its number, so the model can reference exact locations when editing.
func NewReadFileTool() *FuncTool {
	return NewFuncTool(
		"read_file",
		"Read a file and return its contents with line numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "File path relative to the working directory"},
			},
			"required": []string{"path"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			path, err := resolvePath(tc.Root, args["path"].(string))
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			lines := strings.Split(string(data), "\n")
			var b strings.Builder
			for i, line := range lines {
				fmt.Fprintf(&b, "%d | %s\n", i+1, line)
			}
			return util.Truncate(b.String(), maxFileOutput), nil
		},
	)
}

// NewWriteFileTool returns a tool that creates or overwrites a file,
// creating parent directories as needed.
func NewWriteFileTool() *FuncTool {
	return NewFuncTool(
		"write_file",
		"Create or overwrite a file with the given content",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string", "description": "File path relative to the working directory"},
				"content": map[string]any{"type": "string", "description": "Full file content to write"},
			},
			"required": []string{"path", "content"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			path, err := resolvePath(tc.Root, args["path"].(string))
			if err != nil {
				return nil, err
			}
			if err := guardWrite(tc, path); err != nil {
				return nil, err
			}
			content := args["content"].(string)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), args["path"]), nil
		},
	)
}

// NewEditFileTool returns a tool that replaces the first exact occurrence of
// a string in a file.
func NewEditFileTool() *FuncTool {
	return NewFuncTool(
		"edit_file",
		"Replace an exact string in a file with a new string",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string", "description": "File path relative to the working directory"},
				"old_string": map[string]any{"type": "string", "description": "Exact text to replace"},
				"new_string": map[string]any{"type": "string", "description": "Replacement text"},
			},
			"required": []string{"path", "old_string", "new_string"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			path, err := resolvePath(tc.Root, args["path"].(string))
			if err != nil {
				return nil, err
			}
			if err := guardWrite(tc, path); err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			oldStr := args["old_string"].(string)
			content := string(data)
			if !strings.Contains(content, oldStr) {
				return nil, fmt.Errorf("old_string not found in %s", args["path"])
			}
			updated := strings.Replace(content, oldStr, args["new_string"].(string), 1)
			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Edited %s", args["path"]), nil
		},
	)
}

// NewListFilesTool returns a tool that lists files under a directory,
// skipping VCS and dependency directories.
func NewListFilesTool() *FuncTool {
	return NewFuncTool(
		"list_files",
		"List files under a directory recursively",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Directory to list, defaults to the working directory"},
			},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			dir := "."
			if p, ok := args["path"].(string); ok && p != "" {
				dir = p
			}
			path, err := resolvePath(tc.Root, dir)
			if err != nil {
				return nil, err
			}
			var files []string
			err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if skipDirs[d.Name()] {
						return filepath.SkipDir
					}
					return nil
				}
				rel, relErr := filepath.Rel(path, p)
				if relErr != nil {
					return relErr
				}
				files = append(files, rel)
				return nil
			})
			if err != nil {
				return nil, err
			}
			sort.Strings(files)
			if len(files) == 0 {
				return "No files found", nil
			}
			return strings.Join(files, "\n"), nil
		},
	)
}

// NewSearchCodebaseTool returns a tool that searches file contents for a
// case-insensitive substring and reports matches as path:line: text.
func NewSearchCodebaseTool() *FuncTool {
	return NewFuncTool(
		"search_codebase",
		"Search all files for a case-insensitive substring",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Substring to search for"},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			root, err := resolvePath(tc.Root, ".")
			if err != nil {
				return nil, err
			}
			query := strings.ToLower(args["query"].(string))
			var b strings.Builder
			err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if skipDirs[d.Name()] {
						return filepath.SkipDir
					}
					return nil
				}
				data, readErr := os.ReadFile(p)
				if readErr != nil {
					return nil // unreadable files are skipped, not fatal
				}
				rel, relErr := filepath.Rel(root, p)
				if relErr != nil {
					return relErr
				}
				for i, line := range strings.Split(string(data), "\n") {
					if strings.Contains(strings.ToLower(line), query) {
						fmt.Fprintf(&b, "%s:%d: %s\n", rel, i+1, strings.TrimSpace(line))
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			if b.Len() == 0 {
				return "No matches found", nil
			}
			return util.Truncate(b.String(), maxFileOutput), nil
		},
	)
}
