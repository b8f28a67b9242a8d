package codeexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const DefaultTimeout = 60 * time.Second

// Runner executes a generated experiment script in a subprocess. This is
// plain I/O glue: no sandboxing beyond a hard timeout.
type Runner struct {
	Python  string
	Timeout time.Duration
}

func NewRunner() *Runner {
	return &Runner{Python: "python3", Timeout: DefaultTimeout}
}

// EnsureHeadlessMatplotlib prepends a non-interactive matplotlib backend so
// plot calls in generated code do not require a display.
func EnsureHeadlessMatplotlib(code string) string {
	if strings.Contains(code, "matplotlib.use('Agg')") {
		return code
	}
	return "import matplotlib\nmatplotlib.use('Agg')\n" + code
}

// Run writes the script next to its working directory, executes it, and
// returns the combined captured output.
func (r *Runner) Run(ctx context.Context, scriptPath string) (string, error) {
	code, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", fmt.Errorf("error reading script %s: %w", scriptPath, err)
	}

	safe := EnsureHeadlessMatplotlib(string(code))
	if safe != string(code) {
		if err := os.WriteFile(scriptPath, []byte(safe), 0644); err != nil {
			return "", fmt.Errorf("error rewriting script %s: %w", scriptPath, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Python, scriptPath)
	cmd.Dir = filepath.Dir(scriptPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("execution timed out after %v", r.Timeout)
	}

	var b strings.Builder
	if stdout.Len() > 0 {
		fmt.Fprintf(&b, "[STDOUT]\n%s\n", stdout.String())
	}
	if stderr.Len() > 0 {
		fmt.Fprintf(&b, "\n[STDERR]\n%s\n", stderr.String())
	}
	if b.Len() == 0 {
		if runErr != nil {
			return "", fmt.Errorf("error executing script: %w", runErr)
		}
		return "Script executed successfully but produced no output.", nil
	}

	return b.String(), nil
}
