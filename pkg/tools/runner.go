// Package tools invokes and probes the external tools the pipeline drives
// (docker, kubectl, helm, minikube). The pipeline never links against any of
// them: their exit status and textual output are the only feedback signal.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Result captures one external invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns stderr when present, stdout otherwise. External tools are
// inconsistent about which stream carries the interesting failure text.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Tail returns at most n trailing lines of Output, for failure reports.
func (r Result) Tail(n int) string {
	lines := strings.Split(r.Output(), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Runner runs external commands. The deployment pipeline receives a Runner so
// tests can substitute a scripted fake and assert stage transitions without
// any real tool installed.
type Runner interface {
	// Run executes the command and waits for it to exit. A non-zero exit
	// code is reported in the Result, not as an error; the error return is
	// reserved for start failures and context cancellation.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// LookPath reports the absolute path of a tool, or an error if absent.
	LookPath(name string) (string, error)
}

// ExecRunner is the exec-backed Runner used outside tests.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner. Context cancellation kills the child process.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running external command",
		slog.String("command", name),
		slog.String("args", strings.Join(args, " ")),
	)

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		// Cancellation wins over whatever exit status the killed child had.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return result, nil
}

// LookPath implements Runner.
func (e *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
