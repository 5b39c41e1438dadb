package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result captures the outcome of a single tool invocation.
type Result struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns the trimmed diagnostic text, preferring stderr.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// CommandLine renders the invocation for logs.
func (r Result) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Command
	}
	return r.Command + " " + strings.Join(r.Args, " ")
}

// ExitError reports a tool that could not start or exited non-zero.
type ExitError struct {
	Result Result
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Result.Command, e.Result.ExitCode)
	if e.Result.ExitCode < 0 {
		msg = fmt.Sprintf("%s failed to start", e.Result.Command)
	}
	if out := e.Result.Output(); out != "" {
		msg += ": " + firstLine(out)
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the tool exit status from err, or -1 when err does not
// carry one.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Result.ExitCode
	}
	return -1
}

// Output extracts captured diagnostic text from err.
func Output(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Result.Output()
	}
	return ""
}

// Runner executes a named tool.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec runs tools as child processes.
type Exec struct {
	// Dir is the working directory for the child. Empty inherits ours.
	Dir string
}

// New returns a Runner backed by os/exec.
func New() Exec {
	return Exec{}
}

func (e Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	result := Result{Command: name, Args: append([]string(nil), args...)}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
	}
	return result, &ExitError{Result: result, Err: err}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
