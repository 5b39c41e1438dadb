package testsupport

import (
	"context"
	"strings"
	"sync"

	"burncheck/internal/runner"
)

// Call records one FakeRunner invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner records invocations and replays scripted responses keyed by
// binary name. Unscripted binaries succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]FakeResponse
}

// FakeResponse scripts the outcome for a binary.
type FakeResponse struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Hook runs before the response is returned, letting tests mutate the
	// filesystem the way the real tool would.
	Hook func(args []string)
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]FakeResponse)}
}

// On scripts the response for name.
func (f *FakeRunner) On(name string, resp FakeResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[name] = resp
	return f
}

// Fail scripts name to exit with code and stderr.
func (f *FakeRunner) Fail(name string, code int, stderr string) *FakeRunner {
	return f.On(name, FakeResponse{ExitCode: code, Stderr: stderr})
}

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	resp, ok := f.responses[name]
	f.mu.Unlock()

	result := runner.Result{Command: name, Args: append([]string(nil), args...)}
	if !ok {
		return result, nil
	}
	if resp.Hook != nil {
		resp.Hook(args)
	}
	result.ExitCode = resp.ExitCode
	result.Stdout = resp.Stdout
	result.Stderr = resp.Stderr
	if resp.ExitCode != 0 {
		return result, &runner.ExitError{Result: result}
	}
	return result, nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Called reports how many times name was invoked.
func (f *FakeRunner) Called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}
