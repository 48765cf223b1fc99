// Package executortest provides a scripted Executor for tests that must not
// spawn real toolchains.
package executortest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sdkbench/pkg/executor"
)

// Handler produces the result for a matched command
type Handler func(cmd executor.Command) *executor.Result

type rule struct {
	pattern string
	handle  Handler
}

// Fake matches each command line against registered substrings in order.
// Unmatched commands behave like a missing binary.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	calls []executor.Command
}

// New creates an empty Fake
func New() *Fake {
	return &Fake{}
}

// On registers a handler for commands whose command line contains pattern
func (f *Fake) On(pattern string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{pattern: pattern, handle: h})
	return f
}

// OnOutput registers a canned stdout and exit code
func (f *Fake) OnOutput(pattern, stdout string, exitCode int) *Fake {
	return f.On(pattern, Output(stdout, exitCode))
}

// Run implements executor.Executor
func (f *Fake) Run(ctx context.Context, cmd executor.Command) *executor.Result {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	rules := append([]rule(nil), f.rules...)
	f.mu.Unlock()

	line := cmd.String()
	for _, r := range rules {
		if strings.Contains(line, r.pattern) {
			return r.handle(cmd)
		}
	}
	return NotFound()(cmd)
}

// Calls returns every command seen so far
func (f *Fake) Calls() []executor.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executor.Command(nil), f.calls...)
}

// Ran reports whether any command line contained pattern
func (f *Fake) Ran(pattern string) bool {
	for _, c := range f.Calls() {
		if strings.Contains(c.String(), pattern) {
			return true
		}
	}
	return false
}

// Output returns a handler producing stdout with the given exit code
func Output(stdout string, exitCode int) Handler {
	return func(executor.Command) *executor.Result {
		return &executor.Result{
			ExitCode: exitCode,
			Stdout:   stdout,
			Duration: 10 * time.Millisecond,
		}
	}
}

// Stderr returns a handler producing stderr with the given exit code
func Stderr(stderr string, exitCode int) Handler {
	return func(executor.Command) *executor.Result {
		return &executor.Result{
			ExitCode: exitCode,
			Stderr:   stderr,
			Duration: 10 * time.Millisecond,
		}
	}
}

// TimedOut returns a handler simulating a killed process with partial output
func TimedOut(partial string) Handler {
	return func(cmd executor.Command) *executor.Result {
		return &executor.Result{
			ExitCode: -1,
			Stdout:   partial,
			Duration: cmd.Timeout,
			TimedOut: true,
		}
	}
}

// NotFound returns a handler simulating a binary missing from PATH
func NotFound() Handler {
	return func(cmd executor.Command) *executor.Result {
		return &executor.Result{
			ExitCode: -1,
			Err:      fmt.Errorf("%w: %s", executor.ErrNotFound, cmd.Name),
		}
	}
}
