// Package runners defines the per-language test runner contract, the
// registry that selects a runner for a directory, and the normalized result
// models every runner produces.
package runners

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/executor"
)

const (
	DefaultTestTimeout    = 300 * time.Second
	DefaultInstallTimeout = 600 * time.Second
)

// Runner detects, installs and tests one kind of project. A Runner is bound
// to a single directory and used for a single evaluation.
type Runner interface {
	// Name returns the runner identifier (e.g., "python", "typescript")
	Name() string

	// Detect inspects the directory without running anything
	Detect() detector.DetectionResult

	// InstallDependencies materializes the project's dependencies
	InstallDependencies(ctx context.Context) *DependencyInstallResult

	// RunTests executes the suite. testDir narrows the run when non-empty.
	// Test failures and timeouts are reported in the result; the error is
	// reserved for commands that could not be launched at all.
	RunTests(ctx context.Context, testDir string) (*TestResult, error)
}

// Env carries the collaborators injected into every runner
type Env struct {
	Exec           executor.Executor
	Logger         *zap.Logger
	TestTimeout    time.Duration
	InstallTimeout time.Duration
}

// WithDefaults fills unset fields
func (e Env) WithDefaults() Env {
	if e.Exec == nil {
		e.Exec = executor.New(executor.WithLogger(e.Logger))
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.TestTimeout <= 0 {
		e.TestTimeout = DefaultTestTimeout
	}
	if e.InstallTimeout <= 0 {
		e.InstallTimeout = DefaultInstallTimeout
	}
	return e
}

// Factory creates a runner for dir
type Factory func(dir string, env Env) Runner

// CIEnv is the environment every test command runs with so runners print
// plain, non-interactive output
func CIEnv() []string {
	return []string{"CI=true", "FORCE_COLOR=0", "NO_COLOR=1"}
}

// Execute runs a test command and parses its output. Timeouts become a
// single synthetic "timeout" failure; a command that never started returns
// ErrExecutionFault.
func Execute(ctx context.Context, env Env, cmd executor.Command, parse func(output string) *TestResult) (*TestResult, error) {
	res := env.Exec.Run(ctx, cmd)
	if res.TimedOut {
		env.Logger.Warn("Test command timed out",
			zap.String("command", cmd.String()),
			zap.Duration("timeout", cmd.Timeout))
		return TimeoutResult(res, cmd.Timeout), nil
	}
	if err := ClassifyLaunch(cmd.Name, res); err != nil {
		return nil, err
	}

	output := StripANSI(res.Combined())
	result := parse(output)
	result.RawOutput = output
	result.Duration = res.Duration
	result.Truncated = res.Truncated
	return Finalize(result, res.ExitCode), nil
}
