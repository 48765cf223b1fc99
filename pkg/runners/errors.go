package runners

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sdkbench/pkg/executor"
)

var (
	// ErrNoRunner means no registered runner recognized the directory
	ErrNoRunner = errors.New("no compatible test runner found")
	// ErrToolNotFound means the package manager or test binary is missing from PATH
	ErrToolNotFound = errors.New("tool not found")
	// ErrTimeout means an install or test command exceeded its bound
	ErrTimeout = errors.New("timed out")
	// ErrInstallFailed means the package manager ran and exited non-zero
	ErrInstallFailed = errors.New("install command failed")
	// ErrExecutionFault means the test command could not be launched
	ErrExecutionFault = errors.New("test execution fault")
	// ErrNoSummary means the runner output contained no recognizable summary
	ErrNoSummary = errors.New("test summary not found")
)

// ClassifyInstall turns an executor result into an install error, or nil on
// success. Missing tools, timeouts and non-zero exits stay distinguishable.
func ClassifyInstall(operation string, res *executor.Result) error {
	switch {
	case res.Err != nil && errors.Is(res.Err, executor.ErrNotFound):
		return fmt.Errorf("%s: %w (%v)", operation, ErrToolNotFound, res.Err)
	case res.TimedOut:
		return fmt.Errorf("%s: %w after %s", operation, ErrTimeout, res.Duration.Round(time.Second))
	case res.Err != nil:
		return fmt.Errorf("%s: %w: %v", operation, ErrInstallFailed, res.Err)
	case res.ExitCode != 0:
		return fmt.Errorf("%w: %s", ErrInstallFailed, formatCommandError(operation, res))
	}
	return nil
}

// ClassifyLaunch returns an ErrExecutionFault for results whose process never
// ran, or nil when the command produced output worth parsing
func ClassifyLaunch(operation string, res *executor.Result) error {
	if res.Err == nil {
		return nil
	}
	if errors.Is(res.Err, executor.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", operation, ErrExecutionFault, ErrToolNotFound)
	}
	return fmt.Errorf("%s: %w: %v", operation, ErrExecutionFault, res.Err)
}

func formatCommandError(operation string, res *executor.Result) error {
	var details []string
	details = append(details, fmt.Sprintf("exit_code=%d", res.ExitCode))
	if tail := TailLines(res.Stderr, 5); tail != "" {
		details = append(details, fmt.Sprintf("stderr=%q", tail))
	} else if tail := TailLines(res.Stdout, 5); tail != "" {
		details = append(details, fmt.Sprintf("stdout=%q", tail))
	}
	return fmt.Errorf("%s: %s", operation, strings.Join(details, ", "))
}
