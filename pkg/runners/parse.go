package runners

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sdkbench/pkg/executor"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// StripANSI removes terminal escape sequences
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// TailLines returns the last n non-empty lines of s
func TailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			kept = append([]string{lines[i]}, kept...)
		}
	}
	return strings.Join(kept, "\n")
}

// Atoi parses a regexp capture, returning 0 for anything unparseable
func Atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// IntPtr returns a pointer to a line number, or nil when n is not positive
func IntPtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// Finalize enforces the result invariants. A found summary fixes
// total = passed + failed + skipped, with failed raised to the number of
// parsed failures when a suite-level error was not counted. Without one the failures are the only
// evidence: total = failed = len(failures), with a synthetic failure added
// when nothing could be parsed at all. Success requires a clean exit, zero
// failures and a found summary.
func Finalize(r *TestResult, exitCode int) *TestResult {
	if r.SummaryFound {
		if r.Failed < len(r.Failures) {
			r.Failed = len(r.Failures)
		}
		r.Total = r.Passed + r.Failed + r.Skipped
	} else {
		if len(r.Failures) == 0 {
			r.Failures = append(r.Failures, TestFailure{
				TestName:     "output",
				ErrorMessage: fmt.Sprintf("%v (exit code %d)", ErrNoSummary, exitCode),
				StackTrace:   TailLines(r.RawOutput, 20),
			})
		}
		r.Passed, r.Skipped = 0, 0
		r.Failed = len(r.Failures)
		r.Total = r.Failed
	}
	r.Success = exitCode == 0 && r.Failed == 0 && r.SummaryFound
	return r
}

// TimeoutResult reports a killed test command. Partial output is kept for
// diagnostics but never parsed into counts.
func TimeoutResult(res *executor.Result, timeout time.Duration) *TestResult {
	output := StripANSI(res.Combined())
	return &TestResult{
		Success:   false,
		Total:     1,
		Failed:    1,
		Duration:  res.Duration,
		RawOutput: output,
		TimedOut:  true,
		Truncated: res.Truncated,
		Failures: []TestFailure{{
			TestName:     "timeout",
			ErrorMessage: fmt.Sprintf("Test execution timed out after %gs", timeout.Seconds()),
			StackTrace:   TailLines(output, 20),
		}},
	}
}
