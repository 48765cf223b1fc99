package runners

import "time"

// TestFailure describes one failing test extracted from runner output
type TestFailure struct {
	TestName     string
	ErrorMessage string
	FilePath     string
	LineNumber   *int
	StackTrace   string
}

// TestResult is the normalized outcome of a test run. When SummaryFound is
// true, Total == Passed + Failed + Skipped.
type TestResult struct {
	Success      bool
	Total        int
	Passed       int
	Failed       int
	Skipped      int
	Duration     time.Duration
	RawOutput    string
	Failures     []TestFailure
	SummaryFound bool
	TimedOut     bool
	Truncated    bool
}

// PassRate returns passed/total as a fraction, or 0 for an empty suite
func (r *TestResult) PassRate() float64 {
	if r == nil || r.Total <= 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// DependencyInstallResult is the outcome of one install attempt
type DependencyInstallResult struct {
	Success      bool
	Duration     time.Duration
	Output       string
	Err          error
	PackageCount int
	// Skipped is set when an existing install artifact short-circuited the install
	Skipped bool
}

// ErrorString returns the install error text, or "" on success
func (r *DependencyInstallResult) ErrorString() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
