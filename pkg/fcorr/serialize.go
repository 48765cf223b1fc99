package fcorr

import (
	"encoding/json"
	"math"
	"time"

	"sdkbench/pkg/runners"
)

// Report is the stable wire shape of a Result. Durations are seconds and
// error is null on success.
type Report struct {
	RunID          string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Dir            string         `json:"dir,omitempty" yaml:"dir,omitempty"`
	Score          float64        `json:"score" yaml:"score"`
	Language       *string        `json:"language" yaml:"language"`
	Framework      *string        `json:"framework" yaml:"framework"`
	TestResults    *TestReport    `json:"test_results" yaml:"test_results"`
	InstallResults *InstallReport `json:"install_results" yaml:"install_results"`
	Error          *string        `json:"error" yaml:"error"`
	Duration       float64        `json:"duration" yaml:"duration"`
}

// TestReport is the wire shape of runners.TestResult
type TestReport struct {
	Success  bool            `json:"success" yaml:"success"`
	Total    int             `json:"total" yaml:"total"`
	Passed   int             `json:"passed" yaml:"passed"`
	Failed   int             `json:"failed" yaml:"failed"`
	Skipped  int             `json:"skipped" yaml:"skipped"`
	Duration float64         `json:"duration" yaml:"duration"`
	Failures []FailureReport `json:"failures" yaml:"failures"`
}

// FailureReport is the wire shape of runners.TestFailure
type FailureReport struct {
	TestName     string  `json:"test_name" yaml:"test_name"`
	ErrorMessage string  `json:"error_message" yaml:"error_message"`
	FilePath     *string `json:"file_path" yaml:"file_path"`
	LineNumber   *int    `json:"line_number" yaml:"line_number"`
	StackTrace   *string `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
}

// InstallReport is the wire shape of runners.DependencyInstallResult
type InstallReport struct {
	Success      bool    `json:"success" yaml:"success"`
	Duration     float64 `json:"duration" yaml:"duration"`
	PackageCount int     `json:"package_count" yaml:"package_count"`
	Error        *string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report converts the result into its wire shape
func (r *Result) Report() Report {
	rep := Report{
		RunID:    r.RunID,
		Dir:      r.Dir,
		Score:    r.Score,
		Duration: seconds(r.Duration),
	}
	rep.Language = optional(string(r.Language))
	rep.Framework = optional(string(r.Framework))
	rep.Error = optional(r.Error)
	if r.TestResult != nil {
		rep.TestResults = testReport(r.TestResult)
	}
	if r.InstallResult != nil {
		rep.InstallResults = &InstallReport{
			Success:      r.InstallResult.Success,
			Duration:     seconds(r.InstallResult.Duration),
			PackageCount: r.InstallResult.PackageCount,
			Error:        optional(r.InstallResult.ErrorString()),
		}
	}
	return rep
}

// MarshalJSON encodes the result in its wire shape
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Report())
}

func testReport(tr *runners.TestResult) *TestReport {
	rep := &TestReport{
		Success:  tr.Success,
		Total:    tr.Total,
		Passed:   tr.Passed,
		Failed:   tr.Failed,
		Skipped:  tr.Skipped,
		Duration: seconds(tr.Duration),
		Failures: make([]FailureReport, 0, len(tr.Failures)),
	}
	for _, f := range tr.Failures {
		rep.Failures = append(rep.Failures, FailureReport{
			TestName:     f.TestName,
			ErrorMessage: f.ErrorMessage,
			FilePath:     optional(f.FilePath),
			LineNumber:   f.LineNumber,
			StackTrace:   optional(f.StackTrace),
		})
	}
	return rep
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
