package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/fcorr"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runtime"
)

func TestResultShowsCountsAndScore(t *testing.T) {
	line := 12
	r := &fcorr.Result{
		Score:     0,
		Language:  runtime.LanguagePython,
		Framework: runtime.FrameworkPytest,
		Policy:    "strict",
		InstallResult: &runners.DependencyInstallResult{
			Success:      true,
			Duration:     2 * time.Second,
			PackageCount: 4,
		},
		TestResult: &runners.TestResult{
			Total:    4,
			Passed:   3,
			Failed:   1,
			Duration: 1200 * time.Millisecond,
			Failures: []runners.TestFailure{{
				TestName:     "tests/test_client.py.test_retry",
				ErrorMessage: "AssertionError: assert 500 == 200\nmore",
				FilePath:     "tests/test_client.py",
				LineNumber:   &line,
			}},
		},
	}

	out := Result(r)
	for _, want := range []string{"python", "pytest", "strict", "4 packages", "3 passed", "1 failed", "test_retry", "tests/test_client.py:12", "AssertionError", "0.00"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "more")
	assert.NotContains(t, out, "Error:")
}

func TestResultShowsError(t *testing.T) {
	out := Result(&fcorr.Result{Policy: "strict", Error: fcorr.NoRunnerMessage})
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "No compatible test runner")
}

func TestResultCapsFailures(t *testing.T) {
	tr := &runners.TestResult{Failed: 12, Total: 12}
	for i := 0; i < 12; i++ {
		tr.Failures = append(tr.Failures, runners.TestFailure{TestName: "case"})
	}
	out := Result(&fcorr.Result{Policy: "strict", TestResult: tr})
	assert.Equal(t, maxFailures, strings.Count(out, "✗"))
	assert.Contains(t, out, "2 more")
}

func TestDetections(t *testing.T) {
	results := []detector.DetectionResult{
		{Runner: "python", Detected: true, Language: runtime.LanguagePython, Framework: runtime.FrameworkPytest, Confidence: 0.5, Evidence: []string{"requirements.txt"}},
		{Runner: "typescript", Evidence: []string{}},
	}
	out := Detections("/work/sample", results,
		map[string][]string{"python": {"python3|python"}},
		map[string][]string{"python": {".venv"}})
	assert.Contains(t, out, "/work/sample")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "requirements.txt")
	assert.Contains(t, out, "missing: python3|python")
	assert.Contains(t, out, "installed: .venv")
	assert.Contains(t, out, "typescript")
}

func TestBatch(t *testing.T) {
	msg := "Test execution failed: boom"
	b := &fcorr.BatchReport{
		SDK:       "acme",
		Policy:    "strict",
		Evaluated: 2,
		Passed:    1,
		MeanScore: 50,
		Samples: []fcorr.SampleResult{
			{Sample: "basic", Result: fcorr.Report{Score: 100}},
			{Sample: "broken", Result: fcorr.Report{Error: &msg}},
			{Sample: "legacy", Skipped: true},
		},
	}
	out := Batch(b)
	assert.Contains(t, out, "SDK acme")
	assert.Contains(t, out, "basic")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "legacy (skipped)")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "50.00")
}
