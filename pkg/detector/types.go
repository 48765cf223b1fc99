package detector

import "sdkbench/pkg/runtime"

// DetectionResult is what a runner's heuristic concluded about a directory.
// It is built fresh on every call and never mutated afterwards.
type DetectionResult struct {
	Detected   bool              `json:"detected"`
	Language   runtime.Language  `json:"language,omitempty"`
	Framework  runtime.Framework `json:"framework,omitempty"`
	Confidence float64           `json:"confidence"`
	Evidence   []string          `json:"evidence"`
	Runner     string            `json:"runner,omitempty"`
}

// NotDetected returns an empty result attributed to runner
func NotDetected(runner string) DetectionResult {
	return DetectionResult{Runner: runner, Evidence: []string{}}
}
