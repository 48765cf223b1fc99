package fcorr

import (
	"time"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runtime"
)

// State is a step of the evaluation state machine
type State string

const (
	StateNotDetected   State = "not_detected"
	StateDetected      State = "detected"
	StateInstalling    State = "installing"
	StateInstalled     State = "installed"
	StateInstallFailed State = "install_failed"
	StateTestingRun    State = "testing_run"
	StateScored        State = "scored"
)

// Result is the terminal artifact of one evaluation. Error is empty on
// success; Err carries the same failure for errors.Is classification.
type Result struct {
	RunID         string
	Dir           string
	Score         float64
	Language      runtime.Language
	Framework     runtime.Framework
	Detection     detector.DetectionResult
	TestResult    *runners.TestResult
	InstallResult *runners.DependencyInstallResult
	Error         string
	Err           error
	Duration      time.Duration
	Policy        string
	// States records every state visited, ending in StateScored
	States []State
}

// Passed reports whether the evaluation earned a non-zero score without error
func (r *Result) Passed() bool {
	return r.Error == "" && r.Score > 0
}

// State returns the last state reached
func (r *Result) State() State {
	if len(r.States) == 0 {
		return StateNotDetected
	}
	return r.States[len(r.States)-1]
}
