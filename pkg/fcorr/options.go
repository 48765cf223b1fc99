package fcorr

import "time"

// Options controls a single evaluation
type Options struct {
	// AutoInstall installs dependencies before running tests
	AutoInstall bool
	// Strict scores 100 only for a fully passing suite; otherwise the pass
	// rate is used
	Strict bool
	// TestDir narrows the test run to a directory inside the project
	TestDir string
	// TestTimeout overrides the registry's test timeout when positive
	TestTimeout time.Duration
	// OnTransition, when set, is called with every state the evaluation
	// enters, on the evaluating goroutine
	OnTransition func(State)
}

// DefaultOptions installs dependencies and scores strictly
func DefaultOptions() Options {
	return Options{AutoInstall: true, Strict: true}
}

// Policy names the scoring mode for logs and reports
func (o Options) Policy() string {
	if o.Strict {
		return "strict"
	}
	return "lenient"
}
