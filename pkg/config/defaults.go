package config

import "time"

// Timeouts & Durations
const (
	// DefaultTestTimeout bounds a single test command
	DefaultTestTimeout = 300 * time.Second // 5 minutes

	// DefaultInstallTimeout bounds a dependency install; installs are slower than test runs
	DefaultInstallTimeout = 600 * time.Second // 10 minutes
)

// Limits
const (
	// DefaultMaxOutputBytes caps captured stdout and stderr per command
	DefaultMaxOutputBytes = 1 << 20

	// DefaultConcurrency is the number of samples evaluated at once in batch mode
	DefaultConcurrency = 4
)

// Sample Layout
const (
	// DefaultSamplesDir holds <sdk>/<sample>/ directories
	DefaultSamplesDir = "samples"

	// DefaultSolutionDir is the directory inside each sample that gets evaluated
	DefaultSolutionDir = "expected"
)

// Config Discovery
const (
	// ConfigName is the config file name without extension
	ConfigName = "sdkbench"

	// EnvPrefix prefixes environment overrides, e.g. SDKBENCH_FCORR_STRICT
	EnvPrefix = "SDKBENCH"
)

// File Permissions
const (
	// PermReportFile is the file permission for written reports
	PermReportFile = 0644
)
