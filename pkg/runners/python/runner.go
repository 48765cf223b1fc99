// Package python runs pytest suites.
package python

import (
	"context"

	"go.uber.org/zap"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/executor"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runtime"
)

const (
	Name = "python"

	markerWeight = 0.25
	minMarkers   = 1
)

var testFilePatterns = []string{"**/test_*.py", "**/*_test.py"}

// Runner detects and tests pytest projects
type Runner struct {
	dir    string
	env    runners.Env
	fs     *detector.FSReader
	python string
}

// New is the runners.Factory for Python projects
func New(dir string, env runners.Env) runners.Runner {
	return &Runner{
		dir:    dir,
		env:    env.WithDefaults(),
		fs:     detector.NewDirReader(dir),
		python: runtime.FirstOnPath("python3", "python3", "python"),
	}
}

func (r *Runner) Name() string {
	return Name
}

// Detect looks for Python manifests, pytest configuration and test files
func (r *Runner) Detect() detector.DetectionResult {
	if r.dir == "" {
		return detector.NotDetected(Name)
	}
	return r.detectWith(r.fs)
}

func (r *Runner) detectWith(fs *detector.FSReader) detector.DetectionResult {
	return detector.NewMarkerBuilder(Name, runtime.LanguagePython, fs).
		CheckFile("requirements.txt", "requirements.txt").
		CheckFile("setup.py", "setup.py").
		CheckFile("pyproject.toml", "pyproject.toml").
		CheckFile("pytest.ini", "pytest.ini").
		CheckFile("conftest.py", "conftest.py").
		CheckGlob(testFilePatterns, "test files (test_*.py)").
		CheckAnyFile([]string{"poetry.lock", "uv.lock", "Pipfile.lock"}, "python lockfile").
		WithFramework(runtime.FrameworkPytest).
		Build(markerWeight, minMarkers)
}

// RunTests runs pytest in verbose, short-traceback mode. Without a hint the
// tests/ directory is used when present, otherwise pytest discovers tests.
func (r *Runner) RunTests(ctx context.Context, testDir string) (*runners.TestResult, error) {
	args := []string{"-m", "pytest", "-v", "--tb=short", "-rfE"}
	switch {
	case testDir != "":
		args = append(args, testDir)
	case r.fs.DirExists("tests"):
		args = append(args, "tests")
	}

	cmd := executor.Command{
		Name:    r.python,
		Args:    args,
		Dir:     r.dir,
		Env:     append(runners.CIEnv(), "PYTHONDONTWRITEBYTECODE=1"),
		Timeout: r.env.TestTimeout,
	}
	r.env.Logger.Info("Running pytest", zap.String("dir", r.dir), zap.String("command", cmd.String()))

	return runners.Execute(ctx, r.env, cmd, ParseOutput)
}
