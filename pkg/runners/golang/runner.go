// Package golang runs "go test" suites.
package golang

import (
	"context"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/executor"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runtime"
)

const (
	Name = "go"

	markerWeight = 0.34
	minMarkers   = 2
)

// Runner detects and tests Go modules
type Runner struct {
	dir string
	env runners.Env
	fs  *detector.FSReader
}

// New is the runners.Factory for Go modules
func New(dir string, env runners.Env) runners.Runner {
	return &Runner{
		dir: dir,
		env: env.WithDefaults(),
		fs:  detector.NewDirReader(dir),
	}
}

func (r *Runner) Name() string {
	return Name
}

// Detect needs two of go.mod, go.sum and *_test.go files
func (r *Runner) Detect() detector.DetectionResult {
	if r.dir == "" {
		return detector.NotDetected(Name)
	}
	return detector.NewMarkerBuilder(Name, runtime.LanguageGo, r.fs).
		CheckFile("go.mod", "go.mod").
		CheckFile("go.sum", "go.sum").
		CheckGlob([]string{"**/*_test.go"}, "test files (*_test.go)").
		WithFramework(runtime.FrameworkGoTest).
		Build(markerWeight, minMarkers)
}

// InstallDependencies downloads modules listed in go.sum. A module without
// go.sum has nothing to fetch.
func (r *Runner) InstallDependencies(ctx context.Context) *runners.DependencyInstallResult {
	if !r.fs.Has("go.sum") {
		return &runners.DependencyInstallResult{Success: true}
	}

	cmd := executor.Command{
		Name:    "go",
		Args:    []string{"mod", "download"},
		Dir:     r.dir,
		Timeout: r.env.InstallTimeout,
	}
	r.env.Logger.Info("Downloading Go modules", zap.String("dir", r.dir))

	start := time.Now()
	res := r.env.Exec.Run(ctx, cmd)
	result := &runners.DependencyInstallResult{
		Duration: time.Since(start),
		Output:   res.Combined(),
	}
	if err := runners.ClassifyInstall("go mod download", res); err != nil {
		result.Err = err
		return result
	}
	result.Success = true
	result.PackageCount = countModules(r.fs.Read("go.sum"))
	return result
}

// RunTests runs "go test -v" over every package, or below testDir
func (r *Runner) RunTests(ctx context.Context, testDir string) (*runners.TestResult, error) {
	target := "./..."
	if testDir != "" {
		target = "./" + path.Join(strings.TrimPrefix(testDir, "./"), "...")
	}

	cmd := executor.Command{
		Name:    "go",
		Args:    []string{"test", "-v", "-count=1", target},
		Dir:     r.dir,
		Timeout: r.env.TestTimeout,
	}
	r.env.Logger.Info("Running go test", zap.String("dir", r.dir), zap.String("target", target))

	return runners.Execute(ctx, r.env, cmd, ParseOutput)
}

// countModules counts distinct module paths in go.sum
func countModules(sum string) int {
	seen := map[string]bool{}
	for _, line := range strings.Split(sum, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			seen[fields[0]] = true
		}
	}
	return len(seen)
}
