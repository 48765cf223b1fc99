// Package typescript runs Jest, Vitest and Mocha suites for TypeScript and
// JavaScript projects.
package typescript

import (
	"context"

	"go.uber.org/zap"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/executor"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runtime"
)

const (
	Name = "typescript"

	markerWeight = 0.2
	minMarkers   = 2
)

var (
	testFilePatterns = []string{
		"**/*.test.ts", "**/*.test.tsx", "**/*.test.js", "**/*.test.mjs",
		"**/*.spec.ts", "**/*.spec.tsx", "**/*.spec.js", "**/*.spec.mjs",
	}
	jestConfigs   = []string{"jest.config.js", "jest.config.ts", "jest.config.cjs", "jest.config.mjs", "jest.config.json"}
	vitestConfigs = []string{"vitest.config.ts", "vitest.config.js", "vitest.config.mts", "vitest.config.mjs"}
	mochaConfigs  = []string{".mocharc.json", ".mocharc.js", ".mocharc.cjs", ".mocharc.yml", ".mocharc.yaml"}
)

// Runner detects and tests Node projects
type Runner struct {
	dir string
	env runners.Env
	fs  *detector.FSReader
}

// New is the runners.Factory for TypeScript and JavaScript projects
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

// Detect requires package.json plus at least one corroborating marker.
// The framework comes from declared dependencies before the test script.
func (r *Runner) Detect() detector.DetectionResult {
	if r.dir == "" {
		return detector.NotDetected(Name)
	}

	pkg := detector.ParsePackageJSON(r.fs)
	framework, source := detector.DetectTestFramework(pkg)

	lang := runtime.LanguageJavaScript
	if detector.UsesTypeScript(r.fs, pkg) {
		lang = runtime.LanguageTypeScript
	}

	b := detector.NewMarkerBuilder(Name, lang, r.fs).
		CheckFile("package.json", "package.json").
		CheckFile("tsconfig.json", "tsconfig.json").
		CheckAnyFile(jestConfigs, "jest config").
		CheckAnyFile(vitestConfigs, "vitest config").
		CheckAnyFile(mochaConfigs, "mocha config").
		CheckGlob(testFilePatterns, "test files (*.test.*, *.spec.*)").
		CheckCondition(pkg.Valid && source != "default", string(framework)+" from "+source).
		WithFramework(framework)

	if !r.fs.Has("package.json") {
		res := b.Build(markerWeight, minMarkers)
		res.Detected, res.Language, res.Framework = false, runtime.LanguageUnknown, runtime.FrameworkUnknown
		return res
	}
	return b.Build(markerWeight, minMarkers)
}

// Framework returns the test framework this project runs with
func (r *Runner) Framework() runtime.Framework {
	fw, _ := detector.DetectTestFramework(detector.ParsePackageJSON(r.fs))
	return fw
}

// RunTests runs the detected framework through npx and parses its output
func (r *Runner) RunTests(ctx context.Context, testDir string) (*runners.TestResult, error) {
	framework := r.Framework()

	var (
		args  []string
		parse func(string) *runners.TestResult
	)
	switch framework {
	case runtime.FrameworkVitest:
		args = []string{"vitest", "run", "--reporter=default"}
		parse = ParseVitest
	case runtime.FrameworkMocha:
		args = []string{"mocha", "--reporter", "spec", "--no-colors"}
		if testDir != "" {
			args = append(args, "--recursive")
		}
		parse = ParseMocha
	default:
		args = []string{"jest", "--ci", "--colors=false"}
		parse = ParseJest
	}
	if testDir != "" {
		args = append(args, testDir)
	}

	cmd := executor.Command{
		Name:    "npx",
		Args:    args,
		Dir:     r.dir,
		Env:     runners.CIEnv(),
		Timeout: r.env.TestTimeout,
	}
	r.env.Logger.Info("Running Node tests",
		zap.String("dir", r.dir),
		zap.String("framework", string(framework)),
		zap.String("command", cmd.String()))

	return runners.Execute(ctx, r.env, cmd, parse)
}
