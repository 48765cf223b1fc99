package python

import (
	"bufio"
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"sdkbench/pkg/executor"
	"sdkbench/pkg/runners"
)

var pipInstalledPattern = regexp.MustCompile(`(?m)^Successfully installed (.+)$`)

// InstallDependencies installs requirements.txt when present, otherwise the
// project itself in editable mode. A project with neither needs nothing.
func (r *Runner) InstallDependencies(ctx context.Context) *runners.DependencyInstallResult {
	var (
		args      []string
		operation string
		declared  int
	)
	switch {
	case r.fs.Has("requirements.txt"):
		args = []string{"-m", "pip", "install", "-r", "requirements.txt"}
		operation = "pip install -r requirements.txt"
		declared = countRequirements(r.fs.Read("requirements.txt"))
	case r.fs.Has("setup.py") || r.fs.Has("pyproject.toml"):
		args = []string{"-m", "pip", "install", "-e", "."}
		operation = "pip install -e ."
		declared = 1
	default:
		r.env.Logger.Info("No Python manifest found, nothing to install", zap.String("dir", r.dir))
		return &runners.DependencyInstallResult{Success: true}
	}

	cmd := executor.Command{
		Name:    r.python,
		Args:    append(args, "--disable-pip-version-check", "--no-input"),
		Dir:     r.dir,
		Env:     []string{"PIP_NO_COLOR=1"},
		Timeout: r.env.InstallTimeout,
	}
	r.env.Logger.Info("Installing Python dependencies", zap.String("dir", r.dir), zap.String("command", cmd.String()))

	start := time.Now()
	res := r.env.Exec.Run(ctx, cmd)
	result := &runners.DependencyInstallResult{
		Duration: time.Since(start),
		Output:   res.Combined(),
	}
	if err := runners.ClassifyInstall(operation, res); err != nil {
		result.Err = err
		r.env.Logger.Warn("Python dependency install failed", zap.Error(err))
		return result
	}

	result.Success = true
	result.PackageCount = declared
	if n := countInstalled(res.Stdout); n > 0 {
		result.PackageCount = n
	}
	return result
}

// countRequirements counts requirement lines, ignoring comments, blank
// lines and pip options such as "-r other.txt" or "--index-url"
func countRequirements(content string) int {
	count := 0
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		count++
	}
	return count
}

// countInstalled reads pip's "Successfully installed a-1.0 b-2.0" line
func countInstalled(output string) int {
	m := pipInstalledPattern.FindStringSubmatch(output)
	if m == nil {
		return 0
	}
	return len(strings.Fields(m[1]))
}
