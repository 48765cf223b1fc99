package typescript

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/executor"
	"sdkbench/pkg/runners"
)

// InstallDependencies runs the lockfile's package manager. An existing
// node_modules directory short-circuits to success so re-evaluation is cheap.
func (r *Runner) InstallDependencies(ctx context.Context) *runners.DependencyInstallResult {
	pkg := detector.ParsePackageJSON(r.fs)

	if r.fs.DirExists("node_modules") {
		r.env.Logger.Info("node_modules present, skipping install", zap.String("dir", r.dir))
		return &runners.DependencyInstallResult{
			Success:      true,
			Skipped:      true,
			PackageCount: len(pkg.AllDeps()),
			Output:       "node_modules already present",
		}
	}

	pm := detector.DetectJSPackageManager(r.fs)
	bin, args := detector.JSInstallArgs(pm)
	cmd := executor.Command{
		Name:    bin,
		Args:    args,
		Dir:     r.dir,
		Env:     runners.CIEnv(),
		Timeout: r.env.InstallTimeout,
	}
	r.env.Logger.Info("Installing Node dependencies",
		zap.String("dir", r.dir),
		zap.String("package_manager", pm),
		zap.Duration("timeout", cmd.Timeout))

	start := time.Now()
	res := r.env.Exec.Run(ctx, cmd)
	result := &runners.DependencyInstallResult{
		Duration: time.Since(start),
		Output:   res.Combined(),
	}
	if err := runners.ClassifyInstall(cmd.String(), res); err != nil {
		result.Err = err
		r.env.Logger.Warn("Node dependency install failed", zap.Error(err))
		return result
	}

	result.Success = true
	result.PackageCount = len(pkg.AllDeps())
	return result
}
