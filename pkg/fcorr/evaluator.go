// Package fcorr evaluates functional correctness: it picks a runner for a
// project, installs dependencies, runs the test suite and scores the result.
package fcorr

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sdkbench/pkg/runners"
)

// NoRunnerMessage is the error reported when no runner recognizes a directory
const NoRunnerMessage = "No compatible test runner found"

// Evaluator drives one evaluation at a time per call. It holds no mutable
// state, so a single Evaluator may serve concurrent calls on disjoint
// directories.
type Evaluator struct {
	registry *runners.Registry
	logger   *zap.Logger
	opts     Options
}

// NewEvaluator creates an evaluator over registry. A nil logger disables logging.
func NewEvaluator(registry *runners.Registry, logger *zap.Logger, opts Options) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		registry: registry,
		logger:   logger.Named("fcorr"),
		opts:     opts,
	}
}

// Options returns the evaluator's default options
func (e *Evaluator) Options() Options {
	return e.opts
}

// Evaluate runs the evaluation for dir with the evaluator's options
func (e *Evaluator) Evaluate(ctx context.Context, dir string) *Result {
	return e.EvaluateWith(ctx, dir, e.opts)
}

// EvaluateWith runs NotDetected → Detected → [Installing → Installed] →
// TestingRun → Scored. Every failure ends in Scored with score 0 and a
// populated Error; nothing escapes as an error or panic.
func (e *Evaluator) EvaluateWith(ctx context.Context, dir string, opts Options) (res *Result) {
	start := time.Now()
	res = &Result{
		RunID:  uuid.NewString(),
		Dir:    dir,
		Policy: opts.Policy(),
		States: []State{StateNotDetected},
	}
	log := e.logger.With(zap.String("run_id", res.RunID), zap.String("dir", dir))
	step := func(next State) {
		e.transition(log, res, next)
		if opts.OnTransition != nil {
			opts.OnTransition(next)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("Runner panicked", zap.Any("panic", p))
			e.fail(res, fmt.Errorf("%w: panic: %v", runners.ErrExecutionFault, p), "Test execution failed")
			if res.State() != StateScored {
				step(StateScored)
			}
		}
		res.Duration = time.Since(start)
		log.Info("Evaluation finished",
			zap.Float64("score", res.Score),
			zap.String("policy", res.Policy),
			zap.String("error", res.Error),
			zap.Duration("duration", res.Duration))
	}()

	registry := e.registry
	if opts.TestTimeout > 0 {
		env := registry.Env()
		env.TestTimeout = opts.TestTimeout
		registry = registry.WithEnv(env)
	}

	runner, detection := registry.Detect(dir)
	res.Detection = detection
	if runner == nil {
		res.Err = runners.ErrNoRunner
		res.Error = NoRunnerMessage
		step(StateScored)
		return res
	}
	res.Language = detection.Language
	res.Framework = detection.Framework
	log = log.With(zap.String("language", string(res.Language)), zap.String("framework", string(res.Framework)))
	step(StateDetected)

	if opts.AutoInstall {
		step(StateInstalling)
		install := runner.InstallDependencies(ctx)
		res.InstallResult = install
		if install == nil || !install.Success {
			step(StateInstallFailed)
			err := runners.ErrInstallFailed
			if install != nil && install.Err != nil {
				err = install.Err
			}
			e.fail(res, err, "Dependency installation failed")
			step(StateScored)
			return res
		}
		step(StateInstalled)
	}

	step(StateTestingRun)
	tr, err := runner.RunTests(ctx, opts.TestDir)
	if err != nil {
		e.fail(res, err, "Test execution failed")
		step(StateScored)
		return res
	}
	res.TestResult = tr

	if tr.TimedOut {
		timeout := registry.Env().TestTimeout
		res.Err = runners.ErrTimeout
		res.Error = fmt.Sprintf("Test execution timed out after %gs", timeout.Seconds())
	}
	res.Score = Score(tr, opts.Strict)
	log.Info("Tests completed",
		zap.Int("total", tr.Total),
		zap.Int("passed", tr.Passed),
		zap.Int("failed", tr.Failed),
		zap.Int("skipped", tr.Skipped),
		zap.Bool("success", tr.Success))
	step(StateScored)
	return res
}

// fail records a terminal error with score 0
func (e *Evaluator) fail(res *Result, err error, prefix string) {
	res.Score = 0
	res.Err = err
	res.Error = prefix + ": " + err.Error()
}

func (e *Evaluator) transition(log *zap.Logger, res *Result, next State) {
	res.States = append(res.States, next)
	log.Info("State transition", zap.String("state", string(next)))
}
