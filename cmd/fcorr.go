package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sdkbench/cmd/flags"
	"sdkbench/cmd/ui/report"
	"sdkbench/cmd/ui/spinner"
	"sdkbench/pkg/executor"
	"sdkbench/pkg/fcorr"
	"sdkbench/pkg/observability"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runners/builtin"
	"sdkbench/pkg/util"
)

var (
	noInstall      bool
	lenient        bool
	testDir        string
	timeoutSeconds int
	outputPath     string
)

var fcorrCmd = &cobra.Command{
	Use:   "fcorr (--solution DIR | --sdk NAME | --dir DIR)",
	Short: "Run a project's tests and score its functional correctness",
	Long: `Detect the project's language and test framework, install its dependencies,
run the test suite under a timeout and score the outcome.

Targets:
  --solution DIR  a sample directory; its solution subdirectory is used when present
  --sdk NAME      every sample of an SDK under the samples directory
  --dir DIR       any project directory

Scoring is strict by default: 100 for a fully passing suite, 0 otherwise.
--lenient scores the pass rate instead.`,
	Args: cobra.NoArgs,
	RunE: runFCorr,
}

func runFCorr(cmd *cobra.Command, args []string) error {
	target, err := flags.PickTarget(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.GetLogger()
	evaluator := newEvaluator(logger)

	if target.Kind == flags.SDK {
		return runBatch(ctx, cmd.OutOrStdout(), evaluator, target.Value)
	}

	dir, err := resolveTarget(target)
	if err != nil {
		return err
	}

	var result *fcorr.Result
	withSpinner(fmt.Sprintf("Evaluating %s...", dir), func(status func(string)) {
		opts := evaluator.Options()
		opts.OnTransition = func(s fcorr.State) {
			if msg := stateMessage(s); msg != "" {
				status(msg)
			}
		}
		result = evaluator.EvaluateWith(ctx, dir, opts)
	})

	if outputPath != "" {
		if err := fcorr.WriteReport(outputPath, result.Report()); err != nil {
			return err
		}
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Result(result))
	return nil
}

func runBatch(ctx context.Context, out io.Writer, evaluator *fcorr.Evaluator, sdk string) error {
	target := fcorr.BatchTarget{
		SamplesDir:  cfg.FCorr.SamplesDir,
		SDK:         sdk,
		SolutionDir: cfg.FCorr.SolutionDir,
		Concurrency: cfg.FCorr.Concurrency,
	}

	var (
		batch *fcorr.BatchReport
		err   error
	)
	withSpinner(fmt.Sprintf("Evaluating %s samples...", sdk), func(func(string)) {
		batch, err = evaluator.EvaluateBatch(ctx, target)
	})
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := fcorr.WriteReport(outputPath, batch); err != nil {
			return err
		}
	}
	if jsonOutput {
		return printJSON(out, batch)
	}
	fmt.Fprint(out, report.Batch(batch))
	if outputPath != "" {
		fmt.Fprintln(out, tipMsgStyle.Render("Report written to "+outputPath))
	}
	return nil
}

func newEvaluator(logger *zap.Logger) *fcorr.Evaluator {
	exec := executor.New(
		executor.WithMaxOutputBytes(cfg.FCorr.MaxOutputBytes),
		executor.WithLogger(logger),
	)
	registry := builtin.NewRegistry(runners.Env{
		Exec:           exec,
		Logger:         logger,
		TestTimeout:    cfg.FCorr.TestTimeout,
		InstallTimeout: cfg.FCorr.InstallTimeout,
	})

	opts := fcorr.Options{
		AutoInstall: cfg.FCorr.AutoInstall && !noInstall,
		Strict:      cfg.FCorr.Strict && !lenient,
		TestDir:     testDir,
	}
	if timeoutSeconds > 0 {
		opts.TestTimeout = time.Duration(timeoutSeconds) * time.Second
	}
	return fcorr.NewEvaluator(registry, logger, opts)
}

func resolveTarget(target flags.Target) (string, error) {
	if target.Kind == flags.Solution {
		return util.ResolveSolutionDir(target.Value, cfg.FCorr.SolutionDir)
	}
	return util.ValidateProjectPath(target.Value)
}

// withSpinner runs fn behind a spinner when stdout is an interactive
// terminal and neither JSON output nor debug logging is on. fn may update
// the spinner text through status.
func withSpinner(message string, fn func(status func(string))) {
	if jsonOutput || verbose || !isTerminal() {
		fn(func(string) {})
		return
	}
	s := spinner.Start(message, os.Stdout)
	fn(s.Status)
	s.Stop()
}

// stateMessage is the spinner text for an evaluation state
func stateMessage(s fcorr.State) string {
	switch s {
	case fcorr.StateDetected:
		return "Runner detected..."
	case fcorr.StateInstalling:
		return "Installing dependencies..."
	case fcorr.StateTestingRun:
		return "Running tests..."
	default:
		return ""
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	f := fcorrCmd.Flags()
	f.String(string(flags.Solution), "", "Sample directory to evaluate")
	f.String(string(flags.SDK), "", "SDK whose samples are evaluated in batch")
	f.String(string(flags.Dir), "", "Project directory to evaluate")
	fcorrCmd.MarkFlagsMutuallyExclusive(flags.AllowedTargets...)
	fcorrCmd.MarkFlagsOneRequired(flags.AllowedTargets...)

	f.BoolVar(&noInstall, "no-install", false, "Skip dependency installation")
	f.BoolVar(&lenient, "lenient", false, "Score the pass rate instead of all-or-nothing")
	f.StringVar(&testDir, "test-dir", "", "Run only the tests under this directory")
	f.IntVar(&timeoutSeconds, "timeout", 0, "Test timeout in seconds (default from fcorr.test_timeout)")
	f.StringVarP(&outputPath, "output", "o", "", "Write the report to FILE (.yaml/.yml for YAML, JSON otherwise)")
	f.Int("concurrency", 0, "Samples evaluated in parallel with --sdk")
	f.String("samples-dir", "", "Root of the samples tree for --sdk")
	f.String("solution-dir", "", "Solution subdirectory inside each sample")
}
