package fcorr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ManifestFile optionally sits next to a sample's solution directory and
// adjusts how that sample is evaluated
const ManifestFile = "sample.yaml"

// SampleManifest is the per-sample override file
type SampleManifest struct {
	TestDir string `yaml:"test_dir"`
	Skip    bool   `yaml:"skip"`
	Reason  string `yaml:"reason"`
}

// BatchTarget locates the samples of one SDK
type BatchTarget struct {
	SamplesDir  string
	SDK         string
	SolutionDir string
	Concurrency int
}

// SampleResult is one sample's evaluation inside a batch
type SampleResult struct {
	Sample  string `json:"sample" yaml:"sample"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Result  Report `json:"result" yaml:"result"`

	result *Result
}

// Evaluation returns the full result behind the report
func (s SampleResult) Evaluation() *Result {
	return s.result
}

// BatchReport aggregates an SDK-wide evaluation
type BatchReport struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	SDK       string         `json:"sdk" yaml:"sdk"`
	Policy    string         `json:"policy" yaml:"policy"`
	Samples   []SampleResult `json:"samples" yaml:"samples"`
	Evaluated int            `json:"evaluated" yaml:"evaluated"`
	Passed    int            `json:"passed" yaml:"passed"`
	MeanScore float64        `json:"mean_score" yaml:"mean_score"`
	Duration  float64        `json:"duration" yaml:"duration"`
}

// DiscoverSamples returns <samples>/<sdk>/*/<solution> directories, sorted
func DiscoverSamples(t BatchTarget) ([]string, error) {
	pattern := filepath.Join(t.SamplesDir, t.SDK, "*", t.SolutionDir)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid sample pattern %s: %w", pattern, err)
	}

	var dirs []string
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.IsDir() {
			dirs = append(dirs, m)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no samples found matching %s", pattern)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// LoadManifest reads the manifest for a solution directory. A missing file
// yields an empty manifest.
func LoadManifest(solutionDir string) (SampleManifest, error) {
	var m SampleManifest
	data, err := os.ReadFile(filepath.Join(filepath.Dir(solutionDir), ManifestFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	return m, nil
}

// EvaluateBatch evaluates every sample of an SDK with at most
// t.Concurrency evaluations in flight. Each sample uses its own directory.
func (e *Evaluator) EvaluateBatch(ctx context.Context, t BatchTarget) (*BatchReport, error) {
	start := time.Now()
	dirs, err := DiscoverSamples(t)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		RunID:   uuid.NewString(),
		SDK:     t.SDK,
		Policy:  e.opts.Policy(),
		Samples: make([]SampleResult, len(dirs)),
	}
	log := e.logger.With(zap.String("batch_id", report.RunID), zap.String("sdk", t.SDK))
	log.Info("Starting batch evaluation", zap.Int("samples", len(dirs)), zap.Int("concurrency", t.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	if t.Concurrency > 0 {
		g.SetLimit(t.Concurrency)
	}
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			name := filepath.Base(filepath.Dir(dir))
			manifest, err := LoadManifest(dir)
			if err != nil {
				log.Warn("Ignoring unreadable sample manifest", zap.String("sample", name), zap.Error(err))
			}
			if manifest.Skip {
				log.Info("Skipping sample", zap.String("sample", name), zap.String("reason", manifest.Reason))
				report.Samples[i] = SampleResult{Sample: name, Skipped: true}
				return nil
			}

			opts := e.opts
			if manifest.TestDir != "" {
				opts.TestDir = manifest.TestDir
			}
			res := e.EvaluateWith(gctx, dir, opts)
			report.Samples[i] = SampleResult{Sample: name, Result: res.Report(), result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total float64
	for _, s := range report.Samples {
		if s.Skipped {
			continue
		}
		report.Evaluated++
		total += s.Result.Score
		if s.result.Passed() {
			report.Passed++
		}
	}
	if report.Evaluated > 0 {
		report.MeanScore = total / float64(report.Evaluated)
	}
	report.Duration = seconds(time.Since(start))

	log.Info("Batch evaluation finished",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("passed", report.Passed),
		zap.Float64("mean_score", report.MeanScore))
	return report, nil
}

// WriteReport writes v as YAML for .yaml/.yml paths and as indented JSON
// otherwise
func WriteReport(path string, v any) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
