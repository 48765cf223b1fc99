package detector

import (
	"math"

	"sdkbench/pkg/runtime"
)

// MarkerBuilder provides a fluent API for collecting detection evidence.
// Each check that hits appends one marker; confidence is derived from the
// marker count when Build is called.
type MarkerBuilder struct {
	runner    string
	language  runtime.Language
	framework runtime.Framework
	evidence  []string
	fs        *FSReader
}

// NewMarkerBuilder creates a builder for one runner's heuristic
func NewMarkerBuilder(runner string, language runtime.Language, fs *FSReader) *MarkerBuilder {
	return &MarkerBuilder{
		runner:   runner,
		language: language,
		evidence: []string{},
		fs:       fs,
	}
}

// CheckFile records marker if path exists
func (b *MarkerBuilder) CheckFile(path, marker string) *MarkerBuilder {
	if b.fs.Has(path) {
		b.evidence = append(b.evidence, marker)
	}
	return b
}

// CheckAnyFile records marker once if any of the paths exist
func (b *MarkerBuilder) CheckAnyFile(paths []string, marker string) *MarkerBuilder {
	for _, p := range paths {
		if b.fs.Has(p) {
			b.evidence = append(b.evidence, marker)
			return b
		}
	}
	return b
}

// CheckGlob records marker once if any scanned file matches one of the patterns
func (b *MarkerBuilder) CheckGlob(patterns []string, marker string) *MarkerBuilder {
	for _, pattern := range patterns {
		if len(b.fs.Glob(pattern)) > 0 {
			b.evidence = append(b.evidence, marker)
			return b
		}
	}
	return b
}

// CheckCondition records marker if condition holds
func (b *MarkerBuilder) CheckCondition(condition bool, marker string) *MarkerBuilder {
	if condition {
		b.evidence = append(b.evidence, marker)
	}
	return b
}

// WithFramework sets the framework reported in the result
func (b *MarkerBuilder) WithFramework(fw runtime.Framework) *MarkerBuilder {
	b.framework = fw
	return b
}

// Build finalizes the result. confidence = min(1, markers*weight) and the
// directory counts as detected once at least minMarkers were found.
func (b *MarkerBuilder) Build(weight float64, minMarkers int) DetectionResult {
	n := len(b.evidence)
	res := DetectionResult{
		Detected:   n > 0 && n >= minMarkers,
		Confidence: round(math.Min(1.0, float64(n)*weight)),
		Evidence:   b.evidence,
		Runner:     b.runner,
	}
	if res.Detected {
		res.Language = b.language
		res.Framework = b.framework
	}
	return res
}

// round trims float noise such as 0.30000000000000004
func round(x float64) float64 {
	return math.Round(x*1000) / 1000
}
