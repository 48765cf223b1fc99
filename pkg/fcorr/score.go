package fcorr

import (
	"math"

	"sdkbench/pkg/runners"
)

// Score reduces a test result to [0, 100]. Strict mode is all-or-nothing;
// lenient mode is the pass rate, and an empty suite scores 0 either way.
func Score(tr *runners.TestResult, strict bool) float64 {
	if tr == nil {
		return 0
	}
	if strict {
		if tr.Success && tr.Failed == 0 {
			return 100
		}
		return 0
	}
	if tr.Total <= 0 {
		return 0
	}
	return math.Round(tr.PassRate()*10000) / 100
}
