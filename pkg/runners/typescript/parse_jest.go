package typescript

import (
	"regexp"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	jestSummaryPattern = regexp.MustCompile(`^\s*Tests:\s+(.*)$`)
	jestCountPattern   = regexp.MustCompile(`(\d+) (failed|skipped|todo|passed|total)`)
	jestBulletPattern  = regexp.MustCompile(`^\s*● (.+)$`)
	jestBoundary       = regexp.MustCompile(`^\s*(PASS|FAIL) |^\s*(Test Suites|Tests|Snapshots|Time|Ran all test suites)[:.]?`)
)

// ParseJest reads "Tests: 2 failed, 1 skipped, 5 passed, 8 total" and the
// "● Suite › test" failure blocks. todo tests count as skipped.
func ParseJest(output string) *runners.TestResult {
	result := &runners.TestResult{}
	lines := strings.Split(output, "\n")

	for _, line := range lines {
		m := jestSummaryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counts := jestCountPattern.FindAllStringSubmatch(m[1], -1)
		if len(counts) == 0 {
			continue
		}
		result.SummaryFound = true
		result.Passed, result.Failed, result.Skipped = 0, 0, 0
		for _, c := range counts {
			n := runners.Atoi(c[1])
			switch c[2] {
			case "passed":
				result.Passed = n
			case "failed":
				result.Failed = n
			case "skipped", "todo":
				result.Skipped += n
			case "total":
				result.Total = n
			}
		}
	}

	seen := map[string]bool{}
	for i := 0; i < len(lines); i++ {
		m := jestBulletPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if strings.HasPrefix(name, "Console") {
			continue
		}

		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if jestBulletPattern.MatchString(lines[j]) || jestBoundary.MatchString(lines[j]) {
				break
			}
			body = append(body, lines[j])
		}
		i = j - 1

		if seen[name] {
			continue
		}
		seen[name] = true

		failure := runners.TestFailure{
			TestName:     name,
			ErrorMessage: firstNonEmpty(body),
			StackTrace:   joinBody(body),
		}
		applyLocation(&failure, body)
		result.Failures = append(result.Failures, failure)
	}

	return result
}
