package typescript

import (
	"regexp"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	// "      Tests  1 failed | 2 passed | 1 skipped (4)"
	vitestSummaryPattern = regexp.MustCompile(`^\s*Tests\s+(.*?)\s*\((\d+)\)\s*$`)
	vitestCountPattern   = regexp.MustCompile(`(\d+) (failed|passed|skipped|todo)`)
	// " FAIL  src/client.test.ts > Client > authenticates"
	vitestFailPattern = regexp.MustCompile(`^\s*FAIL\s+(\S+)(?:\s+>\s+(.+?))?(?:\s+\[.*\])?\s*$`)
	vitestBoundary    = regexp.MustCompile(`^\s*(FAIL\s|⎯{3,}|Test Files\s|Tests\s+\d)`)
)

// ParseVitest reads "Tests  f failed | p passed (t)" and the FAIL blocks of
// the failed-tests report
func ParseVitest(output string) *runners.TestResult {
	result := &runners.TestResult{}
	lines := strings.Split(output, "\n")

	for _, line := range lines {
		m := vitestSummaryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counts := vitestCountPattern.FindAllStringSubmatch(m[1], -1)
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
			}
		}
		result.Total = runners.Atoi(m[2])
	}

	seen := map[string]bool{}
	for i := 0; i < len(lines); i++ {
		m := vitestFailPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		file, name := m[1], m[2]
		if name == "" {
			name = file
		}

		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if vitestBoundary.MatchString(lines[j]) {
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
			FilePath:     file,
			StackTrace:   joinBody(body),
		}
		applyLocation(&failure, body)
		result.Failures = append(result.Failures, failure)
	}

	return result
}
