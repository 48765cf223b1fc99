package typescript

import (
	"regexp"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	mochaPassingPattern = regexp.MustCompile(`^\s*(\d+) passing\b`)
	mochaFailingPattern = regexp.MustCompile(`^\s*(\d+) failing\b`)
	mochaPendingPattern = regexp.MustCompile(`^\s*(\d+) pending\b`)
	mochaNumberedTitle  = regexp.MustCompile(`^\s*(\d+)\) (.+)$`)
)

// ParseMocha reads the independent "n passing", "n failing" and "n pending"
// lines, then the numbered failure report that follows "n failing"
func ParseMocha(output string) *runners.TestResult {
	result := &runners.TestResult{}
	lines := strings.Split(output, "\n")

	reportStart := -1
	for i, line := range lines {
		switch {
		case mochaPassingPattern.MatchString(line):
			result.Passed = runners.Atoi(mochaPassingPattern.FindStringSubmatch(line)[1])
			result.SummaryFound = true
		case mochaFailingPattern.MatchString(line):
			result.Failed = runners.Atoi(mochaFailingPattern.FindStringSubmatch(line)[1])
			result.SummaryFound = true
			reportStart = i + 1
		case mochaPendingPattern.MatchString(line):
			result.Skipped = runners.Atoi(mochaPendingPattern.FindStringSubmatch(line)[1])
		}
	}
	if reportStart < 0 {
		return result
	}

	report := lines[reportStart:]
	for i := 0; i < len(report); i++ {
		m := mochaNumberedTitle.FindStringSubmatch(report[i])
		if m == nil {
			continue
		}

		// the title may wrap: "1) Suite" then "     test name:"
		title := []string{strings.TrimSpace(m[2])}
		j := i + 1
		for !strings.HasSuffix(title[len(title)-1], ":") && j < len(report) && strings.TrimSpace(report[j]) != "" {
			title = append(title, strings.TrimSpace(report[j]))
			j++
		}

		var body []string
		for ; j < len(report); j++ {
			if mochaNumberedTitle.MatchString(report[j]) {
				break
			}
			body = append(body, report[j])
		}
		i = j - 1

		failure := runners.TestFailure{
			TestName:     strings.TrimSuffix(strings.Join(title, " "), ":"),
			ErrorMessage: firstNonEmpty(body),
			StackTrace:   joinBody(body),
		}
		applyLocation(&failure, body)
		result.Failures = append(result.Failures, failure)
	}

	return result
}
