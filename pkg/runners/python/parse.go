package python

import (
	"regexp"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	// "==== 1 failed, 2 passed, 1 skipped in 0.52s ====" or "no tests ran in 0.01s"
	summaryPattern = regexp.MustCompile(`^=*\s*(.*?)\s+in\s+[\d.]+s\b.*$`)
	countPattern   = regexp.MustCompile(`(\d+) (passed|failed|skipped|errors?|xfailed|xpassed)\b`)
	// "FAILED tests/test_client.py::TestClient::test_auth - AssertionError: boom"
	failedPattern = regexp.MustCompile(`^(FAILED|ERROR) ([^\s:]+)(?:::([^\s\[]+(?:\[[^\]]*\])?))?(?: - (.*))?$`)
	// "______________ TestClient.test_auth ______________"; long titles get a
	// single underscore on each side
	sectionPattern  = regexp.MustCompile(`^_+ (.+?) _+$`)
	locationPattern = regexp.MustCompile(`^(\S+\.py):(\d+):`)
)

type section struct {
	name string
	body []string
}

// ParseOutput converts pytest -v --tb=short -rfE output into a TestResult.
// Counts come from the final summary line only; errors count as failures.
func ParseOutput(output string) *runners.TestResult {
	result := &runners.TestResult{}
	lines := strings.Split(output, "\n")

	parseSummary(lines, result)
	sections := parseSections(lines)

	seen := map[string]int{}
	for _, line := range lines {
		m := failedPattern.FindStringSubmatch(strings.TrimRight(line, " \r"))
		if m == nil {
			continue
		}
		name := m[3]
		if name == "" {
			name = m[2]
		}
		failure := runners.TestFailure{
			TestName:     name,
			ErrorMessage: m[4],
			FilePath:     m[2],
		}
		if failure.ErrorMessage == "" && m[1] == "ERROR" {
			failure.ErrorMessage = "error during test collection or setup"
		}
		seen[normalizeName(name)] = len(result.Failures)
		result.Failures = append(result.Failures, failure)
	}

	for _, s := range sections {
		key := normalizeName(s.name)
		idx, ok := seen[key]
		if !ok {
			result.Failures = append(result.Failures, runners.TestFailure{
				TestName:     s.name,
				ErrorMessage: errorLine(s.body),
			})
			idx = len(result.Failures) - 1
			seen[key] = idx
		}
		f := &result.Failures[idx]
		f.StackTrace = strings.TrimSpace(strings.Join(s.body, "\n"))
		if file, line := lastLocation(s.body); file != "" {
			if f.FilePath == "" {
				f.FilePath = file
			}
			f.LineNumber = runners.IntPtr(line)
		}
		if f.ErrorMessage == "" {
			f.ErrorMessage = errorLine(s.body)
		}
	}

	return result
}

func parseSummary(lines []string, result *runners.TestResult) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		m := summaryPattern.FindStringSubmatch(strings.TrimRight(line, "= "))
		if m == nil {
			continue
		}
		body := m[1]
		counts := countPattern.FindAllStringSubmatch(body, -1)
		if len(counts) == 0 && !strings.Contains(body, "no tests ran") {
			continue
		}
		result.SummaryFound = true
		for _, c := range counts {
			n := runners.Atoi(c[1])
			switch c[2] {
			case "passed", "xpassed":
				result.Passed += n
			case "failed", "error", "errors":
				result.Failed += n
			case "skipped", "xfailed":
				result.Skipped += n
			}
		}
		return
	}
}

func parseSections(lines []string) []section {
	var (
		sections []section
		current  *section
	)
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \r")
		if name, ok := sectionTitle(trimmed); ok {
			sections = append(sections, section{name: name})
			current = &sections[len(sections)-1]
			continue
		}
		if strings.HasPrefix(trimmed, "=") {
			current = nil
			continue
		}
		if current != nil {
			current.body = append(current.body, trimmed)
		}
	}
	return sections
}

// sectionTitle returns the test name of a "___ name ___" header. The
// "_ _ _ _" separator between traceback entries is not a header.
func sectionTitle(line string) (string, bool) {
	m := sectionPattern.FindStringSubmatch(line)
	if m == nil || strings.Trim(m[1], "_ ") == "" {
		return "", false
	}
	return m[1], true
}

// normalizeName maps "TestX::test_y", "TestX.test_y" and
// "ERROR at setup of test_y" onto one key
func normalizeName(name string) string {
	for _, prefix := range []string{"ERROR at setup of ", "ERROR at teardown of ", "ERROR collecting "} {
		name = strings.TrimPrefix(name, prefix)
	}
	return strings.ReplaceAll(name, "::", ".")
}

func errorLine(body []string) string {
	for _, line := range body {
		if strings.HasPrefix(line, "E ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "E"))
		}
	}
	return runners.TailLines(strings.Join(body, "\n"), 1)
}

func lastLocation(body []string) (string, int) {
	for i := len(body) - 1; i >= 0; i-- {
		if m := locationPattern.FindStringSubmatch(strings.TrimSpace(body[i])); m != nil {
			return m[1], runners.Atoi(m[2])
		}
	}
	return "", 0
}
