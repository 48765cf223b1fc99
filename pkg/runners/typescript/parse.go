package typescript

import (
	"regexp"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	// "at Object.<anonymous> (src/client.test.ts:11:26)" or "at src/client.test.ts:11:26"
	stackLocationPattern = regexp.MustCompile(`at (?:.*\()?([^\s()]+?):(\d+):(\d+)\)?\s*$`)
	// vitest: "❯ src/client.test.ts:11:26"
	arrowLocationPattern = regexp.MustCompile(`^\s*❯\s+([^\s()]+?):(\d+):(\d+)`)
)

// applyLocation sets file and line from the first stack frame outside
// node_modules
func applyLocation(f *runners.TestFailure, body []string) {
	for _, line := range body {
		m := stackLocationPattern.FindStringSubmatch(line)
		if m == nil {
			m = arrowLocationPattern.FindStringSubmatch(line)
		}
		if m == nil || strings.Contains(m[1], "node_modules") || strings.HasPrefix(m[1], "node:") {
			continue
		}
		f.FilePath = m[1]
		f.LineNumber = runners.IntPtr(runners.Atoi(m[2]))
		return
	}
}

func firstNonEmpty(lines []string) string {
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

func joinBody(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
