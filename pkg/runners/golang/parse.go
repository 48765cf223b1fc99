package golang

import (
	"regexp"
	"strconv"
	"strings"

	"sdkbench/pkg/runners"
)

var (
	runPattern    = regexp.MustCompile(`^=== (?:RUN|CONT|NAME|PAUSE)\s+(\S+)`)
	resultPattern = regexp.MustCompile(`^--- (PASS|FAIL|SKIP): (\S+)`)
	logPattern    = regexp.MustCompile(`^\s+(\S+\.go):(\d+): (.*)$`)
	buildFailed   = regexp.MustCompile(`^FAIL\s+(\S+)\s+\[(build failed|setup failed)\]`)
	compileError  = regexp.MustCompile(`^(\S+\.go):(\d+):(?:\d+:)? (.*)$`)
)

type logLine struct {
	file string
	line int
	msg  string
}

// ParseOutput reads "go test -v" output. Only top-level tests are counted;
// subtest results roll up into their parent. A package that failed to build
// becomes one failure named after the package.
func ParseOutput(output string) *runners.TestResult {
	result := &runners.TestResult{}

	var (
		current  string
		logs     = map[string][]logLine{}
		compiled []logLine
	)
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")

		if m := runPattern.FindStringSubmatch(line); m != nil {
			current = topLevel(m[1])
			continue
		}
		if m := logPattern.FindStringSubmatch(line); m != nil && current != "" {
			logs[current] = append(logs[current], logLine{file: m[1], line: runners.Atoi(m[2]), msg: m[3]})
			continue
		}
		if m := compileError.FindStringSubmatch(line); m != nil {
			compiled = append(compiled, logLine{file: m[1], line: runners.Atoi(m[2]), msg: m[3]})
			continue
		}
		if m := buildFailed.FindStringSubmatch(line); m != nil {
			result.SummaryFound = true
			failure := runners.TestFailure{
				TestName:     m[1],
				ErrorMessage: m[2],
			}
			if len(compiled) > 0 {
				failure.ErrorMessage = m[2] + ": " + compiled[0].msg
				failure.FilePath = compiled[0].file
				failure.LineNumber = runners.IntPtr(compiled[0].line)
				failure.StackTrace = joinLogs(compiled)
			}
			compiled = nil
			result.Failures = append(result.Failures, failure)
			continue
		}

		m := resultPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		result.SummaryFound = true
		name := m[2]
		switch m[1] {
		case "PASS":
			result.Passed++
		case "SKIP":
			result.Skipped++
		case "FAIL":
			result.Failed++
			failure := runners.TestFailure{TestName: name, ErrorMessage: "test failed"}
			if entries := logs[name]; len(entries) > 0 {
				failure.ErrorMessage = entries[0].msg
				failure.FilePath = entries[0].file
				failure.LineNumber = runners.IntPtr(entries[0].line)
				failure.StackTrace = joinLogs(entries)
			}
			result.Failures = append(result.Failures, failure)
		}
	}

	return result
}

func topLevel(name string) string {
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

func joinLogs(entries []logLine) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.file + ":" + strconv.Itoa(e.line) + ": " + e.msg)
	}
	return b.String()
}
