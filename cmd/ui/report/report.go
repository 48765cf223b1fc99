package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sdkbench/pkg/detector"
	"sdkbench/pkg/fcorr"
)

var (
	titleStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#01FAC6")).Foreground(lipgloss.Color("#030303")).Bold(true).Padding(0, 1, 0)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#01FAC6")).Bold(true)
	valueStyle       = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170")).Bold(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#40BDA3"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	failureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#01FAC6")).
	Padding(1, 2).
	Width(72)

// maxFailures caps the failures listed in human output
const maxFailures = 10

// Result renders one evaluation: language, install outcome, test counts and
// the final score
func Result(r *fcorr.Result) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Functional Correctness"))
	s.WriteString("\n\n")

	var content strings.Builder
	field(&content, "Language:", orNone(string(r.Language)))
	field(&content, "Framework:", orNone(string(r.Framework)))
	field(&content, "Policy:", r.Policy)

	if ir := r.InstallResult; ir != nil {
		switch {
		case ir.Skipped:
			field(&content, "Install:", fmt.Sprintf("skipped (%d packages already present)", ir.PackageCount))
		case ir.Success:
			field(&content, "Install:", fmt.Sprintf("ok, %d packages in %.1fs", ir.PackageCount, ir.Duration.Seconds()))
		default:
			field(&content, "Install:", failureStyle.Render("failed"))
		}
	}

	if tr := r.TestResult; tr != nil {
		field(&content, "Tests:", fmt.Sprintf("%d passed, %d failed, %d skipped (%d total) in %.1fs",
			tr.Passed, tr.Failed, tr.Skipped, tr.Total, tr.Duration.Seconds()))
		if len(tr.Failures) > 0 {
			content.WriteString("\n")
			content.WriteString(labelStyle.Render("Failures:"))
			content.WriteString("\n")
			for i, f := range tr.Failures {
				if i == maxFailures {
					content.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more", len(tr.Failures)-maxFailures)))
					content.WriteString("\n")
					break
				}
				content.WriteString(failureStyle.Render("  ✗ "))
				content.WriteString(f.TestName)
				if f.FilePath != "" && f.LineNumber != nil {
					content.WriteString(helpStyle.Render(fmt.Sprintf(" (%s:%d)", f.FilePath, *f.LineNumber)))
				}
				content.WriteString("\n")
				if f.ErrorMessage != "" {
					content.WriteString(descriptionStyle.Render("    " + firstLine(f.ErrorMessage)))
					content.WriteString("\n")
				}
			}
		}
	}

	if r.Error != "" {
		content.WriteString("\n")
		content.WriteString(failureStyle.Render("Error: "))
		content.WriteString(r.Error)
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(labelStyle.Render("Score:"))
	content.WriteString(score(r.Score))

	s.WriteString(boxStyle.Render(content.String()))
	s.WriteString("\n")
	return s.String()
}

// Detections renders every runner's verdict. missing maps a runner name to
// the toolchain binaries absent from PATH, artifacts to the install
// directories already present.
func Detections(dir string, results []detector.DetectionResult, missing, artifacts map[string][]string) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Runner Detection"))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(dir))
	s.WriteString("\n\n")

	var content strings.Builder
	for i, d := range results {
		if i > 0 {
			content.WriteString("\n")
		}
		mark := failureStyle.Render("✗ ")
		if d.Detected {
			mark = successStyle.Render("✓ ")
		}
		content.WriteString(mark)
		content.WriteString(labelStyle.Render(d.Runner))
		content.WriteString(valueStyle.Render(fmt.Sprintf("confidence %.2f", d.Confidence)))
		if d.Framework != "" {
			content.WriteString(helpStyle.Render(fmt.Sprintf(" [%s/%s]", d.Language, d.Framework)))
		}
		content.WriteString("\n")
		for _, e := range d.Evidence {
			content.WriteString(descriptionStyle.Render("    " + e))
			content.WriteString("\n")
		}
		if tools := missing[d.Runner]; d.Detected && len(tools) > 0 {
			content.WriteString(failureStyle.Render("    missing: " + strings.Join(tools, ", ")))
			content.WriteString("\n")
		}
		if dirs := artifacts[d.Runner]; d.Detected && len(dirs) > 0 {
			content.WriteString(helpStyle.Render("    installed: " + strings.Join(dirs, ", ")))
			content.WriteString("\n")
		}
	}
	if len(results) == 0 {
		content.WriteString(helpStyle.Render("no runners registered"))
	}

	s.WriteString(boxStyle.Render(strings.TrimRight(content.String(), "\n")))
	s.WriteString("\n")
	return s.String()
}

// Batch renders one line per sample followed by the aggregate score
func Batch(b *fcorr.BatchReport) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("SDK " + b.SDK))
	s.WriteString("\n\n")

	var content strings.Builder
	for _, sample := range b.Samples {
		switch {
		case sample.Skipped:
			content.WriteString(helpStyle.Render("  - " + sample.Sample + " (skipped)"))
		case sample.Result.Error == nil && sample.Result.Score > 0:
			content.WriteString(successStyle.Render("  ✓ "))
			content.WriteString(sample.Sample)
			content.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", sample.Result.Score)))
		default:
			content.WriteString(failureStyle.Render("  ✗ "))
			content.WriteString(sample.Sample)
			content.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", sample.Result.Score)))
			if sample.Result.Error != nil {
				content.WriteString(helpStyle.Render(" " + firstLine(*sample.Result.Error)))
			}
		}
		content.WriteString("\n")
	}
	content.WriteString("\n")
	field(&content, "Policy:", b.Policy)
	field(&content, "Passed:", fmt.Sprintf("%d/%d", b.Passed, b.Evaluated))
	content.WriteString(labelStyle.Render("Mean score:"))
	content.WriteString(score(b.MeanScore))

	s.WriteString(boxStyle.Render(content.String()))
	s.WriteString("\n")
	return s.String()
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func score(v float64) string {
	text := fmt.Sprintf(" %.2f", v)
	if v > 0 {
		return successStyle.Render(text)
	}
	return failureStyle.Render(text)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
