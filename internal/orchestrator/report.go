package orchestrator

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"DailyEdition/internal/domain"
)

const rule = "=================================================="

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func writeBanner(w io.Writer, report domain.RunReport, tasks int) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("DAILY EDITION RUN  %s", report.StartedAt.Format("2006-01-02 15:04 MST"))))
	fmt.Fprintf(w, "run %s, %d task(s)\n", report.ID, tasks)
	fmt.Fprintln(w, rule)
}

func writeTaskLine(w io.Writer, result domain.TaskResult) {
	fmt.Fprintf(w, "--- %s: %s (%.1fs) ---\n", result.Name, statusLabel(result), result.ElapsedSeconds)
	if result.Success || result.Stderr == "" {
		return
	}
	for _, line := range tail(result.Stderr, 20) {
		fmt.Fprintf(w, "    | %s\n", line)
	}
}

// RenderReport writes the summary table and the closing verdict.
func RenderReport(w io.Writer, report domain.RunReport) {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{r.Name, statusLabel(r), fmt.Sprintf("%.1f", r.ElapsedSeconds)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TASK", "STATUS", "SECONDS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && row < len(report.Results) && col == 1 {
				if report.Results[row].Success {
					return cellStyle.Inherit(passStyle)
				}
				return cellStyle.Inherit(failStyle)
			}
			return cellStyle
		})

	fmt.Fprintln(w)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "Total: %.1fs\n", report.Elapsed().Seconds())
	fmt.Fprintln(w, Verdict(report))
}

// Verdict is the closing line of a run.
func Verdict(report domain.RunReport) string {
	if !report.Failed() {
		return passStyle.Render(fmt.Sprintf("All %d tasks completed successfully.", len(report.Results)))
	}
	return failStyle.Render(fmt.Sprintf("WARNING: %d/%d task(s) failed.", report.FailedCount, len(report.Results)))
}

func statusLabel(r domain.TaskResult) string {
	switch r.Outcome {
	case domain.OutcomeOK:
		return "OK"
	case domain.OutcomeTimedOut:
		return "TIMEOUT"
	case domain.OutcomeSkipped:
		return "SKIPPED"
	default:
		return "FAIL"
	}
}

func tail(text string, n int) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
