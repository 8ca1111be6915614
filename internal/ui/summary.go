// Package ui renders human-facing summaries of an aggregation run.
// Machine consumers read the JSON artifact instead.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"aasbench/internal/regression"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	regressionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	improvementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	neutralStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderRunSummary writes the aggregation totals and the regression
// table to w.
func RenderRunSummary(w io.Writer, sdkCount, serverCount, failureCount int, res regression.Result) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(
		"Aggregated %d result(s) (%d SDK, %d server)", sdkCount+serverCount, sdkCount, serverCount)))
	if failureCount > 0 {
		fmt.Fprintln(w, regressionStyle.Render(fmt.Sprintf("%d implementation(s) failed", failureCount)))
	}

	if len(res.Comparisons) == 0 {
		fmt.Fprintln(w, neutralStyle.Render("No baseline comparisons."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "IMPLEMENTATION\tDATASET\tOPERATION\tMEAN NS\tDELTA %\tVERDICT")
	for _, c := range res.Comparisons {
		verdict := c.Verdict
		switch {
		case c.Verdict == regression.VerdictSignificant && c.Direction == regression.DirectionRegression:
			verdict = regressionStyle.Render("REGRESSION")
		case c.Verdict == regression.VerdictSignificant && c.Direction == regression.DirectionImprovement:
			verdict = improvementStyle.Render("IMPROVED")
		case c.Verdict == regression.VerdictInsufficientSamples:
			verdict = neutralStyle.Render("insufficient samples")
		}
		if c.ReducedConfidence {
			verdict += neutralStyle.Render(" *")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%+.2f\t%s\n",
			c.Implementation, c.Dataset, c.OperationID, c.CurrentMeanNs, c.DeltaPct, verdict)
	}
	tw.Flush()

	if n := len(res.NewEntries); n > 0 {
		fmt.Fprintln(w, neutralStyle.Render(fmt.Sprintf("%d new entr%s without a baseline", n, plural(n, "y", "ies"))))
	}
	if n := len(res.Removed); n > 0 {
		fmt.Fprintln(w, neutralStyle.Render(fmt.Sprintf("%d baseline entr%s missing from this run", n, plural(n, "y", "ies"))))
	}
	if hasReducedConfidence(res.Comparisons) {
		fmt.Fprintln(w, neutralStyle.Render("* legacy report without sample_count; verdict uses iterations"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func hasReducedConfidence(comps []regression.Comparison) bool {
	for _, c := range comps {
		if c.ReducedConfidence {
			return true
		}
	}
	return false
}

// RenderValidationProblems writes validator findings for one report.
func RenderValidationProblems(w io.Writer, path string, problems []string) {
	if len(problems) == 0 {
		fmt.Fprintln(w, improvementStyle.Render("Report valid: "+path))
		return
	}
	fmt.Fprintln(w, regressionStyle.Render("Invalid report: "+path))
	for _, p := range problems {
		fmt.Fprintln(w, "  - "+strings.TrimSpace(p))
	}
}
