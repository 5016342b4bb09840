// Package report renders orchestration results for the terminal. It reads the
// result structures and never mutates them.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/codesweep/codesweep/internal/types"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// PrintOptions controls terminal rendering.
type PrintOptions struct {
	NoColor     bool
	ShowErrors  bool
	MaxFindings int // 0 = all
}

// PrintTable writes the consolidated findings as a table followed by the run
// summary.
func PrintTable(w io.Writer, res *types.OrchestrationResult, opts PrintOptions) {
	findings := append([]types.Finding(nil), res.Consolidated.Findings...)
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		}
		if findings[i].Location.FilePath != findings[j].Location.FilePath {
			return findings[i].Location.FilePath < findings[j].Location.FilePath
		}
		return findings[i].Location.Line < findings[j].Location.Line
	})
	if opts.MaxFindings > 0 && len(findings) > opts.MaxFindings {
		findings = findings[:opts.MaxFindings]
	}

	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings ✅")
	} else {
		tbl := tablewriter.NewWriter(w)
		tbl.Header("SEVERITY", "CATEGORY", "LOCATION", "TITLE", "SCANNER")
		for _, f := range findings {
			loc := f.Location.FilePath
			if f.Location.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.Location.FilePath, f.Location.Line)
			}
			_ = tbl.Append([]string{
				severityLabel(f.Severity, opts.NoColor),
				string(f.Category),
				loc,
				f.Title,
				f.Scanner,
			})
		}
		_ = tbl.Render()
	}

	printSummary(w, res, opts)
}

func printSummary(w io.Writer, res *types.OrchestrationResult, opts PrintOptions) {
	s := res.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scanners: %d executed, %d succeeded, %d failed\n",
		s.ScannersExecuted, s.ScannersSucceeded, s.ScannersFailed)
	fmt.Fprintf(w, "Files: %d  Findings: %d  Overall risk: %s  Confidence: %.0f%%\n",
		s.TotalFiles, len(res.Consolidated.Findings), s.OverallRisk, s.AvgConfidence*100)
	for _, sev := range []types.Severity{types.SevCritical, types.SevHigh, types.SevMedium, types.SevLow, types.SevInfo} {
		if n := s.BySeverity[sev]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", severityLabel(sev, opts.NoColor), n)
		}
	}
	if opts.ShowErrors && len(res.Errors) > 0 {
		fmt.Fprintf(w, "\n%d scanner(s) could not complete:\n", len(res.Errors))
		for _, e := range res.Errors {
			name := e.Scanner
			if name == "" {
				name = "(run)"
			}
			fmt.Fprintf(w, "  %-10s %-14s %s\n", name, e.Kind, e.Message)
		}
	}
	fmt.Fprintf(w, "Completed in %s\n", res.Duration.Round(time.Millisecond))
}

func severityLabel(sev types.Severity, noColor bool) string {
	if noColor {
		return string(sev)
	}
	switch sev {
	case types.SevCritical:
		return color.New(color.FgRed, color.Bold).Sprint(sev)
	case types.SevHigh:
		return color.New(color.FgRed).Sprint(sev)
	case types.SevMedium:
		return color.New(color.FgYellow).Sprint(sev)
	case types.SevLow:
		return color.New(color.FgCyan).Sprint(sev)
	default:
		return color.New(color.FgWhite).Sprint(sev)
	}
}
