package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/codesweep/codesweep/internal/types"
)

func sampleResult() *types.OrchestrationResult {
	return &types.OrchestrationResult{
		Success: true,
		Consolidated: types.ConsolidatedResult{
			Findings: []types.Finding{
				{
					ID:       "f-1",
					Title:    "Shell command built from os.system",
					Severity: types.SevCritical,
					Category: types.CatCommandInjection,
					Location: types.Location{FilePath: "app/run.py", Line: 12},
					Scanner:  "server",
				},
				{
					ID:       "f-2",
					Title:    "Assignment to innerHTML",
					Severity: types.SevMedium,
					Category: types.CatInjection,
					Location: types.Location{FilePath: "web/app.js", Line: 4},
					Scanner:  "client",
				},
			},
		},
		Duration: 1200 * time.Millisecond,
		Summary: types.Summary{
			BySeverity: map[types.Severity]int{
				types.SevCritical: 1,
				types.SevMedium:   1,
			},
			ScannersExecuted:  2,
			ScannersSucceeded: 2,
			TotalFiles:        10,
			AvgConfidence:     0.8,
			OverallRisk:       types.RiskCritical,
		},
	}
}

func TestPrintTable_NoFindings_ShowsFooter(t *testing.T) {
	res := sampleResult()
	res.Consolidated.Findings = nil
	var buf bytes.Buffer
	PrintTable(&buf, res, PrintOptions{NoColor: true})
	out := buf.String()
	if !strings.Contains(out, "No findings") {
		t.Fatalf("expected friendly no-findings message; got: %q", out)
	}
	if !strings.Contains(out, "Files: 10") {
		t.Fatalf("expected footer with file count; got: %q", out)
	}
}

func TestPrintTable_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleResult(), PrintOptions{NoColor: true})
	out := buf.String()
	if !strings.Contains(out, "SEVERITY") {
		t.Fatalf("expected table header with SEVERITY; got: %q", out)
	}
	if !strings.Contains(out, "app/run.py:12") {
		t.Fatalf("expected location column; got: %q", out)
	}
	// Critical rows sort above medium.
	if strings.Index(out, "run.py") > strings.Index(out, "app.js") {
		t.Fatalf("expected severity-descending order; got: %q", out)
	}
}

func TestPrintTable_ShowErrors(t *testing.T) {
	res := sampleResult()
	res.Errors = []types.OrchestrationError{{
		Scanner: "iac", Kind: types.OrchErrTimeout, Message: "deadline exceeded", Recoverable: true,
	}}
	var buf bytes.Buffer
	PrintTable(&buf, res, PrintOptions{NoColor: true, ShowErrors: true})
	if !strings.Contains(buf.String(), "deadline exceeded") {
		t.Fatalf("expected error section; got: %q", buf.String())
	}
}

func TestPrintTable_MaxFindings(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleResult(), PrintOptions{NoColor: true, MaxFindings: 1})
	out := buf.String()
	if strings.Contains(out, "app.js") {
		t.Fatalf("expected truncation to highest-severity finding; got: %q", out)
	}
}
