package compliance

import (
	"testing"

	"github.com/codesweep/codesweep/internal/types"
)

func TestControlsFor_CoversEveryCategory(t *testing.T) {
	for _, cat := range types.Categories() {
		if len(ControlsFor(cat)) == 0 {
			t.Errorf("category %s has no control mapping", cat)
		}
	}
	if got := ControlsFor(types.Category("made-up")); got != nil {
		t.Errorf("unknown category should map to nothing, got %+v", got)
	}
}

func TestMap_CriticalIsNeverCompliant(t *testing.T) {
	findings := []types.Finding{{
		ID: "f-1", Title: "Hardcoded credential",
		Severity: types.SevCritical, Category: types.CatHardcodedSecret,
	}}
	out := Map(findings)
	if len(out) != 1 {
		t.Fatalf("mappings = %d", len(out))
	}
	if out[0].Status != types.StatusNonCompliant {
		t.Fatalf("critical finding mapped to %s", out[0].Status)
	}
	if len(out[0].Gaps) == 0 || out[0].Gaps[0].Timeline != "24 hours" {
		t.Fatalf("gaps = %+v", out[0].Gaps)
	}
}

func TestMap_GroupStatusFollowsWorstMember(t *testing.T) {
	findings := []types.Finding{
		{ID: "f-1", Severity: types.SevLow, Category: types.CatInjection},
		{ID: "f-2", Severity: types.SevCritical, Category: types.CatInjection},
		{ID: "f-3", Severity: types.SevMedium, Category: types.CatLoggingFailure},
	}
	out := Map(findings)
	if len(out) != 3 {
		t.Fatalf("mappings = %d", len(out))
	}
	byID := map[string]types.ComplianceMapping{}
	for _, m := range out {
		byID[m.FindingID] = m
	}
	// the low finding shares a group with a critical one
	if byID["f-1"].Status != types.StatusNonCompliant {
		t.Fatalf("f-1 status = %s", byID["f-1"].Status)
	}
	if byID["f-3"].Status != types.StatusPartial {
		t.Fatalf("f-3 status = %s", byID["f-3"].Status)
	}
}

func TestMap_ControlNumbers(t *testing.T) {
	findings := []types.Finding{
		{ID: "a", Severity: types.SevHigh, Category: types.CatCommandInjection},
		{ID: "b", Severity: types.SevMedium, Category: types.CatVulnerableDep},
	}
	out := Map(findings)
	want := map[string]string{"a": "A03:2021", "b": "A06:2021"}
	for _, m := range out {
		if m.Controls[0].Number != want[m.FindingID] {
			t.Errorf("%s mapped to %s, want %s", m.FindingID, m.Controls[0].Number, want[m.FindingID])
		}
		if m.Controls[0].Framework != FrameworkOWASP {
			t.Errorf("framework = %s", m.Controls[0].Framework)
		}
	}
}

func TestTimeline(t *testing.T) {
	tests := map[types.Severity]string{
		types.SevCritical: "24 hours",
		types.SevHigh:     "1 week",
		types.SevMedium:   "1 month",
		types.SevLow:      "3 months",
		types.SevInfo:     "3 months",
	}
	for sev, want := range tests {
		if got := Timeline(sev); got != want {
			t.Errorf("Timeline(%s) = %q, want %q", sev, got, want)
		}
	}
}
