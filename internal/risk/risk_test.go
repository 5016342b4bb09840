package risk

import (
	"testing"

	"github.com/codesweep/codesweep/internal/types"
)

func mk(sev types.Severity, cat types.Category, conf float64) types.Finding {
	return types.Finding{Severity: sev, Category: cat, Confidence: conf}
}

func TestAssess_GroupsByCategory(t *testing.T) {
	findings := []types.Finding{
		mk(types.SevCritical, types.CatCommandInjection, 0.9),
		mk(types.SevLow, types.CatInsecureConfig, 0.6),
		mk(types.SevHigh, types.CatCommandInjection, 0.85),
	}
	out := Assess(findings, "")
	if len(out) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(out))
	}
	// sorted by descending overall score
	if out[0].Target != string(types.CatCommandInjection) {
		t.Fatalf("highest-risk group first; got %s", out[0].Target)
	}
	if out[0].Score.Overall < out[1].Score.Overall {
		t.Fatal("output not sorted by overall score")
	}
	if out[0].Assessor != DefaultAssessor {
		t.Fatalf("assessor = %q", out[0].Assessor)
	}
}

func TestScoreTable(t *testing.T) {
	tests := []struct {
		name           string
		findings       []types.Finding
		wantLikelihood int
		wantImpact     int
	}{
		{
			name: "three criticals",
			findings: []types.Finding{
				mk(types.SevCritical, types.CatInjection, 0.9),
				mk(types.SevCritical, types.CatInjection, 0.9),
				mk(types.SevCritical, types.CatInjection, 0.9),
			},
			wantLikelihood: 5, wantImpact: 5,
		},
		{
			name:           "one critical",
			findings:       []types.Finding{mk(types.SevCritical, types.CatInjection, 0.9)},
			wantLikelihood: 4, wantImpact: 5,
		},
		{
			name: "three highs",
			findings: []types.Finding{
				mk(types.SevHigh, types.CatInjection, 0.85),
				mk(types.SevHigh, types.CatInjection, 0.85),
				mk(types.SevHigh, types.CatInjection, 0.85),
			},
			wantLikelihood: 4, wantImpact: 4,
		},
		{
			name:           "one high",
			findings:       []types.Finding{mk(types.SevHigh, types.CatInjection, 0.85)},
			wantLikelihood: 3, wantImpact: 3,
		},
		{
			name:           "mediums only",
			findings:       []types.Finding{mk(types.SevMedium, types.CatInjection, 0.75)},
			wantLikelihood: 3, wantImpact: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Assess(tt.findings, "t")
			if len(out) != 1 {
				t.Fatalf("groups = %d", len(out))
			}
			s := out[0].Score
			if s.Likelihood != tt.wantLikelihood || s.Impact != tt.wantImpact {
				t.Fatalf("score = %dx%d, want %dx%d", s.Likelihood, s.Impact, tt.wantLikelihood, tt.wantImpact)
			}
			if s.Overall != s.Likelihood*s.Impact {
				t.Fatalf("overall = %d", s.Overall)
			}
		})
	}
}

func TestResidual_NeverExceedsOriginal(t *testing.T) {
	for likelihood := 1; likelihood <= 5; likelihood++ {
		for impact := 1; impact <= 5; impact++ {
			orig := build(likelihood, impact, 0.8)
			res := Residual(orig)
			if res.Likelihood > orig.Likelihood || res.Impact > orig.Impact {
				t.Fatalf("residual %dx%d exceeds original %dx%d",
					res.Likelihood, res.Impact, likelihood, impact)
			}
			if res.Likelihood < 1 || res.Impact < 1 {
				t.Fatalf("residual %dx%d below scale floor", res.Likelihood, res.Impact)
			}
		}
	}
}

func TestLevel_Buckets(t *testing.T) {
	tests := []struct {
		overall int
		want    types.RiskLevel
	}{
		{25, types.RiskCritical},
		{20, types.RiskCritical},
		{16, types.RiskHigh},
		{12, types.RiskMedium},
		{6, types.RiskLow},
		{4, types.RiskNegligible},
		{1, types.RiskNegligible},
	}
	for _, tt := range tests {
		if got := Level(tt.overall); got != tt.want {
			t.Errorf("Level(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func TestBusinessImpact_BreachVsDisruption(t *testing.T) {
	out := Assess([]types.Finding{mk(types.SevCritical, types.CatHardcodedSecret, 0.9)}, "t")
	if out[0].Business.ImpactTypes[0] != "data-breach" {
		t.Fatalf("secret exposure should be breach-class: %+v", out[0].Business)
	}
	out = Assess([]types.Finding{mk(types.SevCritical, types.CatCommandInjection, 0.9)}, "t")
	if out[0].Business.ImpactTypes[0] != "service-disruption" {
		t.Fatalf("command injection should be disruption-class: %+v", out[0].Business)
	}
	if out[0].Business.FinancialRange == "" {
		t.Fatal("financial range must be populated")
	}
}
