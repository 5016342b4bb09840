// Package risk derives likelihood/impact scores, business impact, and
// residual-risk estimates from groups of findings. The model is deliberately
// simple and auditable: fixed tables, no learned weights.
package risk

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codesweep/codesweep/internal/types"
)

// DefaultAssessor names the engine in emitted assessments.
const DefaultAssessor = "codesweep-risk-engine"

// Mitigation is assumed to subtract one impact point and scale likelihood by
// this factor. Floors of 1 keep residual scores on the 1-5 scale.
const likelihoodMitigation = 0.7

// Assess groups findings by category and produces one assessment per group.
// Output is sorted by descending overall risk, ties by category name.
func Assess(findings []types.Finding, assessor string) []types.RiskAssessment {
	if assessor == "" {
		assessor = DefaultAssessor
	}
	groups := map[types.Category][]types.Finding{}
	for _, f := range findings {
		groups[f.Category] = append(groups[f.Category], f)
	}

	out := make([]types.RiskAssessment, 0, len(groups))
	for cat, members := range groups {
		score := scoreGroup(members)
		out = append(out, types.RiskAssessment{
			Target:       string(cat),
			Score:        score,
			Business:     businessImpact(cat, score.Level),
			Threat:       threatModel(cat),
			Mitigations:  mitigations(cat),
			ResidualRisk: Residual(score),
			AssessedAt:   time.Now().UTC(),
			Assessor:     assessor,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score.Overall != out[j].Score.Overall {
			return out[i].Score.Overall > out[j].Score.Overall
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// scoreGroup applies the fixed likelihood/impact table to a category group.
func scoreGroup(members []types.Finding) types.RiskScore {
	var crit, high int
	var confSum float64
	for _, f := range members {
		switch f.Severity {
		case types.SevCritical:
			crit++
		case types.SevHigh:
			high++
		}
		confSum += f.Confidence
	}

	var likelihood, impact int
	switch {
	case crit >= 3:
		likelihood, impact = 5, 5
	case crit >= 1:
		likelihood, impact = 4, 5
	case high >= 3:
		likelihood, impact = 4, 4
	case high >= 1:
		likelihood, impact = 3, 3
	default:
		likelihood, impact = 3, 2
	}

	conf := 0.5
	if len(members) > 0 {
		conf = confSum / float64(len(members))
	}
	return build(likelihood, impact, conf)
}

// Residual estimates the score after assumed mitigation: impact drops one
// point, likelihood scales by the mitigation factor, both floored at 1 and
// never exceeding the original.
func Residual(orig types.RiskScore) types.RiskScore {
	impact := orig.Impact - 1
	if impact < 1 {
		impact = 1
	}
	likelihood := int(math.Round(float64(orig.Likelihood) * likelihoodMitigation))
	if likelihood < 1 {
		likelihood = 1
	}
	if likelihood > orig.Likelihood {
		likelihood = orig.Likelihood
	}
	res := build(likelihood, impact, orig.Confidence)
	return res
}

func build(likelihood, impact int, conf float64) types.RiskScore {
	overall := likelihood * impact
	return types.RiskScore{
		Likelihood: likelihood,
		Impact:     impact,
		Overall:    overall,
		Level:      Level(overall),
		Confidence: conf,
	}
}

// Level buckets an overall score (1-25) into a risk level.
func Level(overall int) types.RiskLevel {
	switch {
	case overall >= 20:
		return types.RiskCritical
	case overall >= 15:
		return types.RiskHigh
	case overall >= 10:
		return types.RiskMedium
	case overall >= 5:
		return types.RiskLow
	default:
		return types.RiskNegligible
	}
}

// breach-class categories threaten records; disruption-class threaten uptime
func breachClass(cat types.Category) bool {
	switch cat {
	case types.CatBrokenAccess, types.CatInfoDisclosure, types.CatHardcodedSecret,
		types.CatCryptoFailure, types.CatPathTraversal:
		return true
	}
	return false
}

func businessImpact(cat types.Category, level types.RiskLevel) types.BusinessImpact {
	if breachClass(cat) {
		return types.BusinessImpact{
			ImpactTypes:        []string{"data-breach", "regulatory-exposure"},
			FinancialRange:     financialRange(level),
			OperationalImpact:  "Incident response and forensic review; possible credential rotation across environments.",
			ComplianceImpact:   fmt.Sprintf("Potential reportable event under data-protection regulation (%s exposure).", cat),
			ReputationalImpact: "Customer trust erosion if records are confirmed exposed.",
		}
	}
	return types.BusinessImpact{
		ImpactTypes:        []string{"service-disruption"},
		FinancialRange:     financialRange(level),
		OperationalImpact:  "Degraded or interrupted service while the vulnerable path is exploited or patched.",
		ComplianceImpact:   "Availability commitments in customer agreements may be breached.",
		ReputationalImpact: "Visible outage or defacement risk during active exploitation.",
	}
}

func financialRange(level types.RiskLevel) string {
	switch level {
	case types.RiskCritical:
		return "$500k-$5M"
	case types.RiskHigh:
		return "$100k-$500k"
	case types.RiskMedium:
		return "$25k-$100k"
	case types.RiskLow:
		return "$5k-$25k"
	default:
		return "<$5k"
	}
}

func threatModel(cat types.Category) types.ThreatModel {
	tm := types.ThreatModel{
		Actors:     []string{"external-attacker", "opportunistic-scanner"},
		AssetValue: "production services and the data they hold",
	}
	switch cat {
	case types.CatCommandInjection, types.CatInjection:
		tm.Vectors = []string{"crafted request parameters", "tainted upstream data"}
		tm.Scenarios = []string{"Attacker injects through an exposed input and pivots to the host."}
	case types.CatHardcodedSecret:
		tm.Actors = append(tm.Actors, "insider")
		tm.Vectors = []string{"repository access", "leaked build artifacts"}
		tm.Scenarios = []string{"A leaked credential is replayed against production APIs."}
	case types.CatBrokenAccess:
		tm.Vectors = []string{"direct object reference", "privilege misuse"}
		tm.Scenarios = []string{"An authenticated user reaches resources outside their role."}
	default:
		tm.Vectors = []string{"network access to the affected component"}
		tm.Scenarios = []string{"The weakness is chained with another flaw to reach sensitive data."}
	}
	return tm
}

func mitigations(cat types.Category) []string {
	base := []string{"Remediate the underlying findings per their plans"}
	switch cat {
	case types.CatCommandInjection, types.CatInjection:
		return append(base, "Deploy input validation at trust boundaries", "Add WAF rules for the affected endpoints")
	case types.CatHardcodedSecret:
		return append(base, "Rotate all affected credentials", "Adopt a managed secret store")
	case types.CatInsecureTransport:
		return append(base, "Enforce TLS everywhere via policy")
	default:
		return append(base, "Schedule a follow-up scan to confirm closure")
	}
}
