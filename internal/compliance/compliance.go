// Package compliance maps finding categories to control-framework entries and
// derives per-mapping compliance status. The mapping is a fixed lookup table;
// it performs no I/O.
package compliance

import (
	"fmt"

	"github.com/codesweep/codesweep/internal/types"
)

// FrameworkOWASP is the primary supported framework.
const FrameworkOWASP = "OWASP Top 10 2021"

var controlsByCategory = map[types.Category][]types.Control{
	types.CatBrokenAccess: {{
		Framework:   FrameworkOWASP,
		Number:      "A01:2021",
		Title:       "Broken Access Control",
		Description: "Restrictions on authenticated users are not properly enforced.",
		Practices:   []string{"Deny by default", "Enforce record ownership", "Disable directory listing"},
		TestProcedures: []string{
			"Attempt access to another user's resources",
			"Verify server-side enforcement of every role check",
		},
	}},
	types.CatPathTraversal: {{
		Framework:      FrameworkOWASP,
		Number:         "A01:2021",
		Title:          "Broken Access Control",
		Description:    "Path manipulation grants access outside the intended scope.",
		Practices:      []string{"Canonicalize paths", "Confine file access to a fixed root"},
		TestProcedures: []string{"Submit ../ sequences through every file parameter"},
	}},
	types.CatCryptoFailure: {{
		Framework:      FrameworkOWASP,
		Number:         "A02:2021",
		Title:          "Cryptographic Failures",
		Description:    "Weak or absent cryptography exposes data in transit or at rest.",
		Practices:      []string{"Use current algorithms and key sizes", "Encrypt sensitive data at rest"},
		TestProcedures: []string{"Inventory cipher and hash usage against current guidance"},
	}},
	types.CatInsecureTransport: {{
		Framework:      FrameworkOWASP,
		Number:         "A02:2021",
		Title:          "Cryptographic Failures",
		Description:    "Data moves over plaintext or unverified channels.",
		Practices:      []string{"Enforce TLS on every hop", "Verify certificates on all clients"},
		TestProcedures: []string{"Capture traffic between components and confirm encryption"},
	}},
	types.CatInjection: {{
		Framework:      FrameworkOWASP,
		Number:         "A03:2021",
		Title:          "Injection",
		Description:    "Untrusted data reaches an interpreter as part of a command or query.",
		Practices:      []string{"Parameterize queries", "Validate input server-side"},
		TestProcedures: []string{"Fuzz inputs with interpreter metacharacters"},
	}},
	types.CatCommandInjection: {{
		Framework:      FrameworkOWASP,
		Number:         "A03:2021",
		Title:          "Injection",
		Description:    "Untrusted data reaches an OS command interpreter.",
		Practices:      []string{"Use argument-vector process APIs", "Allowlist command arguments"},
		TestProcedures: []string{"Inject shell metacharacters through each exposed parameter"},
	}},
	types.CatInsecureConfig: {{
		Framework:      FrameworkOWASP,
		Number:         "A05:2021",
		Title:          "Security Misconfiguration",
		Description:    "Insecure defaults, open cloud permissions, or verbose errors.",
		Practices:      []string{"Harden every environment from one reviewed baseline", "Minimize installed features"},
		TestProcedures: []string{"Diff deployed configuration against the hardening baseline"},
	}},
	types.CatVulnerableDep: {{
		Framework:      FrameworkOWASP,
		Number:         "A06:2021",
		Title:          "Vulnerable and Outdated Components",
		Description:    "Components with known vulnerabilities are part of the deployed artifact.",
		Practices:      []string{"Continuously inventory dependency versions", "Subscribe to advisories for used components"},
		TestProcedures: []string{"Compare the dependency manifest against the advisory database"},
	}},
	types.CatHardcodedSecret: {{
		Framework:      FrameworkOWASP,
		Number:         "A07:2021",
		Title:          "Identification and Authentication Failures",
		Description:    "Credentials are embedded where they cannot be rotated or protected.",
		Practices:      []string{"Store secrets in a managed vault", "Rotate credentials on exposure"},
		TestProcedures: []string{"Scan repositories and images for credential material"},
	}},
	types.CatDeserialization: {{
		Framework:      FrameworkOWASP,
		Number:         "A08:2021",
		Title:          "Software and Data Integrity Failures",
		Description:    "Untrusted data is deserialized into live objects.",
		Practices:      []string{"Prefer data-only formats", "Sign serialized payloads crossing trust boundaries"},
		TestProcedures: []string{"Feed malformed serialized payloads to each consumer"},
	}},
	types.CatLoggingFailure: {{
		Framework:      FrameworkOWASP,
		Number:         "A09:2021",
		Title:          "Security Logging and Monitoring Failures",
		Description:    "Security-relevant events are not captured or not actionable.",
		Practices:      []string{"Log auth and access-control failures with context", "Centralize and alert on log streams"},
		TestProcedures: []string{"Trigger failed logins and confirm they surface in monitoring"},
	}},
	types.CatInfoDisclosure: {{
		Framework:      FrameworkOWASP,
		Number:         "A09:2021",
		Title:          "Security Logging and Monitoring Failures",
		Description:    "Sensitive values leak through logs, errors, or side channels.",
		Practices:      []string{"Redact sensitive fields at the logging boundary"},
		TestProcedures: []string{"Review log output for credential or PII material"},
	}},
}

// ControlsFor returns the control entries mapped to a category. Unknown
// categories map to nothing.
func ControlsFor(cat types.Category) []types.Control {
	return controlsByCategory[cat]
}

// Map produces one ComplianceMapping per finding. Status derivation follows
// the group the finding belongs to: a critical member anywhere in the same
// category group forces non-compliant for that group.
func Map(findings []types.Finding) []types.ComplianceMapping {
	statusByCat := map[types.Category]types.ComplianceStatus{}
	for _, f := range findings {
		cur, ok := statusByCat[f.Category]
		if f.Severity == types.SevCritical {
			statusByCat[f.Category] = types.StatusNonCompliant
		} else if !ok || cur != types.StatusNonCompliant {
			statusByCat[f.Category] = types.StatusPartial
		}
	}

	out := make([]types.ComplianceMapping, 0, len(findings))
	for _, f := range findings {
		controls := ControlsFor(f.Category)
		if len(controls) == 0 {
			continue
		}
		status := statusByCat[f.Category]
		// invariant: a critical finding can never map to compliant
		if f.Severity == types.SevCritical && status == types.StatusCompliant {
			status = types.StatusNonCompliant
		}
		out = append(out, types.ComplianceMapping{
			FindingID: f.ID,
			Controls:  controls,
			Status:    status,
			Evidence:  append([]string(nil), f.Evidence...),
			Gaps:      []types.GapAnalysis{gapFor(f, controls[0])},
			Actions:   actionsFor(status),
		})
	}
	return out
}

func gapFor(f types.Finding, c types.Control) types.GapAnalysis {
	return types.GapAnalysis{
		Severity:    f.Severity,
		Description: fmt.Sprintf("%s violates %s (%s) at %s", f.Title, c.Number, c.Title, f.Location.FilePath),
		Remediation: f.Remediation.Summary,
		Timeline:    Timeline(f.Severity),
		Owner:       "application-security",
	}
}

// Timeline returns the remediation window expected for a gap of the given
// severity.
func Timeline(sev types.Severity) string {
	switch sev {
	case types.SevCritical:
		return "24 hours"
	case types.SevHigh:
		return "1 week"
	case types.SevMedium:
		return "1 month"
	default:
		return "3 months"
	}
}

func actionsFor(status types.ComplianceStatus) []string {
	switch status {
	case types.StatusNonCompliant:
		return []string{"Escalate to the owning team for immediate remediation", "Re-scan after the fix lands"}
	case types.StatusPartial:
		return []string{"Schedule remediation within the gap timeline", "Document compensating controls"}
	default:
		return []string{"No action required"}
	}
}
