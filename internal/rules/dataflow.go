package rules

import "github.com/codesweep/codesweep/internal/types"

// DataFlow returns the rule set for inter-component data movement: plaintext
// transport, tainted input reaching sinks, secrets on the wire.
func DataFlow() []Rule {
	return []Rule{
		{
			ID:          "flow-plain-http",
			Name:        "Plaintext HTTP endpoint",
			Description: "Calls to http:// endpoints move data without transport encryption.",
			Pattern:     `["']http://(?:[a-zA-Z0-9.-]+)(?::\d+)?[^"']*["']`,
			Severity:    types.SevMedium,
			Category:    types.CatInsecureTransport,
			CWE:         "CWE-319",
			Remediation: Remediation{
				Summary: "Use HTTPS for every cross-component call",
				Steps:   []string{"Switch the endpoint to https://", "Enforce TLS at the receiving service"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A02_2021-Cryptographic_Failures/"},
		},
		{
			ID:          "flow-secret-in-query",
			Name:        "Secret passed in query string",
			Description: "Query-string credentials end up in access logs, proxies, and browser history.",
			Pattern:     `[?&](api[_-]?key|token|secret|password)=[^&\s"']+`,
			Severity:    types.SevHigh,
			Category:    types.CatInfoDisclosure,
			CWE:         "CWE-598",
			Remediation: Remediation{
				Summary: "Move credentials to an Authorization header",
				Steps:   []string{"Send the credential in a header or request body", "Rotate any value already logged"},
				Effort:  "low",
			},
		},
		{
			ID:          "flow-request-to-query",
			Name:        "Request data forwarded into a query sink",
			Description: "Request fields flowing directly into query or command construction skip validation boundaries.",
			Pattern:     `(execute|query|run)\s*\([^)\n]*(request\.|req\.(body|params|query)|params\[)`,
			Severity:    types.SevHigh,
			Category:    types.CatInjection,
			CWE:         "CWE-20",
			Remediation: Remediation{
				Summary: "Validate and bind request data before it reaches a sink",
				Steps:   []string{"Validate fields against a schema at the boundary", "Use parameter binding for the sink call"},
				Effort:  "medium",
			},
		},
		{
			ID:          "flow-cors-wildcard",
			Name:        "CORS allows any origin",
			Description: "Access-Control-Allow-Origin: * combined with credentials exposes responses cross-origin.",
			Pattern:     `(?i)access-control-allow-origin["'\s:,]+\*`,
			Severity:    types.SevMedium,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-942",
			Remediation: Remediation{
				Summary: "Echo only allowlisted origins",
				Steps:   []string{"Replace the wildcard with an origin allowlist", "Never combine wildcard origins with credentials"},
				Effort:  "low",
			},
		},
		{
			ID:          "flow-sensitive-log",
			Name:        "Sensitive value written to logs",
			Description: "Logging passwords or tokens persists secrets into log aggregation systems.",
			Pattern:     `(?i)(log|print|console)\w*[.(][^)\n]*(password|secret|token|ssn|credit)`,
			Severity:    types.SevMedium,
			Category:    types.CatInfoDisclosure,
			CWE:         "CWE-532",
			Remediation: Remediation{
				Summary: "Redact sensitive fields before logging",
				Steps:   []string{"Strip or mask sensitive fields in the log call", "Add a redaction filter to the logging pipeline"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A09_2021-Security_Logging_and_Monitoring_Failures/"},
		},
		{
			ID:          "flow-tls-verify-off",
			Name:        "TLS verification disabled on client",
			Description: "Disabling certificate verification lets any on-path attacker impersonate the peer.",
			Pattern:     `(?i)(verify\s*=\s*False|InsecureSkipVerify\s*:\s*true|rejectUnauthorized\s*:\s*false)`,
			Severity:    types.SevHigh,
			Category:    types.CatInsecureTransport,
			CWE:         "CWE-295",
			Remediation: Remediation{
				Summary: "Re-enable certificate verification",
				Steps:   []string{"Remove the verification override", "Install the proper CA bundle where trust fails"},
				Effort:  "low",
			},
		},
	}
}
