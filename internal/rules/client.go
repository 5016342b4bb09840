package rules

import "github.com/codesweep/codesweep/internal/types"

// ClientSide returns the rule set for browser-facing code: DOM XSS sinks,
// open redirects, postMessage misuse, and tokens parked in web storage.
func ClientSide() []Rule {
	return []Rule{
		{
			ID:          "client-innerhtml",
			Name:        "Unsanitized innerHTML assignment",
			Description: "Assigning dynamic content to innerHTML allows script injection if the value is attacker-influenced.",
			Pattern:     `\.innerHTML\s*=`,
			Severity:    types.SevHigh,
			Category:    types.CatInjection,
			CWE:         "CWE-79",
			Remediation: Remediation{
				Summary: "Use textContent or a sanitizer before inserting HTML",
				Steps: []string{
					"Replace innerHTML with textContent where markup is not required",
					"Sanitize HTML fragments with DOMPurify or an equivalent library",
					"Add a restrictive Content-Security-Policy",
				},
				Effort:       "low",
				Verification: []string{"Inject a <script> payload through every dynamic input and confirm it renders inert"},
			},
			References: []string{"https://owasp.org/www-community/attacks/xss/"},
		},
		{
			ID:          "client-document-write",
			Name:        "document.write with dynamic content",
			Description: "document.write bypasses DOM sanitization and is a classic XSS sink.",
			Pattern:     `document\.write(ln)?\s*\(`,
			Severity:    types.SevHigh,
			Category:    types.CatInjection,
			CWE:         "CWE-79",
			Remediation: Remediation{
				Summary: "Build DOM nodes explicitly instead of writing raw markup",
				Steps:   []string{"Replace document.write with createElement/append", "Escape any user-controlled values"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/www-community/attacks/DOM_Based_XSS"},
		},
		{
			ID:          "client-eval",
			Name:        "eval of dynamic expression",
			Description: "eval executes arbitrary strings as code; any tainted input becomes remote code execution in the page.",
			Pattern:     `\beval\s*\(`,
			Severity:    types.SevHigh,
			Category:    types.CatInjection,
			CWE:         "CWE-95",
			Remediation: Remediation{
				Summary: "Remove eval; parse data with JSON.parse or a proper parser",
				Steps:   []string{"Replace eval with JSON.parse for data", "Refactor dynamic dispatch to a function table"},
				Effort:  "medium",
			},
		},
		{
			ID:          "client-location-redirect",
			Name:        "Open redirect via location assignment",
			Description: "Assigning untrusted values to window.location enables phishing redirects.",
			Pattern:     `(window\.)?location(\.href)?\s*=\s*[^'"\n]*(req|param|query|input|location\.hash|location\.search)`,
			Severity:    types.SevMedium,
			Category:    types.CatBrokenAccess,
			CWE:         "CWE-601",
			Remediation: Remediation{
				Summary: "Validate redirect targets against an allowlist",
				Steps:   []string{"Map redirect parameters to known destinations", "Reject absolute URLs from user input"},
				Effort:  "low",
			},
		},
		{
			ID:          "client-postmessage-wildcard",
			Name:        "postMessage with wildcard origin",
			Description: "Sending messages with targetOrigin '*' leaks data to any embedding window.",
			Pattern:     `postMessage\s*\([^)]*,\s*['"]\*['"]`,
			Severity:    types.SevMedium,
			Category:    types.CatInfoDisclosure,
			CWE:         "CWE-346",
			Remediation: Remediation{
				Summary: "Pin the target origin on every postMessage call",
				Steps:   []string{"Replace '*' with the intended origin", "Validate event.origin on receivers"},
				Effort:  "low",
			},
		},
		{
			ID:          "client-storage-token",
			Name:        "Credential stored in web storage",
			Description: "Tokens placed in localStorage or sessionStorage are readable by any injected script.",
			Pattern:     `(localStorage|sessionStorage)\.setItem\s*\(\s*['"][^'"]*(token|secret|password|apikey|api_key)[^'"]*['"]`,
			Severity:    types.SevMedium,
			Category:    types.CatHardcodedSecret,
			CWE:         "CWE-522",
			Remediation: Remediation{
				Summary: "Keep session material in HttpOnly cookies",
				Steps:   []string{"Move tokens to HttpOnly, Secure cookies", "Scope tokens narrowly and rotate them"},
				Effort:  "medium",
			},
		},
		{
			ID:          "client-inline-handler",
			Name:        "Inline event handler with dynamic value",
			Description: "Templated inline handlers (onclick, onerror) concatenated from data are an XSS vector.",
			Pattern:     `on(click|error|load|mouseover)\s*=\s*["'][^"']*\+`,
			Severity:    types.SevLow,
			Category:    types.CatInjection,
			CWE:         "CWE-79",
			Remediation: Remediation{
				Summary: "Attach handlers with addEventListener",
				Steps:   []string{"Replace inline handlers with addEventListener", "Pass data via dataset attributes"},
				Effort:  "low",
			},
		},
	}
}
