package rules

import "github.com/codesweep/codesweep/internal/types"

// ServerSide returns the rule set for server code: command and SQL injection,
// insecure deserialization, hardcoded credentials, and weak crypto.
func ServerSide() []Rule {
	return []Rule{
		{
			ID:          "server-os-system",
			Name:        "Shell command built from os.system",
			Description: "os.system hands its argument to a shell; any tainted input becomes command injection.",
			Pattern:     `os\.system\s*\(`,
			Severity:    types.SevCritical,
			Category:    types.CatCommandInjection,
			CWE:         "CWE-78",
			Remediation: Remediation{
				Summary: "Replace shell invocation with an argument-vector API",
				Steps: []string{
					"Use subprocess.run with a list argument and shell=False",
					"Validate or allowlist every externally influenced argument",
				},
				Effort:       "medium",
				Verification: []string{"Pass `; id` through each input and confirm no command executes"},
			},
			References: []string{"https://owasp.org/Top10/A03_2021-Injection/"},
		},
		{
			ID:          "server-subprocess-shell",
			Name:        "subprocess with shell=True",
			Description: "shell=True routes the command line through the shell, enabling metacharacter injection.",
			Pattern:     `shell\s*=\s*True`,
			Severity:    types.SevHigh,
			Category:    types.CatCommandInjection,
			CWE:         "CWE-78",
			Remediation: Remediation{
				Summary: "Drop shell=True and pass the command as an argument list",
				Steps:   []string{"Convert the command string to an argv list", "Set shell=False"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A03_2021-Injection/"},
		},
		{
			ID:          "server-exec-eval",
			Name:        "Dynamic code execution",
			Description: "exec/eval on request-derived strings executes attacker-supplied code in process.",
			Pattern:     `\b(exec|eval)\s*\(\s*[a-zA-Z_][\w.]*\s*[,)]`,
			Severity:    types.SevHigh,
			Category:    types.CatCommandInjection,
			CWE:         "CWE-95",
			Remediation: Remediation{
				Summary: "Remove dynamic execution of request data",
				Steps:   []string{"Replace exec/eval with explicit dispatch", "Treat all request fields as data, never code"},
				Effort:  "medium",
			},
		},
		{
			ID:          "server-sql-concat",
			Name:        "SQL statement built by string concatenation",
			Description: "Concatenating or interpolating values into SQL defeats the driver's parameter binding.",
			Pattern:     `(?i)(SELECT|INSERT|UPDATE|DELETE)\s[^"'\n]*["']\s*(\+|%|\|\|)\s*`,
			Severity:    types.SevHigh,
			Category:    types.CatInjection,
			CWE:         "CWE-89",
			Remediation: Remediation{
				Summary: "Use parameterized queries",
				Steps:   []string{"Replace concatenation with bind placeholders", "Review every query path for string building"},
				Effort:  "medium",
				Verification: []string{
					"Run the query paths with a single-quote payload and confirm a bind error rather than a syntax error",
				},
			},
			References: []string{"https://owasp.org/Top10/A03_2021-Injection/"},
		},
		{
			ID:          "server-pickle-load",
			Name:        "Unsafe pickle deserialization",
			Description: "pickle.load(s) executes arbitrary bytecode from the stream; never feed it untrusted data.",
			Pattern:     `pickle\.loads?\s*\(`,
			Severity:    types.SevHigh,
			Category:    types.CatDeserialization,
			CWE:         "CWE-502",
			Remediation: Remediation{
				Summary: "Deserialize untrusted data with a safe format",
				Steps:   []string{"Switch to JSON or another data-only format", "If pickle is unavoidable, sign and verify payloads"},
				Effort:  "medium",
			},
		},
		{
			ID:          "server-yaml-load",
			Name:        "yaml.load without safe loader",
			Description: "yaml.load with the default loader constructs arbitrary objects from the document.",
			Pattern:     `yaml\.load\s*\((?:[^)L]|L(?!oader))*\)`,
			Severity:    types.SevMedium,
			Category:    types.CatDeserialization,
			CWE:         "CWE-502",
			Remediation: Remediation{
				Summary: "Use yaml.safe_load",
				Steps:   []string{"Replace yaml.load with yaml.safe_load"},
				Effort:  "low",
			},
		},
		{
			ID:          "server-hardcoded-password",
			Name:        "Hardcoded credential",
			Description: "A password or API key committed to source is exposed to everyone with repository access.",
			Pattern:     `(?i)(password|passwd|api[_-]?key|secret[_-]?key|auth[_-]?token)\s*[:=]\s*["'][^"']{6,}["']`,
			Severity:    types.SevCritical,
			Category:    types.CatHardcodedSecret,
			CWE:         "CWE-798",
			Remediation: Remediation{
				Summary: "Move credentials to a secret manager and rotate them",
				Steps: []string{
					"Rotate the exposed credential immediately",
					"Load secrets from the environment or a secret manager",
					"Add a pre-commit secret scan",
				},
				Effort:   "medium",
				Priority: 1,
			},
			References: []string{"https://owasp.org/Top10/A07_2021-Identification_and_Authentication_Failures/"},
		},
		{
			ID:          "server-weak-hash",
			Name:        "Weak hash algorithm",
			Description: "MD5 and SHA-1 are broken for any security purpose, including password storage and signatures.",
			Pattern:     `(?i)\b(md5|sha1)\s*\(`,
			Severity:    types.SevMedium,
			Category:    types.CatCryptoFailure,
			CWE:         "CWE-327",
			Remediation: Remediation{
				Summary: "Use SHA-256 or better; bcrypt/argon2 for passwords",
				Steps:   []string{"Replace md5/sha1 with SHA-256 for integrity", "Use argon2id or bcrypt for password hashing"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A02_2021-Cryptographic_Failures/"},
		},
		{
			ID:          "server-des-cipher",
			Name:        "Legacy DES cipher",
			Description: "DES and 3DES key sizes are brute-forceable with commodity hardware.",
			Pattern:     `(?i)\b(DES|TripleDES|3DES)\b[^\n]*(encrypt|cipher|new)`,
			Severity:    types.SevMedium,
			Category:    types.CatCryptoFailure,
			CWE:         "CWE-327",
			Remediation: Remediation{
				Summary: "Migrate to AES-GCM",
				Steps:   []string{"Replace DES variants with AES-256-GCM", "Re-encrypt stored data with the new cipher"},
				Effort:  "high",
			},
		},
		{
			ID:          "server-path-traversal",
			Name:        "Path built from request input",
			Description: "Joining request-derived names into filesystem paths allows ../ traversal out of the intended root.",
			Pattern:     `(open|os\.path\.join|ioutil\.ReadFile|os\.ReadFile)\s*\([^)\n]*(request|req\.|params|query)`,
			Severity:    types.SevHigh,
			Category:    types.CatPathTraversal,
			CWE:         "CWE-22",
			Remediation: Remediation{
				Summary: "Canonicalize and confine paths to a fixed root",
				Steps:   []string{"Resolve the path and verify it stays under the allowed root", "Reject names containing path separators"},
				Effort:  "low",
			},
		},
		{
			ID:          "server-debug-enabled",
			Name:        "Debug mode enabled",
			Description: "Framework debug modes leak stack traces, config, and sometimes interactive consoles.",
			Pattern:     `(?i)\bdebug\s*[:=]\s*(true|True|1)\b`,
			Severity:    types.SevLow,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-489",
			Remediation: Remediation{
				Summary: "Disable debug in deployable configuration",
				Steps:   []string{"Gate debug on a non-production environment variable"},
				Effort:  "low",
			},
		},
		{
			ID:          "server-catch-silent",
			Name:        "Swallowed exception",
			Description: "Empty exception handlers discard security-relevant failures without a trace.",
			Pattern:     `except[^\n:]*:\s*\n\s*pass\b`,
			Severity:    types.SevInfo,
			Category:    types.CatLoggingFailure,
			CWE:         "CWE-778",
			Remediation: Remediation{
				Summary: "Log failures before suppressing them",
				Steps:   []string{"Log the exception with context", "Re-raise or handle explicitly where recovery is unsafe"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A09_2021-Security_Logging_and_Monitoring_Failures/"},
		},
	}
}
