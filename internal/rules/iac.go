package rules

import (
	"regexp"
	"strings"

	"github.com/codesweep/codesweep/internal/types"
)

// Infrastructure returns the rule set for infrastructure-as-code definitions:
// open network rules, public storage, privileged workloads, wildcard IAM.
func Infrastructure() []Rule {
	return []Rule{
		{
			ID:          "iac-open-ingress",
			Name:        "Security group open to the world",
			Description: "An ingress rule with cidr 0.0.0.0/0 exposes the port to every address on the internet.",
			Pattern:     `0\.0\.0\.0/0`,
			Severity:    types.SevHigh,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-284",
			Remediation: Remediation{
				Summary: "Restrict ingress to known CIDR ranges",
				Steps:   []string{"Replace 0.0.0.0/0 with the narrowest required ranges", "Front public services with a load balancer or WAF"},
				Effort:  "low",
			},
			References: []string{"https://owasp.org/Top10/A05_2021-Security_Misconfiguration/"},
		},
		{
			ID:          "iac-public-acl",
			Name:        "Publicly readable storage bucket",
			Description: "A public-read ACL lets anonymous clients list and fetch bucket contents.",
			Pattern:     `(?i)acl\s*[:=]\s*["']?public-read(-write)?["']?`,
			Severity:    types.SevHigh,
			Category:    types.CatBrokenAccess,
			CWE:         "CWE-732",
			Remediation: Remediation{
				Summary: "Make the bucket private and serve objects through signed URLs",
				Steps:   []string{"Set the ACL to private", "Enable the account-level public access block"},
				Effort:  "low",
			},
		},
		{
			ID:          "iac-privileged-container",
			Name:        "Privileged container",
			Description: "privileged: true grants the container full access to host devices and kernels capabilities.",
			Pattern:     `(?i)privileged\s*[:=]\s*true`,
			Severity:    types.SevHigh,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-250",
			Remediation: Remediation{
				Summary: "Drop privileged mode and grant specific capabilities",
				Steps:   []string{"Remove privileged: true", "Add only the needed capabilities via securityContext"},
				Effort:  "medium",
			},
		},
		{
			ID:          "iac-encryption-disabled",
			Name:        "Encryption explicitly disabled",
			Description: "A resource with encryption turned off stores data in plaintext at rest.",
			Pattern:     `(?i)encrypt(ed|ion)?\s*[:=]\s*false`,
			Severity:    types.SevMedium,
			Category:    types.CatCryptoFailure,
			CWE:         "CWE-311",
			Remediation: Remediation{
				Summary: "Enable at-rest encryption",
				Steps:   []string{"Set encryption to true with a managed key", "Re-create or migrate existing plaintext resources"},
				Effort:  "medium",
			},
		},
		{
			ID:          "iac-wildcard-iam",
			Name:        "Wildcard IAM action",
			Description: "Action: * combined with broad resources grants far more than the workload needs.",
			Pattern:     `(?i)["']?action["']?\s*[:=]\s*\[?\s*["']\*["']`,
			Severity:    types.SevHigh,
			Category:    types.CatBrokenAccess,
			CWE:         "CWE-269",
			Remediation: Remediation{
				Summary: "Scope IAM policies to specific actions and resources",
				Steps:   []string{"Enumerate the actions the workload performs", "Replace the wildcard with that list"},
				Effort:  "medium",
			},
		},
		{
			ID:          "iac-default-password",
			Name:        "Default or inline password in template",
			Description: "Passwords embedded in IaC templates land in state files and version control.",
			Pattern:     `(?i)(admin_|master_|db_)?password\s*[:=]\s*["'][^"'$]{4,}["']`,
			Severity:    types.SevCritical,
			Category:    types.CatHardcodedSecret,
			CWE:         "CWE-798",
			Remediation: Remediation{
				Summary: "Source credentials from a secret manager reference",
				Steps:   []string{"Rotate the embedded credential", "Reference a secret manager entry instead of a literal"},
				Effort:  "medium",
				Priority: 1,
			},
		},
	}
}

var (
	reTLSResource    = regexp.MustCompile(`(?i)(listener|load_balancer|ingress)`)
	reTLSPolicy      = regexp.MustCompile(`(?i)(ssl_policy|tls|certificate)`)
	reLoggingSupport = regexp.MustCompile(`(?i)resource\s+["'](aws_s3_bucket|aws_cloudtrail|google_storage_bucket)["']`)
	reLoggingBlock   = regexp.MustCompile(`(?i)(logging|access_log)`)
)

// MissingTLSCheck is a presence/absence probe: a listener or ingress definition
// with no TLS configuration anywhere in the file.
func MissingTLSCheck(scanner string) Check {
	rule := Rule{
		ID:          "iac-missing-tls",
		Name:        "Listener without TLS configuration",
		Description: "The file defines a listener or ingress but never references a TLS policy or certificate.",
		Severity:    types.SevMedium,
		Category:    types.CatInsecureTransport,
		CWE:         "CWE-319",
		Remediation: Remediation{
			Summary: "Terminate TLS on every externally reachable listener",
			Steps:   []string{"Attach a certificate and TLS policy to the listener", "Redirect plaintext listeners to HTTPS"},
			Effort:  "low",
		},
	}
	return func(path string, data []byte) []types.Finding {
		if !isIaCPath(path) {
			return nil
		}
		if !reTLSResource.Match(data) || reTLSPolicy.Match(data) {
			return nil
		}
		return []types.Finding{NewFinding(scanner, rule, types.Location{FilePath: path, Line: 1}, "no TLS configuration present")}
	}
}

// MissingLoggingCheck flags audit-relevant resources defined without any
// logging block.
func MissingLoggingCheck(scanner string) Check {
	rule := Rule{
		ID:          "iac-missing-logging",
		Name:        "Audited resource without logging",
		Description: "The file defines a storage or trail resource but configures no access logging.",
		Severity:    types.SevLow,
		Category:    types.CatLoggingFailure,
		CWE:         "CWE-778",
		Remediation: Remediation{
			Summary: "Enable access logging on audit-relevant resources",
			Steps:   []string{"Add a logging block pointing at a dedicated log bucket"},
			Effort:  "low",
		},
	}
	return func(path string, data []byte) []types.Finding {
		if !isIaCPath(path) {
			return nil
		}
		if !reLoggingSupport.Match(data) || reLoggingBlock.Match(data) {
			return nil
		}
		return []types.Finding{NewFinding(scanner, rule, types.Location{FilePath: path, Line: 1}, "no logging configuration present")}
	}
}

func isIaCPath(path string) bool {
	lower := strings.ToLower(path)
	for _, suf := range []string{".tf", ".tfvars", ".yaml", ".yml", ".json", ".template"} {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}
