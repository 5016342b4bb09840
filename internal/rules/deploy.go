package rules

import "github.com/codesweep/codesweep/internal/types"

// Deployment returns the rule set for deployment and provisioning scripts.
func Deployment() []Rule {
	return []Rule{
		{
			ID:          "deploy-curl-pipe-sh",
			Name:        "Remote script piped into a shell",
			Description: "curl | sh executes whatever the remote host serves, with no integrity check.",
			Pattern:     `(curl|wget)[^\n|]*\|\s*(sudo\s+)?(ba)?sh`,
			Severity:    types.SevHigh,
			Category:    types.CatCommandInjection,
			CWE:         "CWE-494",
			Remediation: Remediation{
				Summary: "Download, verify, then execute",
				Steps: []string{
					"Download the script to disk",
					"Verify a pinned checksum or signature",
					"Execute the verified copy",
				},
				Effort: "low",
			},
		},
		{
			ID:          "deploy-chmod-world",
			Name:        "World-writable permissions",
			Description: "chmod 777 lets any local user modify the file, including binaries later run as root.",
			Pattern:     `chmod\s+(-R\s+)?0?77[0-7]`,
			Severity:    types.SevMedium,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-732",
			Remediation: Remediation{
				Summary: "Grant the narrowest permissions that work",
				Steps:   []string{"Replace 777 with owner/group scoped bits", "Audit ownership of deployed files"},
				Effort:  "low",
			},
		},
		{
			ID:          "deploy-exported-secret",
			Name:        "Secret exported in a script",
			Description: "export VAR=secret bakes credentials into scripts and process environments visible to other users.",
			Pattern:     `export\s+\w*(KEY|TOKEN|SECRET|PASSWORD)\w*\s*=\s*['"]?[A-Za-z0-9/+_=-]{8,}`,
			Severity:    types.SevCritical,
			Category:    types.CatHardcodedSecret,
			CWE:         "CWE-798",
			Remediation: Remediation{
				Summary: "Inject secrets at runtime from a secret store",
				Steps: []string{
					"Rotate the exported credential",
					"Fetch secrets from the platform secret store at startup",
				},
				Effort:   "medium",
				Priority: 1,
			},
		},
		{
			ID:          "deploy-tls-verify-off",
			Name:        "TLS verification disabled in tooling",
			Description: "Flags like curl -k or GIT_SSL_NO_VERIFY disable the only integrity check on fetched artifacts.",
			Pattern:     `(curl\s+[^\n]*-k\b|--insecure|GIT_SSL_NO_VERIFY|PYTHONHTTPSVERIFY=0)`,
			Severity:    types.SevMedium,
			Category:    types.CatInsecureTransport,
			CWE:         "CWE-295",
			Remediation: Remediation{
				Summary: "Fix the trust chain instead of disabling verification",
				Steps:   []string{"Remove the insecure flag", "Install the required CA certificate"},
				Effort:  "low",
			},
		},
		{
			ID:          "deploy-nopasswd-sudo",
			Name:        "Passwordless sudo grant",
			Description: "NOPASSWD sudo rules let a compromised service account escalate to root silently.",
			Pattern:     `NOPASSWD\s*:`,
			Severity:    types.SevHigh,
			Category:    types.CatBrokenAccess,
			CWE:         "CWE-250",
			Remediation: Remediation{
				Summary: "Require authentication and scope sudo to specific commands",
				Steps:   []string{"Remove NOPASSWD or restrict it to one audited command", "Log sudo invocations centrally"},
				Effort:  "low",
			},
		},
		{
			ID:          "deploy-latest-tag",
			Name:        "Unpinned container image",
			Description: "Deploying :latest makes rollouts unreproducible and silently pulls whatever was pushed last.",
			Pattern:     `(?i)image:\s*[\w./-]+:latest\b`,
			Severity:    types.SevLow,
			Category:    types.CatInsecureConfig,
			CWE:         "CWE-1357",
			Remediation: Remediation{
				Summary: "Pin images by digest or version tag",
				Steps:   []string{"Replace :latest with an immutable tag or digest"},
				Effort:  "low",
			},
		},
	}
}
