package scanner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/types"
)

// Advisory records one known-vulnerable version range for a package.
type Advisory struct {
	Ecosystem   string // npm, pypi, gomod
	Package     string
	Range       string // semver range, e.g. "<4.17.21"
	ID          string // external advisory identifier
	Severity    types.Severity
	Title       string
	Description string
	FixedIn     string
	Reference   string
}

// defaultAdvisories is a built-in table of well-known vulnerable releases.
// A production deployment would sync this from an advisory feed; the table
// shape is the contract.
var defaultAdvisories = []Advisory{
	{
		Ecosystem: "npm", Package: "lodash", Range: "<4.17.21",
		ID: "CVE-2021-23337", Severity: types.SevHigh,
		Title:       "lodash command injection via template",
		Description: "lodash versions before 4.17.21 are vulnerable to command injection via the template function.",
		FixedIn:     "4.17.21",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2021-23337",
	},
	{
		Ecosystem: "npm", Package: "minimist", Range: "<1.2.6",
		ID: "CVE-2021-44906", Severity: types.SevCritical,
		Title:       "minimist prototype pollution",
		Description: "minimist before 1.2.6 allows prototype pollution through crafted arguments.",
		FixedIn:     "1.2.6",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2021-44906",
	},
	{
		Ecosystem: "npm", Package: "node-fetch", Range: "<2.6.7",
		ID: "CVE-2022-0235", Severity: types.SevMedium,
		Title:       "node-fetch exposure of sensitive headers",
		Description: "node-fetch before 2.6.7 forwards secure headers to untrusted redirect targets.",
		FixedIn:     "2.6.7",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2022-0235",
	},
	{
		Ecosystem: "pypi", Package: "pyyaml", Range: "<5.4.0",
		ID: "CVE-2020-14343", Severity: types.SevCritical,
		Title:       "PyYAML arbitrary code execution",
		Description: "PyYAML before 5.4 executes arbitrary code when full_load processes untrusted documents.",
		FixedIn:     "5.4.0",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2020-14343",
	},
	{
		Ecosystem: "pypi", Package: "requests", Range: "<2.31.0",
		ID: "CVE-2023-32681", Severity: types.SevMedium,
		Title:       "requests Proxy-Authorization header leak",
		Description: "requests before 2.31.0 leaks Proxy-Authorization headers to destination servers on redirects.",
		FixedIn:     "2.31.0",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2023-32681",
	},
	{
		Ecosystem: "pypi", Package: "django", Range: "<3.2.18",
		ID: "CVE-2023-24580", Severity: types.SevHigh,
		Title:       "Django denial of service via file uploads",
		Description: "Django before 3.2.18 allows resource exhaustion through multipart parsing.",
		FixedIn:     "3.2.18",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2023-24580",
	},
	{
		Ecosystem: "gomod", Package: "gopkg.in/yaml.v2", Range: "<2.2.3",
		ID: "CVE-2019-11254", Severity: types.SevMedium,
		Title:       "yaml.v2 denial of service",
		Description: "yaml.v2 before 2.2.3 consumes excessive CPU parsing crafted documents.",
		FixedIn:     "2.2.3",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2019-11254",
	},
	{
		Ecosystem: "gomod", Package: "golang.org/x/text", Range: "<0.3.8",
		ID: "CVE-2022-32149", Severity: types.SevHigh,
		Title:       "x/text/language denial of service",
		Description: "golang.org/x/text before 0.3.8 can be forced into excessive parsing work via Accept-Language.",
		FixedIn:     "0.3.8",
		Reference:   "https://nvd.nist.gov/vuln/detail/CVE-2022-32149",
	},
}

// DependencyAnalyzer parses dependency manifests and matches declared versions
// against the advisory table using semver ranges.
func DependencyAnalyzer(scannerName string, advisories []Advisory) Analyzer {
	byEco := map[string]map[string][]Advisory{}
	for _, a := range advisories {
		if byEco[a.Ecosystem] == nil {
			byEco[a.Ecosystem] = map[string][]Advisory{}
		}
		byEco[a.Ecosystem][a.Package] = append(byEco[a.Ecosystem][a.Package], a)
	}
	return func(p string, data []byte) ([]types.Finding, error) {
		switch path.Base(p) {
		case "package.json":
			return analyzeNPM(scannerName, p, data, byEco["npm"])
		case "requirements.txt":
			return analyzeRequirements(scannerName, p, data, byEco["pypi"]), nil
		case "go.mod":
			return analyzeGoMod(scannerName, p, data, byEco["gomod"]), nil
		}
		return nil, nil
	}
}

// IsManifest reports whether the path is a dependency manifest this scanner
// understands.
func IsManifest(p string) bool {
	switch path.Base(p) {
	case "package.json", "requirements.txt", "go.mod":
		return true
	}
	return false
}

func analyzeNPM(scanner, p string, data []byte, table map[string][]Advisory) ([]types.Finding, error) {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}
	var out []types.Finding
	for name, raw := range manifest.Dependencies {
		out = append(out, matchAdvisories(scanner, p, name, raw, table)...)
	}
	for name, raw := range manifest.DevDependencies {
		out = append(out, matchAdvisories(scanner, p, name, raw, table)...)
	}
	return out, nil
}

func analyzeRequirements(scanner, p string, data []byte, table map[string][]Advisory) []types.Finding {
	var out []types.Finding
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, ver, ok := strings.Cut(line, "==")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		out = append(out, matchAdvisories(scanner, p, name, strings.TrimSpace(ver), table)...)
	}
	return out
}

func analyzeGoMod(scanner, p string, data []byte, table map[string][]Advisory) []types.Finding {
	var out []types.Finding
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "require ")
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[1], "v") {
			continue
		}
		out = append(out, matchAdvisories(scanner, p, fields[0], fields[1], table)...)
	}
	return out
}

func matchAdvisories(scanner, p, pkg, rawVersion string, table map[string][]Advisory) []types.Finding {
	advisories := table[pkg]
	if len(advisories) == 0 {
		return nil
	}
	ver, err := parseVersion(rawVersion)
	if err != nil {
		return nil
	}
	var out []types.Finding
	for _, a := range advisories {
		rng, err := semver.ParseRange(a.Range)
		if err != nil || !rng(ver) {
			continue
		}
		out = append(out, advisoryFinding(scanner, p, pkg, rawVersion, a))
	}
	return out
}

// parseVersion tolerates manifest prefixes like ^, ~, =, v and partial versions.
func parseVersion(raw string) (semver.Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "^~=v ")
	if i := strings.IndexAny(s, " ,<>|"); i >= 0 {
		s = s[:i]
	}
	return semver.ParseTolerant(s)
}

func advisoryFinding(scanner, p, pkg, version string, a Advisory) types.Finding {
	r := rules.Rule{
		ID:          "deps-" + strings.ToLower(a.ID),
		Name:        a.Title,
		Description: a.Description,
		Severity:    a.Severity,
		Category:    types.CatVulnerableDep,
		CWE:         "CWE-1395",
		Remediation: rules.Remediation{
			Summary: fmt.Sprintf("Upgrade %s to %s or later", pkg, a.FixedIn),
			Steps: []string{
				fmt.Sprintf("Bump %s to at least %s in the manifest", pkg, a.FixedIn),
				"Regenerate the lockfile and run the test suite",
			},
			Effort: "low",
		},
		References: []string{a.Reference},
	}
	loc := types.Location{FilePath: p, Line: 1, Snippet: fmt.Sprintf("%s %s", pkg, version)}
	return rules.NewFinding(scanner, r, loc, fmt.Sprintf("%s %s matches advisory %s (%s)", pkg, version, a.ID, a.Range))
}
