package scanner

import (
	"testing"

	"github.com/codesweep/codesweep/internal/types"
)

func TestIsManifest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"package.json", true},
		{"web/package.json", true},
		{"requirements.txt", true},
		{"go.mod", true},
		{"go.sum", false},
		{"package-lock.json", false},
	}
	for _, tt := range tests {
		if got := IsManifest(tt.path); got != tt.want {
			t.Errorf("IsManifest(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDependencyAnalyzer_NPM(t *testing.T) {
	analyze := DependencyAnalyzer("deps", defaultAdvisories)
	manifest := []byte(`{
  "dependencies": {
    "lodash": "^4.17.20",
    "express": "4.18.2"
  },
  "devDependencies": {
    "minimist": "1.2.5"
  }
}`)
	findings, err := analyze("web/package.json", manifest)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected lodash and minimist hits, got %+v", findings)
	}
	for _, f := range findings {
		if f.Category != types.CatVulnerableDep {
			t.Errorf("category = %s", f.Category)
		}
		if len(f.References) == 0 {
			t.Errorf("advisory finding must carry a reference: %+v", f)
		}
	}
}

func TestDependencyAnalyzer_NPM_FixedVersionClean(t *testing.T) {
	analyze := DependencyAnalyzer("deps", defaultAdvisories)
	manifest := []byte(`{"dependencies": {"lodash": "4.17.21"}}`)
	findings, err := analyze("package.json", manifest)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("patched version must not match, got %+v", findings)
	}
}

func TestDependencyAnalyzer_NPM_BadJSON(t *testing.T) {
	analyze := DependencyAnalyzer("deps", defaultAdvisories)
	if _, err := analyze("package.json", []byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDependencyAnalyzer_Requirements(t *testing.T) {
	analyze := DependencyAnalyzer("deps", defaultAdvisories)
	reqs := []byte("# pinned\npyyaml==5.3.1\nrequests==2.31.0\nflask>=2.0\n")
	findings, err := analyze("requirements.txt", reqs)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected only the pyyaml hit, got %+v", findings)
	}
	if findings[0].Severity != types.SevCritical {
		t.Fatalf("severity = %s", findings[0].Severity)
	}
}

func TestDependencyAnalyzer_GoMod(t *testing.T) {
	analyze := DependencyAnalyzer("deps", defaultAdvisories)
	mod := []byte(`module example.com/app

go 1.22

require (
	gopkg.in/yaml.v2 v2.2.2
	golang.org/x/text v0.14.0
)
`)
	findings, err := analyze("go.mod", mod)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected only the yaml.v2 hit, got %+v", findings)
	}
	if findings[0].CWE != "CWE-1395" {
		t.Fatalf("cwe = %s", findings[0].CWE)
	}
}

func TestParseVersion_Tolerant(t *testing.T) {
	for _, raw := range []string{"1.2.5", "^1.2.5", "~1.2.5", "=1.2.5", "v1.2.5", "1.2.5 || 2.x"} {
		v, err := parseVersion(raw)
		if err != nil {
			t.Errorf("parseVersion(%q): %v", raw, err)
			continue
		}
		if v.String() != "1.2.5" {
			t.Errorf("parseVersion(%q) = %s", raw, v)
		}
	}
	if _, err := parseVersion("latest"); err == nil {
		t.Error("expected error for non-semver version")
	}
}
