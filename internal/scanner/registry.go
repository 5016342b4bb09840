package scanner

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/codesweep/codesweep/internal/rules"
)

// Registry maps scanner names to instances. It is populated once before a run
// starts and read-mostly afterwards.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: make(map[string]Scanner)}
}

// Register adds a scanner. Names must be unique.
func (r *Registry) Register(s Scanner) error {
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scanner name is required")
	}
	if _, dup := r.scanners[name]; dup {
		return fmt.Errorf("scanner %q already registered", name)
	}
	r.scanners[name] = s
	return nil
}

// Get retrieves a scanner by name.
func (r *Registry) Get(name string) (Scanner, bool) {
	s, ok := r.scanners[name]
	return s, ok
}

// Names returns all registered scanner names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for n := range r.scanners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered scanners.
func (r *Registry) Count() int { return len(r.scanners) }

// Version reported by the built-in scanner family.
const familyVersion = "1.0.0"

// Built-in scanner names.
const (
	NameClient   = "client"
	NameServer   = "server"
	NameIaC      = "iac"
	NameDataFlow = "dataflow"
	NameDeploy   = "deploy"
	NameDeps     = "deps"
)

// NewDefaultRegistry registers the full built-in scanner family.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Scanner{
		NewClientScanner(),
		NewServerScanner(),
		NewIaCScanner(),
		NewDataFlowScanner(),
		NewDeployScanner(),
		NewDependencyScanner(),
	} {
		// names are package constants; duplicates cannot occur here
		_ = r.Register(s)
	}
	return r
}

// NewClientScanner analyzes browser-facing code.
func NewClientScanner() *RuleScanner {
	return NewRuleScanner(NameClient, familyVersion, rules.ClientSide(),
		WithFileFilter(extFilter(".js", ".jsx", ".ts", ".tsx", ".html", ".htm", ".vue", ".svelte")))
}

// NewServerScanner analyzes server-side source.
func NewServerScanner() *RuleScanner {
	return NewRuleScanner(NameServer, familyVersion, rules.ServerSide(),
		WithFileFilter(extFilter(".py", ".rb", ".php", ".go", ".java", ".js", ".ts", ".cs", ".scala", ".kt")))
}

// NewIaCScanner analyzes infrastructure definitions, including the structural
// absence checks for TLS and logging configuration.
func NewIaCScanner() *RuleScanner {
	return NewRuleScanner(NameIaC, familyVersion, rules.Infrastructure(),
		WithFileFilter(iacFilter),
		WithChecks(rules.MissingTLSCheck(NameIaC), rules.MissingLoggingCheck(NameIaC)))
}

// NewDataFlowScanner analyzes inter-component data movement.
func NewDataFlowScanner() *RuleScanner {
	return NewRuleScanner(NameDataFlow, familyVersion, rules.DataFlow(),
		WithFileFilter(extFilter(".py", ".rb", ".php", ".go", ".java", ".js", ".jsx", ".ts", ".tsx", ".yaml", ".yml", ".json", ".env", ".conf", ".cfg", ".ini")))
}

// NewDeployScanner analyzes deployment and provisioning scripts.
func NewDeployScanner() *RuleScanner {
	return NewRuleScanner(NameDeploy, familyVersion, rules.Deployment(), WithFileFilter(deployFilter))
}

// NewDependencyScanner matches manifest versions against the advisory table.
// It carries no pattern rules; all detection happens in the analyzer.
func NewDependencyScanner() *RuleScanner {
	return NewRuleScanner(NameDeps, familyVersion, nil,
		WithFileFilter(IsManifest),
		WithAnalyzer(DependencyAnalyzer(NameDeps, defaultAdvisories)))
}

func extFilter(exts ...string) func(string) bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return func(p string) bool {
		return set[strings.ToLower(path.Ext(p))]
	}
}

func iacFilter(p string) bool {
	base := path.Base(p)
	if base == "Dockerfile" || strings.HasPrefix(base, "Dockerfile.") {
		return true
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".tf", ".tfvars", ".yaml", ".yml", ".json", ".template":
		return true
	}
	return false
}

func deployFilter(p string) bool {
	base := path.Base(p)
	switch base {
	case "Dockerfile", "Makefile", "Jenkinsfile":
		return true
	}
	lower := strings.ToLower(p)
	if strings.Contains(lower, ".github/workflows/") || strings.Contains(lower, ".gitlab-ci") {
		return true
	}
	switch path.Ext(lower) {
	case ".sh", ".bash", ".zsh", ".ps1", ".bat":
		return true
	}
	return false
}
