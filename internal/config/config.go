package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/types"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for codesweep. Pointer
// fields distinguish "unset" from zero so CLI > local > global precedence
// works per field.
type FileConfig struct {
	Project         *string  `yaml:"project"`
	Scanners        []string `yaml:"scanners"`
	Include         *string  `yaml:"include"`
	Exclude         *string  `yaml:"exclude"`
	MaxFileBytes    *int64   `yaml:"max_file_bytes"`
	TimeoutMillis   *int64   `yaml:"timeout_ms"`
	Parallel        *bool    `yaml:"parallel"`
	MaxConcurrent   *int     `yaml:"max_concurrent"`
	HealthCheck     *bool    `yaml:"health_check"`
	MaxMemoryBytes  *uint64  `yaml:"max_memory_bytes"`
	MaxRetries      *int     `yaml:"max_retries"`
	BreakerFailures *int     `yaml:"breaker_failures"`
	BreakerRecovery *string  `yaml:"breaker_recovery"` // duration string
	Verbose         *bool    `yaml:"verbose"`
	OutputDir       *string  `yaml:"output_dir"`

	CustomRules []CustomRule `yaml:"custom_rules"`
}

// CustomRule is the YAML shape of a user-supplied detection rule.
type CustomRule struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Pattern     string `yaml:"pattern"`
	Severity    string `yaml:"severity"`
	Category    string `yaml:"category"`
}

// Rules converts the custom rule entries, rejecting severities or categories
// outside the closed sets.
func (fc FileConfig) Rules() ([]rules.Rule, error) {
	var out []rules.Rule
	for _, cr := range fc.CustomRules {
		sev := types.Severity(cr.Severity)
		cat := types.Category(cr.Category)
		if !sev.Valid() {
			return nil, fmt.Errorf("custom rule %s: invalid severity %q", cr.ID, cr.Severity)
		}
		if !cat.Valid() {
			return nil, fmt.Errorf("custom rule %s: invalid category %q", cr.ID, cr.Category)
		}
		out = append(out, rules.Rule{
			ID:          cr.ID,
			Name:        cr.Name,
			Description: cr.Description,
			Pattern:     cr.Pattern,
			Severity:    sev,
			Category:    cat,
		})
	}
	return out, nil
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .codesweep.yml/.yaml and codesweep.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".codesweep.yml", ".codesweep.yaml", "codesweep.yml", "codesweep.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "codesweep", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}
