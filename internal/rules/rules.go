package rules

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/codesweep/codesweep/internal/types"
	"github.com/google/uuid"
)

// RedactedPlaceholder replaces matched text for secret-like categories so
// credentials never appear verbatim in output.
const RedactedPlaceholder = "[REDACTED]"

// Remediation is the per-rule template a Finding's plan is synthesized from.
type Remediation struct {
	Summary      string
	Steps        []string
	Effort       string
	Priority     int
	Timeline     string
	Verification []string
}

// Rule is one detection pattern owned by a domain scanner.
type Rule struct {
	ID          string
	Name        string
	Description string
	Pattern     string
	Severity    types.Severity
	Category    types.Category
	CWE         string
	Remediation Remediation
	References  []string
}

// Compiled pairs a rule with its compiled pattern.
type Compiled struct {
	Rule
	re *regexp.Regexp
}

// Compile compiles an ordered rule set. A single bad pattern fails the whole
// set; rule sets are static and validated by tests, so this is a config error.
func Compile(rules []Rule) ([]Compiled, error) {
	out := make([]Compiled, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: compile pattern: %w", r.ID, err)
		}
		out = append(out, Compiled{Rule: r, re: re})
	}
	return out, nil
}

// Check is a structural presence/absence probe run alongside pattern rules.
// It returns zero-match findings in the same Finding shape.
type Check func(path string, data []byte) []types.Finding

// MatchFile evaluates every compiled rule against the file content and returns
// one Finding per match. Character offsets convert to 1-based line numbers by
// counting newlines up to the offset. Lines carrying a codesweep:ignore
// directive are suppressed.
func MatchFile(scanner, path string, data []byte, rules []Compiled) []types.Finding {
	var out []types.Finding
	for _, cr := range rules {
		for _, loc := range cr.re.FindAllIndex(data, -1) {
			line, col := lineAndColumn(data, loc[0])
			lineText := lineAt(data, loc[0])
			if strings.Contains(lineText, "codesweep:ignore") {
				continue
			}
			matched := string(data[loc[0]:loc[1]])
			out = append(out, NewFinding(scanner, cr.Rule, types.Location{
				FilePath: path,
				Line:     line,
				Column:   col,
				Snippet:  strings.TrimSpace(lineText),
			}, matched))
		}
	}
	return out
}

// NewFinding builds a fully populated Finding from a rule hit. Evidence for
// secret-like categories is redacted to a fixed placeholder.
func NewFinding(scanner string, r Rule, loc types.Location, matched string) types.Finding {
	evidence := matched
	if redactCategory(r.Category) {
		evidence = RedactedPlaceholder
		loc.Snippet = RedactedPlaceholder
	}
	return types.Finding{
		ID:          uuid.NewString(),
		Title:       r.Name,
		Description: r.Description,
		Severity:    r.Severity,
		Category:    r.Category,
		CWE:         r.CWE,
		Location:    loc,
		Evidence:    []string{evidence},
		Remediation: types.RemediationPlan{
			Summary:      r.Remediation.Summary,
			Steps:        remediationSteps(r),
			Effort:       r.Remediation.Effort,
			Priority:     priorityFor(r.Severity, r.Remediation.Priority),
			Timeline:     timelineFor(r.Severity, r.Remediation.Timeline),
			Verification: r.Remediation.Verification,
		},
		References:   append([]string(nil), r.References...),
		Confidence:   confidenceFor(r.Severity),
		DiscoveredAt: time.Now().UTC(),
		Scanner:      scanner,
	}
}

func redactCategory(c types.Category) bool {
	return c == types.CatHardcodedSecret || c == types.CatInfoDisclosure
}

// remediationSteps guarantees the plan invariant: at least one step.
func remediationSteps(r Rule) []string {
	if len(r.Remediation.Steps) > 0 {
		return append([]string(nil), r.Remediation.Steps...)
	}
	return []string{fmt.Sprintf("Review and remediate: %s", r.Name)}
}

func priorityFor(sev types.Severity, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	return 6 - sev.Rank()
}

func timelineFor(sev types.Severity, explicit string) string {
	if explicit != "" {
		return explicit
	}
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

func confidenceFor(sev types.Severity) float64 {
	switch sev {
	case types.SevCritical:
		return 0.9
	case types.SevHigh:
		return 0.85
	case types.SevMedium:
		return 0.75
	default:
		return 0.6
	}
}

// lineAndColumn converts a byte offset to a 1-based line and column.
func lineAndColumn(data []byte, off int) (int, int) {
	line := 1 + bytes.Count(data[:off], []byte{'\n'})
	col := off + 1
	if i := bytes.LastIndexByte(data[:off], '\n'); i >= 0 {
		col = off - i
	}
	return line, col
}

// lineAt returns the full text of the line containing the offset.
func lineAt(data []byte, off int) string {
	start := 0
	if i := bytes.LastIndexByte(data[:off], '\n'); i >= 0 {
		start = i + 1
	}
	end := len(data)
	if i := bytes.IndexByte(data[off:], '\n'); i >= 0 {
		end = off + i
	}
	return string(data[start:end])
}
