package report

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/codesweep/codesweep/internal/types"
)

// Baseline holds accepted finding keys. Findings matching a baseline entry
// are suppressed on subsequent runs.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	_ = json.Unmarshal(f, &b)
	return b, nil
}

func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Items[key(f)] = true
	}
	buf, _ := json.MarshalIndent(b, "", "  ")
	return os.WriteFile(path, buf, 0644)
}

func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if !base.Items[key(f)] {
			out = append(out, f)
		}
	}
	return out
}

func key(f types.Finding) string {
	return strings.ToLower(f.Location.FilePath) + "|" + strconv.Itoa(f.Location.Line) + "|" + string(f.Category)
}

// ShouldFail reports whether the run crosses the fail-on severity threshold.
func ShouldFail(findings []types.Finding, failOn string) bool {
	th := types.Severity(failOn)
	if !th.Valid() {
		th = types.SevHigh
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th.Rank() {
			return true
		}
	}
	return false
}
