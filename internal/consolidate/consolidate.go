// Package consolidate deduplicates findings across scanners. Survivorship is
// content-addressed: a similarity signature over location and category, never
// arrival order, decides which findings merge.
package consolidate

import (
	"fmt"
	"sort"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/codesweep/codesweep/internal/types"
	"github.com/google/uuid"
)

// Quality-score bonuses. The intent is that richer findings win ties; the
// exact constants only need to be stable, not calibrated.
const (
	bonusRemediation = 0.10
	bonusSnippet     = 0.05
	bonusReferences  = 0.05
	bonusCWE         = 0.05
)

// Signature returns the similarity key for a finding: same path, line, and
// category collapse to the same group regardless of which scanner reported it.
func Signature(f types.Finding) uint64 {
	key := fmt.Sprintf("%s|%d|%s", strings.ToLower(f.Location.FilePath), f.Location.Line, f.Category)
	return xxhash.Sum64String(key)
}

// QualityScore ranks a finding for representative selection: base confidence
// plus fixed bonuses for remediation detail, code snippet, references, and a
// weakness identifier, capped at 1.0.
func QualityScore(f types.Finding) float64 {
	score := f.Confidence
	if len(f.Remediation.Steps) > 1 {
		score += bonusRemediation
	}
	if f.Location.Snippet != "" {
		score += bonusSnippet
	}
	if len(f.References) > 0 {
		score += bonusReferences
	}
	if f.CWE != "" {
		score += bonusCWE
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Consolidate merges per-scanner results into one deduplicated view with
// run-level quality metrics. It is idempotent: consolidating an already
// consolidated set changes nothing.
func Consolidate(results []types.ScanResult) types.ConsolidatedResult {
	var raw []types.Finding
	totalFiles := 0
	versions := map[string]string{}
	for _, r := range results {
		raw = append(raw, r.Findings...)
		totalFiles += r.FilesScanned
		versions[r.Scanner] = r.Version
	}

	merged := Dedupe(raw)

	var qualitySum float64
	for _, f := range merged {
		qualitySum += QualityScore(f)
	}
	quality := &types.QualityMetrics{
		RawFindings:  len(raw),
		Deduplicated: len(merged),
	}
	if len(raw) > 0 {
		quality.DedupRatio = float64(len(raw)-len(merged)) / float64(len(raw))
	}
	if len(merged) > 0 {
		quality.AverageQuality = qualitySum / float64(len(merged))
	}

	return types.ConsolidatedResult{
		Findings:        merged,
		TotalFiles:      totalFiles,
		ScannerVersions: versions,
		Quality:         quality,
	}
}

// Dedupe groups findings by signature and merges each multi-member group into
// one synthesized finding. Singleton groups pass through unchanged, which
// makes the operation idempotent. Output order is deterministic: severity
// rank descending, then path, then line.
func Dedupe(findings []types.Finding) []types.Finding {
	groups := map[uint64][]types.Finding{}
	order := []uint64{}
	for _, f := range findings {
		sig := Signature(f)
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], f)
	}

	out := make([]types.Finding, 0, len(order))
	for _, sig := range order {
		group := groups[sig]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, merge(group))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Location.FilePath != b.Location.FilePath {
			return a.Location.FilePath < b.Location.FilePath
		}
		return a.Location.Line < b.Location.Line
	})
	return out
}

// merge synthesizes one finding from a duplicate group: the highest-quality
// member is the representative, evidence and references are unioned, and
// confidence is the group maximum.
func merge(group []types.Finding) types.Finding {
	best := group[0]
	bestScore := QualityScore(best)
	for _, f := range group[1:] {
		score := QualityScore(f)
		// strictly greater keeps the earliest member on exact ties
		if score > bestScore || (score == bestScore && f.Severity.Rank() > best.Severity.Rank()) {
			best, bestScore = f, score
		}
	}

	rep := best
	rep.ID = uuid.NewString()

	var evidence, references, scanners []string
	maxConf := 0.0
	for _, f := range group {
		evidence = appendUnique(evidence, f.Evidence...)
		references = appendUnique(references, f.References...)
		scanners = appendUnique(scanners, f.Scanner)
		if f.Confidence > maxConf {
			maxConf = f.Confidence
		}
	}
	sort.Strings(scanners)

	rep.Evidence = evidence
	rep.References = references
	rep.Confidence = maxConf
	rep.Scanner = strings.Join(scanners, "+")
	return rep
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
