package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/codesweep/codesweep/internal/cache"
	"github.com/codesweep/codesweep/internal/compliance"
	"github.com/codesweep/codesweep/internal/fsaccess"
	"github.com/codesweep/codesweep/internal/risk"
	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotConfigured is returned by Scan and ValidateAccess before Configure.
var ErrNotConfigured = errors.New("scanner not configured")

const cleanCacheSize = 4096

// Analyzer is an optional per-file hook for scanners that do more than
// pattern matching (manifest parsing, structured checks). A returned error is
// recorded as a parse ScanError for that file only.
type Analyzer func(path string, data []byte) ([]types.Finding, error)

// RuleScanner is the shared implementation behind every domain scanner: walk
// the accessible file set once, evaluate the rule set per file, run structural
// checks, then enrich the result with risk and compliance data.
type RuleScanner struct {
	name     string
	version  string
	ruleSet  []rules.Rule
	checks   []rules.Check
	analyze  Analyzer
	fileOK   func(path string) bool

	cfg        Config
	configured bool
	compiled   []rules.Compiled
	access     *fsaccess.Accessor
	log        *slog.Logger

	// cleanCache remembers content hashes that produced zero matches so
	// repeat scans of unchanged files skip rule evaluation. Findings are
	// never cached; identifiers and timestamps are fresh per run.
	cleanCache *lru.Cache[uint64, struct{}]

	// perfMu guards lastPerf: an abandoned scan can still be finishing
	// its last file when the orchestrator re-enters Scan on a retry.
	perfMu   sync.Mutex
	lastPerf PerfSnapshot
}

// Option customizes a RuleScanner at construction.
type Option func(*RuleScanner)

// WithChecks adds structural presence/absence probes.
func WithChecks(checks ...rules.Check) Option {
	return func(s *RuleScanner) { s.checks = append(s.checks, checks...) }
}

// WithAnalyzer sets a per-file analysis hook.
func WithAnalyzer(a Analyzer) Option {
	return func(s *RuleScanner) { s.analyze = a }
}

// WithFileFilter restricts which listed files the scanner reads.
func WithFileFilter(ok func(path string) bool) Option {
	return func(s *RuleScanner) { s.fileOK = ok }
}

// NewRuleScanner builds a domain scanner around an ordered rule set.
func NewRuleScanner(name, version string, ruleSet []rules.Rule, opts ...Option) *RuleScanner {
	s := &RuleScanner{
		name:    name,
		version: version,
		ruleSet: ruleSet,
		log:     slog.Default().With("scanner", name),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RuleScanner) Name() string    { return s.name }
func (s *RuleScanner) Version() string { return s.version }

// Configure validates the config, compiles the rule set (built-in plus
// custom), and prepares the file accessor.
func (s *RuleScanner) Configure(cfg Config) error {
	if cfg.Root == "" {
		return fmt.Errorf("configure %s: target root is required", s.name)
	}
	all := append(append([]rules.Rule(nil), s.ruleSet...), cfg.CustomRules...)
	for _, r := range all {
		if !r.Severity.Valid() {
			return fmt.Errorf("configure %s: rule %s: invalid severity %q", s.name, r.ID, r.Severity)
		}
		if !r.Category.Valid() {
			return fmt.Errorf("configure %s: rule %s: invalid category %q", s.name, r.ID, r.Category)
		}
	}
	compiled, err := rules.Compile(all)
	if err != nil {
		return fmt.Errorf("configure %s: %w", s.name, err)
	}
	cache, err := lru.New[uint64, struct{}](cleanCacheSize)
	if err != nil {
		return fmt.Errorf("configure %s: %w", s.name, err)
	}
	s.cfg = cfg
	s.compiled = compiled
	s.cleanCache = cache
	s.access = fsaccess.New(cfg.Root,
		fsaccess.ParseGlobs(cfg.IncludeGlobs),
		fsaccess.ParseGlobs(cfg.ExcludeGlobs),
		cfg.MaxFileBytes)
	s.configured = true
	return nil
}

// ValidateAccess lists the accessible file set without mutating scanner state.
func (s *RuleScanner) ValidateAccess() Validation {
	if !s.configured {
		return Validation{Errors: []string{ErrNotConfigured.Error()}}
	}
	files, inaccessible, err := s.access.ListAccessibleFiles()
	v := Validation{
		AccessibleFiles:   len(files),
		InaccessibleFiles: inaccessible,
	}
	if err != nil {
		v.Errors = append(v.Errors, err.Error())
		return v
	}
	v.OK = len(files) > 0
	if len(files) == 0 {
		v.Errors = append(v.Errors, fmt.Sprintf("no accessible files under %s", s.cfg.Root))
	}
	return v
}

// Scan walks the accessible files once, applies every rule and check, and
// returns a fully populated result. Per-file failures become ScanErrors; only
// a failed listing or cancellation aborts.
func (s *RuleScanner) Scan(ctx context.Context, progress func(Progress)) (*types.ScanResult, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}
	started := time.Now()
	res := &types.ScanResult{
		Scanner:   s.name,
		Version:   s.version,
		Target:    s.cfg.Root,
		StartedAt: started.UTC(),
		Findings:  []types.Finding{},
	}

	files, _, err := s.access.ListAccessibleFiles()
	if err != nil {
		return nil, fmt.Errorf("scan %s: list files: %w", s.name, err)
	}

	var db cache.DB
	if s.cfg.Incremental {
		db, _ = cache.Load(s.cfg.Root)
	}

	for i, fi := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.name, err)
		}
		if s.fileOK != nil && !s.fileOK(fi.Path) {
			continue
		}
		s.scanFile(fi.Path, db, res)
		res.FilesScanned++
		if progress != nil {
			progress(s.progressAt(fi.Path, i+1, len(files), started, len(res.Findings)))
		}
	}
	if s.cfg.Incremental {
		_ = cache.Save(s.cfg.Root, db)
	}

	res.Risks = risk.Assess(res.Findings, risk.DefaultAssessor)
	res.Compliance = compliance.Map(res.Findings)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	res.FinishedAt = time.Now().UTC()
	res.Metadata = types.ScanMetadata{
		Duration:     time.Since(started),
		PeakMemBytes: mem.HeapAlloc,
		RulesApplied: len(s.compiled),
		Confidence:   avgConfidence(res.Findings),
	}
	s.perfMu.Lock()
	s.lastPerf = PerfSnapshot{
		LastScanDuration: res.Metadata.Duration,
		LastFilesScanned: res.FilesScanned,
	}
	s.perfMu.Unlock()
	if s.cfg.Verbose {
		s.log.Info("scan complete",
			"files", res.FilesScanned,
			"findings", len(res.Findings),
			"errors", len(res.Errors),
			"duration", res.Metadata.Duration)
	}
	return res, nil
}

func (s *RuleScanner) scanFile(path string, db cache.DB, res *types.ScanResult) {
	data, err := s.access.ReadFile(path)
	if err != nil {
		res.Errors = append(res.Errors, types.ScanError{
			FilePath: path,
			Kind:     types.ScanErrUnreadable,
			Message:  err.Error(),
			At:       time.Now().UTC(),
		})
		return
	}
	if fsaccess.LooksBinary(data) {
		return
	}
	if s.cfg.Incremental && db.Unchanged(path, data) {
		return
	}

	sum := xxhash.Sum64(data)
	if _, clean := s.cleanCache.Get(sum); clean && s.analyze == nil && len(s.checks) == 0 {
		return
	}

	found := rules.MatchFile(s.name, path, data, s.compiled)
	for _, check := range s.checks {
		found = append(found, check(path, data)...)
	}
	if s.analyze != nil {
		extra, aerr := s.analyze(path, data)
		if aerr != nil {
			res.Errors = append(res.Errors, types.ScanError{
				FilePath: path,
				Kind:     types.ScanErrParse,
				Message:  aerr.Error(),
				At:       time.Now().UTC(),
			})
		}
		found = append(found, extra...)
	}

	if len(found) == 0 {
		s.cleanCache.Add(sum, struct{}{})
		// only clean files enter the incremental cache, so findings
		// keep reappearing on later runs until they are fixed
		if s.cfg.Incremental {
			db.Update(path, data)
		}
		return
	}
	res.Findings = append(res.Findings, found...)
}

func (s *RuleScanner) progressAt(current string, done, total int, started time.Time, findings int) Progress {
	p := Progress{
		CurrentFile:    current,
		FilesProcessed: done,
		FilesTotal:     total,
		FindingsSoFar:  findings,
	}
	if total > 0 {
		p.Percent = float64(done) / float64(total) * 100
	}
	if done > 0 && done < total {
		perFile := time.Since(started) / time.Duration(done)
		p.ETA = perFile * time.Duration(total-done)
	}
	return p
}

// Health reports readiness: configuration present and the target reachable.
func (s *RuleScanner) Health() HealthStatus {
	deps := map[string]bool{
		"configured": s.configured,
	}
	if s.configured {
		_, _, err := s.access.ListAccessibleFiles()
		deps["target-readable"] = err == nil
	}
	healthy := true
	for _, ok := range deps {
		healthy = healthy && ok
	}
	s.perfMu.Lock()
	perf := s.lastPerf
	s.perfMu.Unlock()
	return HealthStatus{
		Healthy:      healthy,
		Dependencies: deps,
		Performance:  perf,
		CheckedAt:    time.Now().UTC(),
	}
}

// Cleanup drops per-run caches. The scanner stays configured and Scan may be
// invoked again afterwards.
func (s *RuleScanner) Cleanup() error {
	if s.cleanCache != nil {
		s.cleanCache.Purge()
	}
	s.perfMu.Lock()
	s.lastPerf = PerfSnapshot{}
	s.perfMu.Unlock()
	return nil
}

func avgConfidence(findings []types.Finding) float64 {
	if len(findings) == 0 {
		return 1.0
	}
	var sum float64
	for _, f := range findings {
		sum += f.Confidence
	}
	return sum / float64(len(findings))
}
