package scanner

import (
	"context"
	"time"

	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/types"
)

// Config is the value object every scanner is configured with.
type Config struct {
	Root         string
	IncludeGlobs string // comma-separated doublestar globs
	ExcludeGlobs string
	MaxFileBytes int64
	Timeout      time.Duration
	Verbose      bool
	// Incremental skips files whose content hash matches the persisted
	// cache from a previous run. Off by default so assessment runs are
	// reproducible.
	Incremental bool
	CustomRules []rules.Rule
}

// Validation reports the outcome of a non-mutating access check. Ordinary
// permission or missing-path conditions land in Errors, never in a panic or
// returned error.
type Validation struct {
	OK                bool
	AccessibleFiles   int
	InaccessibleFiles int
	Errors            []string
}

// Progress is one progress event emitted during a scan.
type Progress struct {
	CurrentFile    string
	FilesProcessed int
	FilesTotal     int
	Percent        float64
	ETA            time.Duration
	FindingsSoFar  int
}

// PerfSnapshot captures the most recent run's performance for health checks.
type PerfSnapshot struct {
	LastScanDuration time.Duration
	LastFilesScanned int
}

// HealthStatus describes whether a scanner can run right now.
type HealthStatus struct {
	Healthy      bool
	Dependencies map[string]bool
	Performance  PerfSnapshot
	CheckedAt    time.Time
}

// Scanner is the contract every domain scanner implements. Implementations
// are single-threaded per invocation; Scan must be re-invocable after Cleanup
// and must not retain findings from a previous run.
type Scanner interface {
	Name() string
	Version() string
	Configure(cfg Config) error
	ValidateAccess() Validation
	Scan(ctx context.Context, progress func(Progress)) (*types.ScanResult, error)
	Health() HealthStatus
	Cleanup() error
}
