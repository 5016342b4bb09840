package core

import (
	"context"

	"github.com/codesweep/codesweep/internal/orchestrator"
	"github.com/codesweep/codesweep/internal/scanner"
	"github.com/codesweep/codesweep/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Config = orchestrator.Config
type ScannerConfig = scanner.Config
type Finding = types.Finding
type Result = types.OrchestrationResult

// Scan is the stable entrypoint for other programs. It runs every registered
// scanner (or cfg.EnabledScanners when set) and returns the consolidated
// result.
func Scan(ctx context.Context, cfg Config) (*Result, error) {
	registry := scanner.NewDefaultRegistry()
	if len(cfg.EnabledScanners) == 0 {
		cfg.EnabledScanners = registry.Names()
	}
	return orchestrator.New(registry, cfg).RunWithRetry(ctx)
}

// ScannerNames returns the names of the registered scanners.
// This is exposed for convenience to avoid importing internals directly.
func ScannerNames() []string { return scanner.NewDefaultRegistry().Names() }
