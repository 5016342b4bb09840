// Package core provides a small, stable facade over codesweep's internal
// orchestrator for external integrations. It deliberately re-exports a narrow
// API surface to allow CI systems and third-party tools to depend on a stable
// import path without exposing internal implementation packages.
//
// Example:
//
//	cfg := core.Config{TargetPath: ".", Parallel: true}
//	res, err := core.Scan(context.Background(), cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, res.Consolidated.Findings)
package core
