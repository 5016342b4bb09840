package core_test

import (
	"context"
	"fmt"
	"os"

	"github.com/codesweep/codesweep/pkg/core"
)

// ExampleScan demonstrates how to assess a directory with every registered
// scanner.
func ExampleScan() {
	// 1. Configure the run
	cfg := core.Config{
		TargetPath:    ".",
		Parallel:      true,
		MaxConcurrent: 3,
	}

	// 2. Run the scan
	res, err := core.Scan(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return
	}

	// 3. Process findings
	if len(res.Consolidated.Findings) == 0 {
		fmt.Println("No findings.")
	} else {
		fmt.Printf("Found %d issues (overall risk: %s).\n",
			len(res.Consolidated.Findings), res.Summary.OverallRisk)
		// Helper to write JSON output to stdout
		_ = core.MarshalFindings(os.Stdout, res.Consolidated.Findings)
	}
}
