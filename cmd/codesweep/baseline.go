package codesweep

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codesweep/codesweep/internal/orchestrator"
	"github.com/codesweep/codesweep/internal/report"
	"github.com/codesweep/codesweep/internal/scanner"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Accept current findings as the baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(flagPath)
			registry := scanner.NewDefaultRegistry()
			orch := orchestrator.New(registry, orchestrator.Config{
				TargetPath:      abs,
				EnabledScanners: registry.Names(),
				Parallel:        true,
			})
			res, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(baselinePath(abs), res.Consolidated.Findings); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Baseline updated with %d findings.\n", len(res.Consolidated.Findings))
			return nil
		},
	}

	update.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
