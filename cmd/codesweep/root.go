package codesweep

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagFailOn  string
	flagNoColor bool
	flagVerbose bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the codesweep CLI.
var rootCmd = &cobra.Command{
	Use:           "codesweep",
	Short:         "Static security assessment for your codebase",
	Long:          "Codesweep runs pattern-based security scanners across client, server, IaC, data-flow, deployment and dependency surfaces and reports consolidated, risk-scored findings.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the codesweep CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "high", "exit non-zero on findings at or above low|medium|high|critical")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}
