package codesweep

import (
	"fmt"

	"github.com/codesweep/codesweep/internal/scanner"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scanners",
		Short: "List registered scanners",
		Run: func(_ *cobra.Command, _ []string) {
			reg := scanner.NewDefaultRegistry()
			for _, name := range reg.Names() {
				scn, _ := reg.Get(name)
				fmt.Printf("%-10s %s\n", name, scn.Version())
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
