package codesweep

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion <shell>",
		Short:     "Emit a completion script for the given shell",
		Long:      "Writes a completion script to stdout. Pipe it into the location your shell sources completions from, e.g.\n\n  codesweep completion zsh > \"${fpath[1]}/_codesweep\"",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(_ *cobra.Command, args []string) error {
			gen := map[string]func() error{
				"bash":       func() error { return rootCmd.GenBashCompletion(os.Stdout) },
				"zsh":        func() error { return rootCmd.GenZshCompletion(os.Stdout) },
				"fish":       func() error { return rootCmd.GenFishCompletion(os.Stdout, true) },
				"powershell": func() error { return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout) },
			}
			g, ok := gen[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q (want bash, zsh, fish, or powershell)", args[0])
			}
			return g()
		},
	}
	rootCmd.AddCommand(cmd)
}
