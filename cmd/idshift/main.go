package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"idshift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "idshift",
	Short: "Identifier migration engine",
	Long:  `idshift rewrites old identifier spellings across source modules, tests, and evaluation datasets, keeping every artifact in agreement on the new names.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
