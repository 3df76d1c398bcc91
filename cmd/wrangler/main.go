package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables (set by the build system)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	// Global flags (available to all commands)
	verbose bool

	// Command-specific flags
	envPrefix         string
	setValues         []string
	skipInterpolation bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "wrangler",
	Short: "Resolve layered configuration files",
	Long: `Wrangler merges INI, TOML and YAML configuration files, expands
${...} macro references across them, and prints or checks the result.

Files are listed most specific first: values from earlier files win
over later ones, and --set overrides win over everything.`,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	for _, cmd := range []*cobra.Command{renderCmd, validateCmd} {
		cmd.Flags().StringVar(&envPrefix, "env-prefix", "", "Mix in PREFIX_* environment variables (keys nest on __)")
		cmd.Flags().StringArrayVar(&setValues, "set", nil, "Override a value, e.g. --set database.host=db1 (repeatable)")
		cmd.Flags().BoolVar(&skipInterpolation, "no-interpolation", false, "Leave ${...} macros unexpanded")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
