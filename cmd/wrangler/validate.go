package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcann/config-wrangler/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <files...>",
	Short: "Check that configuration files merge and interpolate cleanly",
	Long: `Validate merges the given configuration files the same way render
does, and reports every unresolved ${...} reference instead of
printing the tree.

Examples:
  wrangler validate app.ini defaults.ini`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := cli.Validate(os.Stdout, cli.ResolveOptions{
			Files:             args,
			EnvPrefix:         envPrefix,
			Sets:              setValues,
			SkipInterpolation: skipInterpolation,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}
