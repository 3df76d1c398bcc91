package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcann/config-wrangler/internal/cli"
)

var renderCmd = &cobra.Command{
	Use:   "render <files...>",
	Short: "Print the merged, interpolated configuration as YAML",
	Long: `Render merges the given configuration files (INI, TOML or YAML,
chosen by extension), expands ${...} macros, and prints the resolved
tree as YAML.

Examples:
  wrangler render app.ini defaults.ini
  wrangler render --env-prefix MYAPP --set database.host=db1 app.yaml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			fmt.Fprintf(os.Stderr, "Merging %d files\n", len(args))
		}
		err := cli.Render(os.Stdout, cli.ResolveOptions{
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
