package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/arcann/config-wrangler/pkg/config"
	"github.com/arcann/config-wrangler/pkg/loaders"
)

// ResolveOptions holds the shared inputs of the render and validate
// commands.
type ResolveOptions struct {
	// Files are merged first-listed-wins.
	Files []string
	// EnvPrefix mixes in environment variables under the prefix, keys
	// nesting on "__". Empty disables the environment source.
	EnvPrefix string
	// Sets are key.path=value overrides that beat every other source.
	Sets []string
	// SkipInterpolation leaves `${...}` macros untouched.
	SkipInterpolation bool
}

// ResolveTree merges the configured sources and interpolates the
// result, mirroring what config.Load does before schema decoding.
// Since the CLI has no target struct, environment variables are mapped
// by name shape alone.
func ResolveTree(opts ResolveOptions) (config.RawTree, error) {
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no config files given")
	}

	merged, err := overridesTree(opts.Sets)
	if err != nil {
		return nil, err
	}
	if opts.EnvPrefix != "" {
		config.Merge(merged, envTree(opts.EnvPrefix))
	}
	for _, file := range opts.Files {
		loader, err := loaders.ForFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		tree, err := loader.ReadConfigData(nil)
		if err != nil {
			return nil, err
		}
		config.Merge(merged, tree)
	}

	if !opts.SkipInterpolation {
		if err := config.Interpolate(merged, merged); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// overridesTree parses --set arguments into a nested tree.
func overridesTree(sets []string) (config.RawTree, error) {
	tree := config.RawTree{}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key.path=value", set)
		}
		setPath(tree, strings.Split(key, "."), value)
	}
	return tree, nil
}

// envTree collects PREFIX_* variables into a tree, "__" nesting keys.
func envTree(prefix string) config.RawTree {
	tree := config.RawTree{}
	marker := strings.ToUpper(prefix) + "_"
	for _, entry := range os.Environ() {
		key, value, _ := strings.Cut(entry, "=")
		if !strings.HasPrefix(strings.ToUpper(key), marker) {
			continue
		}
		parts := strings.Split(key[len(marker):], "__")
		names := make([]string, 0, len(parts))
		for _, part := range parts {
			if part != "" {
				names = append(names, strings.ToLower(part))
			}
		}
		if len(names) > 0 {
			setPath(tree, names, value)
		}
	}
	return tree
}

func setPath(tree config.RawTree, parts []string, value string) {
	current := tree
	for _, part := range parts[:len(parts)-1] {
		sub, ok := current[part].(config.RawTree)
		if !ok {
			sub = config.RawTree{}
			current[part] = sub
		}
		current = sub
	}
	current[parts[len(parts)-1]] = value
}
