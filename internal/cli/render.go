package cli

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Render resolves the sources and prints the merged, interpolated tree
// as YAML.
func Render(out io.Writer, opts ResolveOptions) error {
	tree, err := ResolveTree(opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(map[string]any(tree))
	if err != nil {
		return fmt.Errorf("rendering tree: %w", err)
	}
	_, err = out.Write(data)
	return err
}
