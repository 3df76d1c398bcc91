package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/arcann/config-wrangler/pkg/config"
)

// Validate resolves the sources and reports every interpolation
// problem found. A nil return means the sources merge cleanly.
func Validate(out io.Writer, opts ResolveOptions) error {
	_, err := ResolveTree(opts)
	if err == nil {
		fmt.Fprintln(out, "OK")
		return nil
	}

	var interpErr *config.InterpolationError
	if errors.As(err, &interpErr) {
		for _, problem := range interpErr.Problems {
			fmt.Fprintf(out, "problem: %s\n", problem)
		}
		return fmt.Errorf("%d problems found", len(interpErr.Problems))
	}
	return err
}
