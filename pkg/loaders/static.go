package loaders

import "github.com/arcann/config-wrangler/pkg/config"

// Static serves a fixed in-memory tree. Useful for test fixtures and
// for programmatic defaults layered under file sources.
type Static struct {
	Tree config.RawTree
}

// NewStatic wraps tree as a loader.
func NewStatic(tree config.RawTree) *Static {
	return &Static{Tree: tree}
}

func (s *Static) ReadConfigData(*config.Section) (config.RawTree, error) {
	if s.Tree == nil {
		return config.RawTree{}, nil
	}
	return s.Tree, nil
}
