package loaders

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/arcann/config-wrangler/pkg/config"
)

// TOMLFile loads a TOML document as a raw tree.
type TOMLFile struct {
	fileSource
}

// NewTOMLFile opens an exact path.
func NewTOMLFile(path string) *TOMLFile {
	l := &TOMLFile{fileSource{path: path}}
	l.parse = parseTOML
	return l
}

// FindTOMLFile searches for fileName in startDir and its ancestors.
func FindTOMLFile(fileName, startDir string) *TOMLFile {
	l := &TOMLFile{fileSource{fileName: fileName, startDir: startDir}}
	l.parse = parseTOML
	return l
}

func (l *TOMLFile) ReadConfigData(*config.Section) (config.RawTree, error) {
	return l.read()
}

func parseTOML(data []byte) (config.RawTree, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return normalizeTree(out), nil
}
