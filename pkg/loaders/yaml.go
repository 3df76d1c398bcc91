package loaders

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arcann/config-wrangler/pkg/config"
)

// YAMLFile loads one YAML document as a raw tree.
type YAMLFile struct {
	fileSource
}

// NewYAMLFile opens an exact path.
func NewYAMLFile(path string) *YAMLFile {
	l := &YAMLFile{fileSource{path: path}}
	l.parse = parseYAML
	return l
}

// FindYAMLFile searches for fileName in startDir and its ancestors.
func FindYAMLFile(fileName, startDir string) *YAMLFile {
	l := &YAMLFile{fileSource{fileName: fileName, startDir: startDir}}
	l.parse = parseYAML
	return l
}

func (l *YAMLFile) ReadConfigData(*config.Section) (config.RawTree, error) {
	return l.read()
}

func parseYAML(data []byte) (config.RawTree, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return normalizeTree(out), nil
}

// normalizeTree rewrites decoder output so every nested mapping is a
// RawTree. yaml.v3 and json produce map[string]any, which the config
// package accepts, but a uniform shape keeps trees comparable in tests.
func normalizeTree(m map[string]any) config.RawTree {
	out := make(config.RawTree, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeTree(val)
	case []any:
		for i, entry := range val {
			val[i] = normalizeValue(entry)
		}
		return val
	default:
		return v
	}
}
