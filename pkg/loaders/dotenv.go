package loaders

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arcann/config-wrangler/pkg/config"
)

// DotEnv loads a dotenv-format file. Keys nest on "__", so
// DATABASE__HOST=db1 produces {database: {host: db1}}; keys are
// lowercased to match schema names.
type DotEnv struct {
	fileSource
}

// NewDotEnvFile opens an exact path.
func NewDotEnvFile(path string) *DotEnv {
	l := &DotEnv{fileSource{path: path}}
	l.parse = parseDotEnv
	return l
}

// FindDotEnvFile searches for fileName (usually ".env") in startDir
// and its ancestors.
func FindDotEnvFile(fileName, startDir string) *DotEnv {
	l := &DotEnv{fileSource{fileName: fileName, startDir: startDir}}
	l.parse = parseDotEnv
	return l
}

func (l *DotEnv) ReadConfigData(*config.Section) (config.RawTree, error) {
	return l.read()
}

func parseDotEnv(data []byte) (config.RawTree, error) {
	pairs, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid dotenv data: %w", err)
	}
	tree := config.RawTree{}
	for key, value := range pairs {
		parts := splitEnvKey(key)
		target := treeAtPath(tree, parts[:len(parts)-1])
		target[parts[len(parts)-1]] = value
	}
	return tree, nil
}

func splitEnvKey(key string) []string {
	raw := strings.Split(key, "__")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if part != "" {
			parts = append(parts, strings.ToLower(part))
		}
	}
	if len(parts) == 0 {
		parts = []string{strings.ToLower(key)}
	}
	return parts
}
