package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arcann/config-wrangler/pkg/config"
)

// LoadYAMLFile resolves target from a single YAML file.
func LoadYAMLFile(target any, path string, opts ...config.Option) error {
	return config.Load(target, []config.Loader{NewYAMLFile(path)}, opts...)
}

// LoadTOMLFile resolves target from a single TOML file.
func LoadTOMLFile(target any, path string, opts ...config.Option) error {
	return config.Load(target, []config.Loader{NewTOMLFile(path)}, opts...)
}

// LoadINIFile resolves target from a single INI file.
func LoadINIFile(target any, path string, opts ...config.Option) error {
	return config.Load(target, []config.Loader{NewINIFile(path)}, opts...)
}

// ForFile picks a loader from the file extension.
func ForFile(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return NewYAMLFile(path), nil
	case ".toml":
		return NewTOMLFile(path), nil
	case ".ini", ".cfg", ".conf":
		return NewINIFile(path), nil
	case ".env":
		return NewDotEnvFile(path), nil
	default:
		return nil, fmt.Errorf("no loader for file type %q", filepath.Ext(path))
	}
}

// LoadFile resolves target from any supported file type, chosen by
// extension, with environment variables under envPrefix taking
// precedence when envPrefix is non-empty.
func LoadFile(target any, path, envPrefix string, opts ...config.Option) error {
	fileLoader, err := ForFile(path)
	if err != nil {
		return err
	}
	sources := []config.Loader{fileLoader}
	if envPrefix != "" {
		sources = append([]config.Loader{NewEnv(envPrefix)}, sources...)
	}
	return config.Load(target, sources, opts...)
}
