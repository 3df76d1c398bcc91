// Package loaders provides config.Loader implementations for the
// common raw-data sources: YAML, TOML and INI files (with upward
// directory search and parent-file chaining), process environment
// variables shaped by the target schema, dotenv files, and literal
// in-memory trees.
package loaders
