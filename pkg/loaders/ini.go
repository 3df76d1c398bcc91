package loaders

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/arcann/config-wrangler/pkg/config"
)

// INIFile loads an INI document as a raw tree. Sections become nested
// trees and keys in the unnamed default section land at the root.
// Dotted section headers like [databases.main] nest accordingly.
type INIFile struct {
	fileSource
}

// NewINIFile opens an exact path.
func NewINIFile(path string) *INIFile {
	l := &INIFile{fileSource{path: path}}
	l.parse = parseINI
	return l
}

// FindINIFile searches for fileName in startDir and its ancestors.
func FindINIFile(fileName, startDir string) *INIFile {
	l := &INIFile{fileSource{fileName: fileName, startDir: startDir}}
	l.parse = parseINI
	return l
}

func (l *INIFile) ReadConfigData(*config.Section) (config.RawTree, error) {
	return l.read()
}

func parseINI(data []byte) (config.RawTree, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		// Values may hold `${...}` macros and indented multi-line lists.
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("invalid INI: %w", err)
	}

	tree := config.RawTree{}
	for _, section := range file.Sections() {
		target := tree
		if section.Name() != ini.DefaultSection {
			target = treeAtPath(tree, splitSectionName(section.Name()))
		}
		for _, key := range section.Keys() {
			target[key.Name()] = key.Value()
		}
	}
	return tree, nil
}

// splitSectionName breaks a dotted header into nesting levels.
func splitSectionName(name string) []string {
	var parts []string
	for _, part := range strings.Split(name, ".") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// treeAtPath walks (creating as needed) to the subtree at parts.
func treeAtPath(tree config.RawTree, parts []string) config.RawTree {
	current := tree
	for _, part := range parts {
		if sub, ok := current[part].(config.RawTree); ok {
			current = sub
			continue
		}
		sub := config.RawTree{}
		current[part] = sub
		current = sub
	}
	return current
}
