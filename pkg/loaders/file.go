package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcann/config-wrangler/pkg/config"
)

// DefaultMaxSearchLevels bounds the upward directory walk when a file
// is searched by name rather than opened by path.
const DefaultMaxSearchLevels = 20

// configSectionName is the reserved section holding loader directives
// such as parent file references.
const configSectionName = "config"

// parseFunc turns one file's bytes into a raw tree.
type parseFunc func(data []byte) (config.RawTree, error)

// fileSource is the shared half of every file-backed loader: it finds
// the file (every copy up the directory tree when searching by name),
// parses it, and follows `[Config] parent = other-file` chains,
// merging each parent underneath its child.
type fileSource struct {
	// path opens an exact file when set.
	path string
	// fileName is searched for in startDir and then each ancestor
	// directory when path is empty.
	fileName string
	startDir string
	parse    parseFunc
}

func (f *fileSource) read() (config.RawTree, error) {
	paths, err := f.locate()
	if err != nil {
		return nil, err
	}
	// Nearest file first; files found higher up merge in underneath.
	merged, err := f.readChain(paths[0], map[string]bool{})
	if err != nil {
		return nil, err
	}
	for _, path := range paths[1:] {
		tree, err := f.readChain(path, map[string]bool{})
		if err != nil {
			return nil, err
		}
		config.Merge(merged, tree)
	}
	return merged, nil
}

// readChain loads path and then any parent files it names, child
// values winning over parent values.
func (f *fileSource) readChain(path string, visited map[string]bool) (config.RawTree, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if visited[abs] {
		return nil, fmt.Errorf("config file inheritance loop at %s", path)
	}
	visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	tree, err := f.parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, parent := range parentFiles(tree) {
		parentPath := parent
		if !filepath.IsAbs(parentPath) {
			parentPath = filepath.Join(filepath.Dir(path), parent)
		}
		parentTree, err := f.readChain(parentPath, visited)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", path, err)
		}
		config.Merge(tree, parentTree)
	}
	return tree, nil
}

// parentFiles extracts parent file names from the [Config] section and
// removes the directive keys so they never reach the decoded config.
// Any key beginning with "parent" counts, so parent, parent2 and
// parent_common all chain, in sorted key order. A single key may hold
// a newline-delimited list of files.
func parentFiles(tree config.RawTree) []string {
	var section config.RawTree
	for key, value := range tree {
		if !strings.EqualFold(key, configSectionName) {
			continue
		}
		if sub, ok := value.(config.RawTree); ok {
			section = sub
		} else if sub, ok := value.(map[string]any); ok {
			section = config.RawTree(sub)
		}
		break
	}
	if section == nil {
		return nil
	}
	var keys []string
	for key := range section {
		if strings.HasPrefix(strings.ToLower(key), "parent") {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	var parents []string
	for _, key := range keys {
		if value, ok := section[key].(string); ok {
			for _, name := range strings.Split(value, "\n") {
				if name = strings.TrimSpace(name); name != "" {
					parents = append(parents, name)
				}
			}
		}
		delete(section, key)
	}
	return parents
}

// locate resolves the files to open, nearest first. With a bare file
// name the walk visits startDir and every ancestor, collecting each
// directory's copy of the file.
func (f *fileSource) locate() ([]string, error) {
	if f.path != "" {
		if _, err := os.Stat(f.path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", f.path, err)
		}
		return []string{f.path}, nil
	}
	dir := f.startDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	var found []string
	for level := 0; level < DefaultMaxSearchLevels; level++ {
		candidate := filepath.Join(dir, f.fileName)
		if _, err := os.Stat(candidate); err == nil {
			found = append(found, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("config file %s not found in %s or any parent directory", f.fileName, f.startDir)
	}
	return found, nil
}
