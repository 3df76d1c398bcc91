package config

import (
	"fmt"
	"sort"
	"strings"
)

// RawTree is the untyped nested configuration data produced by loaders,
// before any schema matching or type coercion. Values are either scalars
// (usually strings, though TOML/YAML loaders may produce native ints,
// floats and bools) or nested RawTree sections. Keys retain the casing
// used in the source; all lookups against a RawTree are case-insensitive
// with exact-case matches preferred.
type RawTree map[string]any

// lookup finds name in the tree, preferring an exact-case match over a
// case-insensitive one. It returns the actual key under which the value
// is stored. When several keys fold to the same name, the lexicographically
// smallest is chosen so that results are deterministic.
func (t RawTree) lookup(name string) (string, any, bool) {
	if v, ok := t[name]; ok {
		return name, v, true
	}
	var candidates []string
	for k := range t {
		if strings.EqualFold(k, name) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return "", nil, false
	}
	sort.Strings(candidates)
	return candidates[0], t[candidates[0]], true
}

// has reports whether name is present under case-insensitive matching.
func (t RawTree) has(name string) bool {
	_, _, ok := t.lookup(name)
	return ok
}

// DeepCopy returns a fully independent copy of the tree. Nested sections
// and list values are copied recursively; scalars are shared (they are
// immutable value types).
func (t RawTree) DeepCopy() RawTree {
	out := make(RawTree, len(t))
	for k, v := range t {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case RawTree:
		return val.DeepCopy()
	case map[string]any:
		return RawTree(val).DeepCopy()
	case []any:
		out := make([]any, len(val))
		for i, entry := range val {
			out[i] = deepCopyValue(entry)
		}
		return out
	default:
		return v
	}
}

// asTree reports whether v is a nested section and returns it as a RawTree.
// Loaders built on yaml/toml decoders produce plain map[string]any values,
// which are treated identically.
func asTree(v any) (RawTree, bool) {
	switch t := v.(type) {
	case RawTree:
		return t, true
	case map[string]any:
		return RawTree(t), true
	default:
		return nil, false
	}
}

// scalarString renders a scalar value as a string. Sections have no
// string form and return false.
func scalarString(v any) (string, bool) {
	if _, isTree := asTree(v); isTree {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// sortedKeys returns the keys of the tree in sorted order, for
// deterministic iteration.
func sortedKeys(t RawTree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dotted joins a field path for use in error messages.
func dotted(path []string, name string) string {
	if len(path) == 0 {
		return name
	}
	return strings.Join(path, ".") + "." + name
}
