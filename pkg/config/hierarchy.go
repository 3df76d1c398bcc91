package config

import (
	"fmt"
	"reflect"
	"strings"
)

// Hierarchy is embedded in configuration structs that need to know
// where they live inside the loaded tree. After Load, every embedded
// Hierarchy holds a pointer to the root configuration and the path of
// field names leading to its holder.
type Hierarchy struct {
	root    any
	parents []string
}

// Root returns the root configuration struct, or nil before Load.
func (h *Hierarchy) Root() any { return h.root }

// Parents returns the path of names from the root to this section.
func (h *Hierarchy) Parents() []string { return h.parents }

// FullPath renders the dotted location of this section, for messages.
func (h *Hierarchy) FullPath() string {
	if len(h.parents) == 0 {
		return "root"
	}
	return strings.Join(h.parents, ".")
}

// FullItemName renders the ancestry joined by " -> ", optionally
// extended with item names. Reads better than a dotted path when the
// message refers to a value inside the section.
func (h *Hierarchy) FullItemName(items ...string) string {
	parts := append(append([]string(nil), h.parents...), items...)
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, " -> ")
}

func (h *Hierarchy) setLocation(root any, parents []string) {
	h.root = root
	h.parents = parents
}

// Get navigates the root configuration by a dotted path of raw-data
// names, so "database.host" reads the Host field of the Database
// section regardless of where the caller sits in the tree.
func (h *Hierarchy) Get(path string) (any, error) {
	v, err := h.getValue(path)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// getValue walks the root configuration to the value at path. The
// result is addressable whenever the value lives in the object graph
// rather than in a map of plain structs.
func (h *Hierarchy) getValue(path string) (reflect.Value, error) {
	if h.root == nil {
		return reflect.Value{}, &StructuralError{Message: "section is not attached to a configuration"}
	}
	current := reflect.ValueOf(h.root)
	for _, part := range strings.Split(path, ".") {
		for current.Kind() == reflect.Pointer || current.Kind() == reflect.Interface {
			if current.IsNil() {
				return reflect.Value{}, fmt.Errorf("%s not found: nil at %s", path, part)
			}
			current = current.Elem()
		}
		switch current.Kind() {
		case reflect.Struct:
			schema, err := SchemaFor(current.Interface())
			if err != nil {
				return reflect.Value{}, err
			}
			field, ok := schema.Find(part)
			if !ok {
				return reflect.Value{}, fmt.Errorf("%s not found: no field %s in %s", path, part, current.Type())
			}
			current = current.FieldByIndex(field.Index)
		case reflect.Map:
			next := current.MapIndex(reflect.ValueOf(part))
			if !next.IsValid() && current.Type().Key().Kind() == reflect.String {
				lower := strings.ToLower(part)
				for _, key := range current.MapKeys() {
					if strings.ToLower(key.String()) == lower {
						next = current.MapIndex(key)
						break
					}
				}
			}
			if !next.IsValid() {
				return reflect.Value{}, fmt.Errorf("%s not found: no entry %s", path, part)
			}
			current = next
		default:
			return reflect.Value{}, fmt.Errorf("%s not found: %s is not a section", path, part)
		}
	}
	return current, nil
}

// GetOr is Get with a fallback for missing paths.
func (h *Hierarchy) GetOr(path string, fallback any) any {
	v, err := h.Get(path)
	if err != nil {
		return fallback
	}
	return v
}

// Get reads a value out of any configuration struct by dotted path,
// without requiring the struct to embed Hierarchy.
func Get(root any, path string) (any, error) {
	h := Hierarchy{root: root}
	return h.Get(path)
}

// GetOr is Get with a fallback for missing paths.
func GetOr(root any, path string, fallback any) any {
	v, err := Get(root, path)
	if err != nil {
		return fallback
	}
	return v
}

// hierarchyAware is satisfied by any struct embedding Hierarchy.
type hierarchyAware interface {
	setLocation(root any, parents []string)
}

// HierarchyValidator is implemented by sections that need checks which
// can only run once the whole tree is assembled, such as rules that
// read sibling or parent values. Fill calls it after the section's
// children have been placed and validated.
type HierarchyValidator interface {
	ValidateInHierarchy() error
}
