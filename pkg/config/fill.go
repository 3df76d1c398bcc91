package config

import (
	"fmt"
	"reflect"
	"sort"
)

// maxFillDepth bounds tree traversal during the hierarchy pass.
const maxFillDepth = 10

// Fill wires every embedded Hierarchy in the tree under root with its
// root pointer and dotted location, then runs ValidateInHierarchy on
// each section that declares one, children before their parents. All
// validator failures are collected and returned together as a
// *ConfigError.
func Fill(root any) error {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &StructuralError{Message: "Fill requires a non-nil pointer to a struct"}
	}
	f := filler{root: root}
	f.fillValue(rv, nil, 0)
	if f.fatal != nil {
		return f.fatal
	}
	if len(f.problems) > 0 {
		return &ConfigError{Problems: f.problems}
	}
	return nil
}

type filler struct {
	root     any
	problems []Problem
	fatal    error
}

func (f *filler) fillValue(v reflect.Value, path []string, depth int) {
	if f.fatal != nil {
		return
	}
	if depth > maxFillDepth {
		f.fatal = &StructuralError{Message: fmt.Sprintf(
			"%s nested deeper than %d levels, possible model self reference", joinFillPath(path), maxFillDepth)}
		return
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		f.fillStruct(v, path, depth)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			f.fillValue(v.Index(i), append(path, fmt.Sprintf("[%d]", i)), depth+1)
		}
	case reflect.Map:
		for _, key := range sortedMapKeys(v) {
			entry := v.MapIndex(key)
			// Map entries are not addressable, so structs are filled
			// on a copy and written back.
			if isFillableStruct(entry.Type()) {
				copied := reflect.New(entry.Type())
				copied.Elem().Set(entry)
				f.fillValue(copied, append(path, fmt.Sprintf("[%v]", key.Interface())), depth+1)
				v.SetMapIndex(key, copied.Elem())
				continue
			}
			f.fillValue(entry, append(path, fmt.Sprintf("[%v]", key.Interface())), depth+1)
		}
	}
}

func (f *filler) fillStruct(v reflect.Value, path []string, depth int) {
	if !v.CanAddr() {
		return
	}
	addr := v.Addr()
	if aware, ok := addr.Interface().(hierarchyAware); ok {
		aware.setLocation(f.root, append([]string(nil), path...))
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Type == reflect.TypeOf(Hierarchy{}) {
			continue
		}
		// Embedded sections are promoted, not nested, so they share
		// their holder's location.
		if sf.Anonymous {
			f.fillValue(v.Field(i), path, depth+1)
			continue
		}
		f.fillValue(v.Field(i), append(path, fieldRawName(sf)), depth+1)
	}
	if validator, ok := addr.Interface().(HierarchyValidator); ok {
		if err := validator.ValidateInHierarchy(); err != nil {
			f.problems = append(f.problems, Problem{Path: joinFillPath(path), Message: err.Error()})
		}
	}
}

func isFillableStruct(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != reflect.TypeOf(Hierarchy{})
}

func fieldRawName(sf reflect.StructField) string {
	tag := sf.Tag.Get("config")
	if tag != "" {
		if name, _, _ := cutTag(tag); name != "" {
			return name
		}
	}
	return snakeCase(sf.Name)
}

func cutTag(tag string) (name, rest string, found bool) {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i], tag[i+1:], true
		}
	}
	return tag, "", false
}

func sortedMapKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}

func joinFillPath(path []string) string {
	out := ""
	for _, part := range path {
		if out == "" || (len(part) > 0 && part[0] == '[') {
			out += part
		} else {
			out += "." + part
		}
	}
	if out == "" {
		return "root"
	}
	return out
}
