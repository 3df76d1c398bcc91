package config

import (
	"fmt"
	"reflect"
	"strings"
)

// sourceNameKey is injected into every section resolved by name so the
// built struct can learn which section it came from.
const sourceNameKey = "config_source_name"

// walker decodes a raw tree into a struct following its schema,
// collecting every problem it meets instead of stopping at the first.
type walker struct {
	root     RawTree
	problems []Problem
}

func (w *walker) addProblem(path []string, name string, err error) {
	w.problems = append(w.problems, Problem{Path: dotted(path, name), Message: err.Error()})
}

// fail records a typed error that already carries its own path.
func (w *walker) fail(err error) {
	w.problems = append(w.problems, Problem{Message: err.Error()})
}

func (w *walker) failCoercion(path []string, name string, raw any, err error) {
	w.fail(&CoercionError{Path: dotted(path, name), Value: fmt.Sprint(raw), Err: err})
}

// decodeSection fills dst, a settable struct value, from tree. Keys
// with no matching schema field are ignored.
func (w *walker) decodeSection(tree RawTree, schema *Section, dst reflect.Value, path []string) {
	for i := range schema.Fields {
		field := &schema.Fields[i]
		raw, found := locate(tree, field)
		if !found {
			// Flat formats can supply nested values as dotted keys at
			// the root, e.g. "app.hosts". A direct match always wins
			// over this fallback.
			raw, found = w.locateDotted(field, path)
		}
		if !found {
			continue
		}
		fv := dst.FieldByIndex(field.Index)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		}
		w.decodeField(raw, tree, field, fv, path)
	}
}

func (w *walker) decodeField(raw any, tree RawTree, field *Field, fv reflect.Value, path []string) {
	switch field.Shape {
	case ShapeScalar:
		if err := decodeScalar(fv, raw); err != nil {
			w.failCoercion(path, field.Name, raw, err)
		}
	case ShapeList, ShapeSet:
		w.decodeList(raw, field, fv, path)
	case ShapeTuple:
		w.decodeTuple(raw, field, fv, path)
	case ShapeMap:
		w.decodeMap(raw, field, fv, path)
	case ShapeSection:
		sub, ok := asTree(raw)
		if !ok {
			w.addProblem(path, field.Name, fmt.Errorf("expected a section, got %q", truncateValue(fmt.Sprint(raw))))
			return
		}
		w.decodeSection(sub, field.Section, fv, append(path, field.Name))
	case ShapeSectionMap:
		w.decodeSectionMap(raw, tree, field, fv, path)
	case ShapeSectionList:
		w.decodeSectionList(raw, tree, field, fv, path)
	case ShapeReference:
		w.decodeReference(raw, field, fv, path)
	case ShapeReferenceList:
		w.decodeReferenceList(raw, field, fv, path)
	case ShapeReferenceMap:
		w.decodeReferenceMap(raw, field, fv, path)
	}
}

func (w *walker) decodeList(raw any, field *Field, fv reflect.Value, path []string) {
	items, err := parseRawList(raw, field.Delimiter)
	if err != nil {
		w.failCoercion(path, field.Name, raw, err)
		return
	}
	if field.Shape == ShapeSet {
		items = dedupItems(items)
	}
	out := reflect.MakeSlice(fv.Type(), len(items), len(items))
	ok := true
	for i, item := range items {
		if err := decodeScalar(out.Index(i), item); err != nil {
			w.failCoercion(path, fmt.Sprintf("%s[%d]", field.Name, i), item, err)
			ok = false
		}
	}
	if ok {
		fv.Set(out)
	}
}

func (w *walker) decodeTuple(raw any, field *Field, fv reflect.Value, path []string) {
	items, err := parseRawList(raw, field.Delimiter)
	if err != nil {
		w.failCoercion(path, field.Name, raw, err)
		return
	}
	if len(items) != field.Arity {
		w.failCoercion(path, field.Name, raw, fmt.Errorf("expected %d items, got %d", field.Arity, len(items)))
		return
	}
	for i, item := range items {
		if err := decodeScalar(fv.Index(i), item); err != nil {
			w.failCoercion(path, fmt.Sprintf("%s[%d]", field.Name, i), item, err)
		}
	}
}

func (w *walker) decodeMap(raw any, field *Field, fv reflect.Value, path []string) {
	pairs, ok, err := parseRawMap(raw)
	if err != nil {
		w.failCoercion(path, field.Name, raw, err)
		return
	}
	if !ok {
		w.addProblem(path, field.Name, fmt.Errorf("expected a mapping, got %q", truncateValue(fmt.Sprint(raw))))
		return
	}
	out := reflect.MakeMapWithSize(fv.Type(), len(pairs))
	for _, key := range sortedKeys(pairs) {
		elem := reflect.New(fv.Type().Elem()).Elem()
		if err := decodeScalar(elem, pairs[key]); err != nil {
			w.failCoercion(path, fmt.Sprintf("%s[%s]", field.Name, key), pairs[key], err)
			continue
		}
		out.SetMapIndex(reflect.ValueOf(key), elem)
	}
	fv.Set(out)
}

func (w *walker) decodeSectionMap(raw any, tree RawTree, field *Field, fv reflect.Value, path []string) {
	out := reflect.MakeMap(fv.Type())
	if field.SectionNames {
		// Either a delimited list of names (keyed by the name itself)
		// or a mapping of keys to names.
		if pairs, isTree := asTree(raw); isTree {
			for _, key := range sortedKeys(pairs) {
				name, ok := scalarString(pairs[key])
				if !ok {
					w.addProblem(path, fmt.Sprintf("%s[%s]", field.Name, key), fmt.Errorf("expected a section name"))
					continue
				}
				sub, ok := w.resolveNamed(strings.TrimSpace(name), tree, field, path)
				if !ok {
					continue
				}
				elem := w.buildSectionValue(sub, field, fv.Type().Elem(), append(path, field.Name, key))
				out.SetMapIndex(reflect.ValueOf(key), elem)
			}
			fv.Set(out)
			return
		}
		names, err := sectionNameList(raw, field)
		if err != nil {
			w.failCoercion(path, field.Name, raw, err)
			return
		}
		for _, name := range names {
			sub, ok := w.resolveNamed(name, tree, field, path)
			if !ok {
				continue
			}
			elem := w.buildSectionValue(sub, field, fv.Type().Elem(), append(path, field.Name, name))
			out.SetMapIndex(reflect.ValueOf(name), elem)
		}
		fv.Set(out)
		return
	}
	pairs, ok := asTree(raw)
	if !ok {
		w.addProblem(path, field.Name, fmt.Errorf("expected a section mapping, got %q", truncateValue(fmt.Sprint(raw))))
		return
	}
	for _, key := range sortedKeys(pairs) {
		sub, ok := asTree(pairs[key])
		if !ok {
			w.addProblem(path, fmt.Sprintf("%s[%s]", field.Name, key), fmt.Errorf("expected a section"))
			continue
		}
		elem := w.buildSectionValue(sub, field, fv.Type().Elem(), append(path, field.Name, key))
		out.SetMapIndex(reflect.ValueOf(key), elem)
	}
	fv.Set(out)
}

func (w *walker) decodeSectionList(raw any, tree RawTree, field *Field, fv reflect.Value, path []string) {
	var elems []reflect.Value
	if field.SectionNames {
		names, err := sectionNameList(raw, field)
		if err != nil {
			w.failCoercion(path, field.Name, raw, err)
			return
		}
		for _, name := range names {
			sub, ok := w.resolveNamed(name, tree, field, path)
			if !ok {
				continue
			}
			elems = append(elems, w.buildSectionValue(sub, field, fv.Type().Elem(), append(path, field.Name, name)))
		}
	} else {
		items, err := parseRawList(raw, field.Delimiter)
		if err != nil {
			w.failCoercion(path, field.Name, raw, err)
			return
		}
		for i, item := range items {
			sub, ok := asTree(item)
			if !ok {
				w.addProblem(path, fmt.Sprintf("%s[%d]", field.Name, i), fmt.Errorf("expected a section"))
				continue
			}
			elems = append(elems, w.buildSectionValue(sub, field, fv.Type().Elem(), append(path, fmt.Sprintf("%s[%d]", field.Name, i))))
		}
	}
	out := reflect.MakeSlice(fv.Type(), len(elems), len(elems))
	for i, elem := range elems {
		out.Index(i).Set(elem)
	}
	fv.Set(out)
}

// References record the section name only; resolution happens against
// the built object graph when Referenced is called, and existence is
// checked by the hierarchy fill pass.
func (w *walker) decodeReference(raw any, field *Field, fv reflect.Value, path []string) {
	name, ok := scalarString(raw)
	if !ok {
		w.addProblem(path, field.Name, fmt.Errorf("expected a section name, got a section"))
		return
	}
	if !w.setReferenceName(fv, name) {
		w.addProblem(path, field.Name, fmt.Errorf("empty section reference"))
	}
}

func (w *walker) decodeReferenceList(raw any, field *Field, fv reflect.Value, path []string) {
	names, err := sectionNameList(raw, field)
	if err != nil {
		w.failCoercion(path, field.Name, raw, err)
		return
	}
	out := reflect.MakeSlice(fv.Type(), len(names), len(names))
	for i, name := range names {
		w.setReferenceName(out.Index(i), name)
	}
	fv.Set(out)
}

func (w *walker) decodeReferenceMap(raw any, field *Field, fv reflect.Value, path []string) {
	out := reflect.MakeMap(fv.Type())
	if pairs, isTree := asTree(raw); isTree && !field.SectionNames {
		for _, key := range sortedKeys(pairs) {
			name, ok := scalarString(pairs[key])
			if !ok {
				w.addProblem(path, fmt.Sprintf("%s[%s]", field.Name, key), fmt.Errorf("expected a section name"))
				continue
			}
			elem := reflect.New(fv.Type().Elem()).Elem()
			w.setReferenceName(elem, name)
			out.SetMapIndex(reflect.ValueOf(key), elem)
		}
		fv.Set(out)
		return
	}
	names, err := sectionNameList(raw, field)
	if err != nil {
		w.failCoercion(path, field.Name, raw, err)
		return
	}
	for _, name := range names {
		elem := reflect.New(fv.Type().Elem()).Elem()
		w.setReferenceName(elem, name)
		out.SetMapIndex(reflect.ValueOf(name), elem)
	}
	fv.Set(out)
}

func (w *walker) setReferenceName(fv reflect.Value, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	fv.Addr().Interface().(referenceSetter).setReference(name)
	return true
}

// buildSectionValue decodes sub into a fresh value of elemType, which
// may be a struct or pointer to struct.
func (w *walker) buildSectionValue(sub RawTree, field *Field, elemType reflect.Type, path []string) reflect.Value {
	isPtr := elemType.Kind() == reflect.Pointer
	target := reflect.New(field.Section.Type)
	w.decodeSection(sub, field.Section, target.Elem(), path)
	if isPtr {
		return target
	}
	return target.Elem()
}

// resolveNamed builds the section called name for a by-name field.
// Every dotted prefix of the name that matches a section contributes
// its entries, longest prefix first, so "db.main" starts from the
// db.main section and inherits unset keys from a shorter "db" section.
// The result is a private copy tagged with its source name and, when
// the field inherits, back-filled with the enclosing section's entries.
func (w *walker) resolveNamed(name string, tree RawTree, field *Field, path []string) (RawTree, bool) {
	resolved := RawTree{}
	matched := false
	parts := strings.Split(name, ".")
	for i := len(parts); i >= 1; i-- {
		section, ok := w.findSection(strings.Join(parts[:i], "."), tree)
		if !ok {
			continue
		}
		matched = true
		inheritFill(section, resolved)
	}
	if !matched {
		w.fail(&SectionRefError{Path: dotted(path, field.Name), SectionName: name})
		return nil, false
	}
	if field.Inherit {
		for _, key := range sortedKeys(tree) {
			if _, isTree := asTree(tree[key]); isTree {
				continue
			}
			if !resolved.has(key) {
				resolved[key] = deepCopyValue(tree[key])
			}
		}
	}
	if !resolved.has(sourceNameKey) {
		resolved[sourceNameKey] = name
	}
	return resolved, true
}

// inheritFill copies entries of src missing from dst, deep-copied so
// decoding cannot disturb the source tree.
func inheritFill(src, dst RawTree) {
	for _, key := range sortedKeys(src) {
		if !dst.has(key) {
			dst[key] = deepCopyValue(src[key])
		}
	}
}

// findSection locates a possibly dotted section name, searching the
// root of the data before the section holding the reference. At each
// base a literal key match wins over dotted navigation.
func (w *walker) findSection(name string, current RawTree) (RawTree, bool) {
	for _, base := range []RawTree{w.root, current} {
		if base == nil {
			continue
		}
		if found, ok := navigateSection(base, name); ok {
			return found, true
		}
	}
	return nil, false
}

// navigateSection tries dotted prefixes of name as keys, longest
// first, so a literal "databases.main" key beats navigating into a
// "databases" container, which in turn beats shorter prefixes.
func navigateSection(base RawTree, name string) (RawTree, bool) {
	parts := strings.Split(name, ".")
	for i := len(parts); i >= 1; i-- {
		_, v, ok := base.lookup(strings.Join(parts[:i], "."))
		if !ok {
			continue
		}
		tree, isTree := asTree(v)
		if !isTree {
			continue
		}
		if i == len(parts) {
			return tree, true
		}
		if found, ok := navigateSection(tree, strings.Join(parts[i:], ".")); ok {
			return found, true
		}
	}
	return nil, false
}

// sectionNameList splits a by-name field's raw value into section
// names. Sequences pass through as strings.
func sectionNameList(raw any, field *Field) ([]string, error) {
	items, err := parseRawList(raw, field.Delimiter)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := scalarString(item); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				names = append(names, s)
			}
		}
	}
	return names, nil
}

// locate finds the raw value for a schema field within tree, trying the
// canonical name, then the alias, each exactly before case-insensitively.
func locate(tree RawTree, field *Field) (any, bool) {
	if v, ok := tree[field.Name]; ok {
		return v, true
	}
	if field.Alias != "" {
		if v, ok := tree[field.Alias]; ok {
			return v, true
		}
	}
	if _, v, ok := tree.lookup(field.Name); ok {
		return v, true
	}
	if field.Alias != "" {
		if _, v, ok := tree.lookup(field.Alias); ok {
			return v, true
		}
	}
	return nil, false
}

// locateDotted looks the field up in the root tree under its full
// dotted location, trying the canonical name and then the alias.
func (w *walker) locateDotted(field *Field, path []string) (any, bool) {
	if len(path) == 0 || w.root == nil {
		return nil, false
	}
	prefix := strings.Join(path, ".")
	if _, v, ok := w.root.lookup(prefix + "." + field.Name); ok {
		return v, true
	}
	if field.Alias != "" {
		if _, v, ok := w.root.lookup(prefix + "." + field.Alias); ok {
			return v, true
		}
	}
	return nil, false
}

func dedupItems(items []any) []any {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := fmt.Sprint(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
