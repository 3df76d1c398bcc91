package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Shape classifies how a struct field is materialized from raw data.
type Shape int

const (
	// ShapeScalar is a single value parsed from a string or primitive.
	ShapeScalar Shape = iota
	// ShapeList is a slice of scalars, parsed from a delimited string
	// or a raw sequence.
	ShapeList
	// ShapeTuple is a fixed-size array of scalars.
	ShapeTuple
	// ShapeSet is a deduplicated collection of scalars.
	ShapeSet
	// ShapeMap is a mapping of scalar keys to scalar values.
	ShapeMap
	// ShapeSection is a nested struct built from a subtree.
	ShapeSection
	// ShapeSectionMap is a mapping of names to nested structs.
	ShapeSectionMap
	// ShapeSectionList is a slice of nested structs.
	ShapeSectionList
	// ShapeReference is a Reference resolved to a named section.
	ShapeReference
	// ShapeReferenceList is a slice of references.
	ShapeReferenceList
	// ShapeReferenceMap is a mapping of keys to references.
	ShapeReferenceMap
)

// Field describes one settable field of a configuration struct.
type Field struct {
	// Name is the canonical raw-data key, taken from the `config` tag
	// or derived from the Go field name.
	Name string
	// Alias is an alternative accepted key, usually a legacy name.
	Alias string
	Shape Shape
	// Delimiter forces the list separator instead of auto-detection.
	Delimiter string
	// SectionNames marks list/map fields whose raw value is a
	// delimited list of section names to resolve.
	SectionNames bool
	// Inherit copies missing keys from the enclosing section into each
	// resolved named section.
	Inherit bool
	// Arity is the element count for ShapeTuple.
	Arity int
	// Type is the Go type of the field. Elem is the element type for
	// collection shapes.
	Type reflect.Type
	Elem reflect.Type
	// Section is the nested schema for section-valued shapes.
	Section *Section
	// Index locates the field for reflect.Value.FieldByIndex.
	Index []int
}

// Section is the schema of one configuration struct.
type Section struct {
	Type   reflect.Type
	Fields []Field
}

// Find returns the field whose name or alias matches key, trying exact
// matches before case-insensitive ones.
func (s *Section) Find(key string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == key {
			return &s.Fields[i], true
		}
	}
	for i := range s.Fields {
		if s.Fields[i].Alias == key {
			return &s.Fields[i], true
		}
	}
	lower := strings.ToLower(key)
	for i := range s.Fields {
		if strings.ToLower(s.Fields[i].Name) == lower {
			return &s.Fields[i], true
		}
	}
	for i := range s.Fields {
		if s.Fields[i].Alias != "" && strings.ToLower(s.Fields[i].Alias) == lower {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// maxSchemaDepth bounds schema recursion so that self-referential struct
// types fail with a clear error instead of overflowing the stack.
const maxSchemaDepth = 10

var schemaCache sync.Map // reflect.Type -> *Section

// SchemaFor builds (or returns the cached) schema for a struct type.
// target must be a struct or pointer to struct.
func SchemaFor(target any) (*Section, error) {
	t := reflect.TypeOf(target)
	if t == nil {
		return nil, &StructuralError{Message: "cannot build schema for nil target"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &StructuralError{Message: fmt.Sprintf("cannot build schema for non-struct type %s", t)}
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Section), nil
	}
	section, err := buildSection(t, 0)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(t, section)
	return section, nil
}

func buildSection(t reflect.Type, depth int) (*Section, error) {
	if depth > maxSchemaDepth {
		return nil, &StructuralError{Message: fmt.Sprintf("schema nesting exceeds %d levels at type %s", maxSchemaDepth, t)}
	}
	section := &Section{Type: t}
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		field, skip, err := buildField(sf, depth)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		section.Fields = append(section.Fields, field)
	}
	return section, nil
}

func buildField(sf reflect.StructField, depth int) (Field, bool, error) {
	field := Field{
		Name:  snakeCase(sf.Name),
		Type:  sf.Type,
		Index: sf.Index,
	}
	tag := sf.Tag.Get("config")
	if tag == "-" {
		return Field{}, true, nil
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		field.Name = parts[0]
	}
	set := false
	for _, opt := range parts[1:] {
		switch {
		case opt == "set":
			set = true
		case opt == "sectionnames":
			field.SectionNames = true
		case opt == "inherit":
			field.Inherit = true
		case strings.HasPrefix(opt, "alias="):
			field.Alias = strings.TrimPrefix(opt, "alias=")
		case strings.HasPrefix(opt, "delimiter="):
			field.Delimiter = namedDelimiter(strings.TrimPrefix(opt, "delimiter="))
		case opt == "":
		default:
			return Field{}, false, &StructuralError{Message: fmt.Sprintf("unknown config tag option %q on field %s", opt, sf.Name)}
		}
	}
	if err := classifyField(&field, sf, depth); err != nil {
		return Field{}, false, err
	}
	if set {
		if field.Shape != ShapeList {
			return Field{}, false, &StructuralError{Message: fmt.Sprintf("set option requires a scalar slice on field %s", sf.Name)}
		}
		field.Shape = ShapeSet
	}
	return field, false, nil
}

func classifyField(field *Field, sf reflect.StructField, depth int) error {
	t := sf.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case isReferenceType(t):
		field.Shape = ShapeReference
		return setReferenceSection(field, t, depth)
	case t == bytesType, t == reflect.TypeOf(time.Time{}), isScalarKind(t.Kind()):
		field.Shape = ShapeScalar
		return nil
	}
	switch t.Kind() {
	case reflect.Slice:
		return classifyCollection(field, t.Elem(), ShapeList, ShapeReferenceList, ShapeSectionList, depth)
	case reflect.Array:
		field.Arity = t.Len()
		field.Elem = t.Elem()
		field.Shape = ShapeTuple
		return nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &StructuralError{Message: fmt.Sprintf("map field %s must have string keys", sf.Name)}
		}
		return classifyCollection(field, t.Elem(), ShapeMap, ShapeReferenceMap, ShapeSectionMap, depth)
	case reflect.Struct:
		sub, err := buildSection(t, depth+1)
		if err != nil {
			return err
		}
		field.Shape = ShapeSection
		field.Section = sub
		return nil
	default:
		return &StructuralError{Message: fmt.Sprintf("unsupported field type %s on field %s", sf.Type, sf.Name)}
	}
}

func classifyCollection(field *Field, elem reflect.Type, scalar, ref, section Shape, depth int) error {
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	field.Elem = elem
	switch {
	case isReferenceType(elem):
		field.Shape = ref
		if err := setReferenceSection(field, elem, depth); err != nil {
			return err
		}
	case elem.Kind() == reflect.Struct && elem != reflect.TypeOf(time.Time{}):
		sub, err := buildSection(elem, depth+1)
		if err != nil {
			return err
		}
		field.Shape = section
		field.Section = sub
	case isScalarKind(elem.Kind()) || elem == reflect.TypeOf(time.Time{}):
		field.Shape = scalar
	default:
		return &StructuralError{Message: fmt.Sprintf("unsupported collection element type %s", elem)}
	}
	if field.SectionNames && field.Section == nil && field.Shape != ref {
		return &StructuralError{Message: fmt.Sprintf("sectionnames option requires struct or Reference elements, got %s", elem)}
	}
	return nil
}

// setReferenceSection records the schema of the struct type a
// Reference field points at, so the walker can build it on resolution.
func setReferenceSection(field *Field, refType reflect.Type, depth int) error {
	sub, err := buildSection(referenceElem(refType), depth+1)
	if err != nil {
		return err
	}
	field.Section = sub
	return nil
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func namedDelimiter(name string) string {
	switch name {
	case "nl":
		return "\n"
	case "comma":
		return ","
	case "pipe":
		return "|"
	case "tab":
		return "\t"
	default:
		return name
	}
}

// snakeCase converts a Go field name to its default raw-data key, so
// DatabaseName is looked up as database_name.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (name[i-1] < 'A' || name[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
