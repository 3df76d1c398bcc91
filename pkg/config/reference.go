package config

import (
	"fmt"
	"reflect"
)

// Reference is a field whose raw value is the NAME of another section
// rather than inline data. Only the name is recorded during Load; the
// fill pass checks that it resolves, and Referenced looks the section
// up in the root configuration at every call, so the result is the
// root-owned instance, never a private copy.
//
// The name is a dotted path of raw-data names starting at the root,
// e.g. "backends.main" for an entry of the root's backends map.
type Reference[T any] struct {
	Hierarchy
	name string
}

// Name returns the section name this reference was declared with.
func (r Reference[T]) Name() string { return r.name }

// Referenced resolves the reference against the root configuration and
// returns the section it names. Struct fields and pointer-valued
// containers yield a pointer aliasing the root-owned value; entries of
// a map of plain structs are re-read on every call but returned as a
// copy, since Go map values cannot be addressed.
func (r Reference[T]) Referenced() (*T, error) {
	if r.name == "" {
		return nil, fmt.Errorf("empty section reference")
	}
	v, err := r.getValue(r.name)
	if err != nil {
		return nil, err
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("%s resolves to nil", r.name)
		}
		v = v.Elem()
	}
	want := reflect.TypeFor[T]()
	if v.Type() != want {
		return nil, fmt.Errorf("%s resolves to %s, not %s", r.name, v.Type(), want)
	}
	if v.CanAddr() {
		return v.Addr().Interface().(*T), nil
	}
	copied := v.Interface().(T)
	return &copied, nil
}

// ValidateInHierarchy rejects names that do not resolve, so a dangling
// reference is reported at load time rather than on first use.
func (r Reference[T]) ValidateInHierarchy() error {
	if r.name == "" {
		return nil
	}
	_, err := r.Referenced()
	return err
}

func (r Reference[T]) String() string { return r.name }

func (r *Reference[T]) setReference(name string) { r.name = name }

func (r *Reference[T]) refElem() reflect.Type { return reflect.TypeFor[T]() }

// referenceSetter is implemented by *Reference[T] and lets reflection
// code record section names without knowing T.
type referenceSetter interface {
	setReference(name string)
	refElem() reflect.Type
}

var referenceSetterType = reflect.TypeOf((*referenceSetter)(nil)).Elem()

func isReferenceType(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(referenceSetterType)
}

func referenceElem(t reflect.Type) reflect.Type {
	return reflect.New(t).Interface().(referenceSetter).refElem()
}
