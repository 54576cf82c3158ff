package typeid

import (
	"reflect"

	"caster-mapper/internal/common"
)

// TypeID uniquely identifies a concrete type.
type TypeID struct {
	rt reflect.Type
}

// OfType returns the identity of rt. Pointer types are dereferenced until a
// non-pointer type is reached. A nil type yields the zero TypeID.
func OfType(rt reflect.Type) TypeID {
	if rt == nil {
		return TypeID{}
	}

	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	return TypeID{rt: rt}
}

// Of returns the identity of T.
func Of[T any]() TypeID {
	return OfType(reflect.TypeFor[T]())
}

// OfValue returns the identity of the dynamic type of v.
func OfValue(v any) TypeID {
	if v == nil {
		return TypeID{}
	}

	return OfType(reflect.TypeOf(v))
}

// Type returns the underlying reflect.Type (nil for the zero TypeID).
func (t TypeID) Type() reflect.Type {
	return t.rt
}

// IsZero reports whether t identifies no type.
func (t TypeID) IsZero() bool {
	return t.rt == nil
}

// Kind returns the reflect kind of the identified type.
func (t TypeID) Kind() reflect.Kind {
	if t.rt == nil {
		return reflect.Invalid
	}

	return t.rt.Kind()
}

// IsStruct reports whether the identified type is a struct.
func (t TypeID) IsStruct() bool {
	return t.Kind() == reflect.Struct
}

// String returns the fully qualified name, e.g. "caster-mapper/internal/fixture.Cat".
// Unnamed types render with reflect's notation.
func (t TypeID) String() string {
	if t.rt == nil {
		return "<nil>"
	}

	if t.rt.Name() == "" || t.rt.PkgPath() == "" {
		return t.rt.String()
	}

	return t.rt.PkgPath() + "." + t.rt.Name()
}

// Name returns the short qualified name, e.g. "fixture.Cat".
func (t TypeID) Name() string {
	if t.rt == nil {
		return "<nil>"
	}

	if t.rt.Name() == "" {
		return t.rt.String()
	}

	return common.QualifiedName(t.rt.PkgPath(), t.rt.Name())
}

// Key is the (source, target) pair a rule is registered under.
type Key struct {
	Source TypeID
	Target TypeID
}

// KeyOf returns the key for mapping S to T.
func KeyOf[S, T any]() Key {
	return Key{Source: Of[S](), Target: Of[T]()}
}

// NewKey returns the key for mapping source to target.
func NewKey(source, target TypeID) Key {
	return Key{Source: source, Target: target}
}

// String renders the key as "pkg.Source->pkg.Target".
func (k Key) String() string {
	return k.Source.Name() + "->" + k.Target.Name()
}

// Path renders the key with fully qualified type names. Unlike String it
// stays unique when two packages share a name.
func (k Key) Path() string {
	return k.Source.String() + "->" + k.Target.String()
}

// IsZero reports whether either side of the key is unset.
func (k Key) IsZero() bool {
	return k.Source.IsZero() || k.Target.IsZero()
}
