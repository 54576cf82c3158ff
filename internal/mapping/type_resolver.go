package mapping

import (
	"reflect"
	"sort"
	"strings"

	"caster-mapper/typeid"
)

// TypeTable indexes struct types by their full identifier
// ("caster-mapper/cats.Cat").
type TypeTable map[string]reflect.Type

// NewTypeTable returns a table holding types.
func NewTypeTable(types ...reflect.Type) TypeTable {
	t := make(TypeTable, len(types))
	for _, rt := range types {
		t.Add(rt)
	}

	return t
}

// Add indexes rt, dereferencing pointers.
func (t TypeTable) Add(rt reflect.Type) {
	id := typeid.OfType(rt)
	if id.IsZero() {
		return
	}

	t[id.String()] = id.Type()
}

// Resolve resolves a type ID string like:
// - "cats.Cat" (short)
// - "caster-mapper/cats.Cat" (full)
// - "Cat" (name only).
//
// Short and name-only forms must match exactly one type.
func (t TypeTable) Resolve(typeIDStr string) (reflect.Type, bool) {
	if typeIDStr == "" {
		return nil, false
	}

	// 1) exact match (for fully qualified import path)
	if rt, ok := t[typeIDStr]; ok {
		return rt, true
	}

	var match func(full string) bool

	if !strings.Contains(typeIDStr, ".") {
		// Name-only: match by type name.
		match = func(full string) bool {
			return full[strings.LastIndex(full, ".")+1:] == typeIDStr
		}
	} else {
		lastDot := strings.LastIndex(typeIDStr, ".")
		pkgStr, name := typeIDStr[:lastDot], typeIDStr[lastDot+1:]

		if pkgStr == "" || name == "" {
			return nil, false
		}

		// 2) suffix match (for short forms like "cats.Cat" vs "caster-mapper/cats.Cat")
		match = func(full string) bool {
			i := strings.LastIndex(full, ".")
			if i < 0 || full[i+1:] != name {
				return false
			}

			pkg := full[:i]

			return pkg == pkgStr || strings.HasSuffix(pkg, "/"+pkgStr)
		}
	}

	var found []string

	for full := range t {
		if match(full) {
			found = append(found, full)
		}
	}

	if len(found) != 1 {
		return nil, false
	}

	return t[found[0]], true
}

// Names returns the full identifiers of every indexed type, sorted.
func (t TypeTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
