package mapper

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Profile is a unit of rule authorship. Define is called once, during the
// store's collection pass.
type Profile interface {
	Name() string
	Define(pm *ProfileMapper) error
}

type namedProfile struct {
	name   string
	define func(pm *ProfileMapper) error
}

func (p namedProfile) Name() string                   { return p.name }
func (p namedProfile) Define(pm *ProfileMapper) error { return p.define(pm) }

// NewProfile returns a Profile named name that registers its rules with define.
func NewProfile(name string, define func(pm *ProfileMapper) error) Profile {
	return namedProfile{name: name, define: define}
}

// ProfileFunc adapts a plain function to Profile. Its name is the function's
// name without the package path.
type ProfileFunc func(pm *ProfileMapper) error

// Name implements Profile.
func (f ProfileFunc) Name() string {
	fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if fn == nil {
		return fmt.Sprintf("%p", f)
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// Define implements Profile.
func (f ProfileFunc) Define(pm *ProfileMapper) error {
	return f(pm)
}
