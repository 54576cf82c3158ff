// Package caster adapts plain conversion functions into property transforms.
//
// A caster is a function of one value returning the converted value,
// optionally followed by a bool (false leaves the target untouched) and an
// error. A leading context.Context parameter is allowed for functions that
// block.
package caster

import (
	"context"
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"caster-mapper/utils"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrInputMismatch        = errors.New("caster input type mismatch")
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasCtx       bool
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// Parse inspects the provided function and returns a Caster if it is a valid
// caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
//
// Each may also take a context.Context as its first parameter.
func Parse(fn any) (Caster, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnType := fnVal.Type()

	first := 0
	if fnType.NumIn() == 2 && fnType.In(0) == contextType {
		first = 1
	}

	if fnType.NumIn() != first+1 || fnType.NumOut() == 0 {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(first)
	if isDoublePointer(src) {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if isDoublePointer(dst) {
		return Caster{}, ErrDoublePointer
	}

	alias, name := funcName(fnVal)

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: alias,
		HasCtx:       first == 1,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}

		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true

		return caster, nil
	}
}

// MustParse is like Parse but panics on error.
func MustParse(fn any) Caster {
	c, err := Parse(fn)
	if err != nil {
		panic(err)
	}

	return c
}

// String renders the caster as alias.Name(Src) Dst.
func (c Caster) String() string {
	return fmt.Sprintf("%s.%s(%s) %s", c.PackageAlias, c.Name, c.Src, c.Dst)
}

// Accepts reports whether a value of type t can be passed to the caster.
// A pointer is accepted for its element type and the other way around.
func (c Caster) Accepts(t reflect.Type) bool {
	switch {
	case t == nil:
		return false
	case t.AssignableTo(c.Src):
		return true
	case t.Kind() == reflect.Pointer && t.Elem().AssignableTo(c.Src):
		return true
	default:
		return c.Src.Kind() == reflect.Pointer && t.AssignableTo(c.Src.Elem())
	}
}

// Call invokes the caster with in. A false ok means the caster declined to
// produce a value; out is then invalid.
func (c Caster) Call(ctx context.Context, in reflect.Value) (out reflect.Value, ok bool, err error) {
	if !c.fn.IsValid() {
		return reflect.Value{}, false, ErrCasterIsNotAFunction
	}

	arg, err := c.argument(in)
	if err != nil {
		return reflect.Value{}, false, err
	}

	args := []reflect.Value{arg}
	if c.HasCtx {
		args = []reflect.Value{reflect.ValueOf(&ctx).Elem(), arg}
	}

	res := c.fn.Call(args)
	out, ok = res[0], true

	if c.HasBool {
		ok = res[1].Bool()
	}

	if c.HasErr {
		if e := res[len(res)-1]; !e.IsNil() {
			return reflect.Value{}, false, e.Interface().(error) //nolint:forcetypeassert // checked by isError
		}
	}

	if !ok {
		return reflect.Value{}, false, nil
	}

	return out, true, nil
}

func (c Caster) argument(in reflect.Value) (reflect.Value, error) {
	if !in.IsValid() {
		return reflect.Zero(c.Src), nil
	}

	switch {
	case in.Type().AssignableTo(c.Src):
		return in, nil
	case in.Kind() == reflect.Pointer && in.Type().Elem().AssignableTo(c.Src):
		if in.IsNil() {
			return reflect.Zero(c.Src), nil
		}

		return in.Elem(), nil
	case c.Src.Kind() == reflect.Pointer && in.Type().AssignableTo(c.Src.Elem()):
		p := reflect.New(c.Src.Elem())
		p.Elem().Set(in)

		return p, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s takes %s, got %s", ErrInputMismatch, c.Name, c.Src, in.Type())
	}
}

func funcName(fn reflect.Value) (alias, name string) {
	full := runtime.FuncForPC(fn.Pointer()).Name()
	_, file := path.Split(full)

	return utils.Unpack2(strings.SplitN(file, ".", 2))
}

func isDoublePointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Pointer
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	return t.Implements(errorType)
}
