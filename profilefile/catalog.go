package profilefile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"caster-mapper/caster"
	"caster-mapper/internal/mapping"
	"caster-mapper/mapper"
	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

var (
	ErrInvalidFile        = errors.New("profilefile: invalid mapping file")
	ErrUnknownType        = errors.New("profilefile: unknown type")
	ErrUnknownTransform   = errors.New("profilefile: unknown transform")
	ErrUnknownConstructor = errors.New("profilefile: unknown constructor")
	ErrBadConstructor     = errors.New("profilefile: constructor must be func() T or func() (T, error)")
	ErrDuplicateName      = errors.New("profilefile: name registered twice")
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// constructor is a registered factory producing values of target.
type constructor struct {
	target reflect.Type
	fn     reflect.Value
	hasCtx bool
	hasErr bool
}

// Catalog holds the Go values a mapping file refers to by name: struct
// types, transform functions and constructors.
type Catalog struct {
	types        mapping.TypeTable
	transforms   map[string]caster.Caster
	constructors map[string]constructor
	literals     primitive.CategoryEnum
	conversions  primitive.CategoryEnum
}

// NewCatalog returns an empty catalog. Defaults are parsed with every
// literal conversion; copies between differing types are rejected.
func NewCatalog() *Catalog {
	return &Catalog{
		types:        mapping.NewTypeTable(),
		transforms:   make(map[string]caster.Caster),
		constructors: make(map[string]constructor),
		literals:     primitive.CategoryLiteral,
		conversions:  primitive.CategoryNone,
	}
}

// Register adds T to c and pre-scans its metadata.
func Register[T any](c *Catalog) *Catalog {
	typeid.Register[T]()

	return c.AddTypes(reflect.TypeFor[T]())
}

// AddTypes adds struct types. Pointer types are added as their element.
func (c *Catalog) AddTypes(types ...reflect.Type) *Catalog {
	for _, rt := range types {
		c.types.Add(rt)
	}

	return c
}

// Types returns the catalog's type table.
func (c *Catalog) Types() mapping.TypeTable {
	return c.types
}

// WithLiterals limits the conversions used to parse field defaults.
func (c *Catalog) WithLiterals(allowed primitive.CategoryEnum) *Catalog {
	c.literals = allowed

	return c
}

// WithConversions lets copy fields convert between differing types.
func (c *Catalog) WithConversions(allowed primitive.CategoryEnum) *Catalog {
	c.conversions = allowed

	return c
}

// AddTransform registers fn under name. fn must be a caster: func(V) R,
// optionally taking a context first and returning a bool and/or an error.
func (c *Catalog) AddTransform(name string, fn any) error {
	if _, ok := c.transforms[name]; ok {
		return fmt.Errorf("%w: transform %q", ErrDuplicateName, name)
	}

	cs, err := caster.Parse(fn)
	if err != nil {
		return fmt.Errorf("transform %q: %w", name, err)
	}

	c.transforms[name] = cs

	return nil
}

// AddConstructor registers fn under name. fn returns the target or a pointer
// to it, optionally with an error, and may take a context.
func (c *Catalog) AddConstructor(name string, fn any) error {
	if _, ok := c.constructors[name]; ok {
		return fmt.Errorf("%w: constructor %q", ErrDuplicateName, name)
	}

	ctor, err := parseConstructor(fn)
	if err != nil {
		return fmt.Errorf("constructor %q: %w", name, err)
	}

	c.constructors[name] = ctor

	return nil
}

// Transforms returns the registered transform names, sorted.
func (c *Catalog) Transforms() []string {
	names := make([]string, 0, len(c.transforms))
	for name := range c.transforms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (c *Catalog) resolveType(name string) (typeid.TypeID, error) {
	rt, ok := c.types.Resolve(name)
	if !ok {
		return typeid.TypeID{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	return typeid.OfType(rt), nil
}

func (c *Catalog) resolveRule(s string) (mapper.RuleRef, error) {
	ref, err := mapping.ParseRuleRef(s)
	if err != nil {
		return mapper.RuleRef{}, err
	}

	src, err := c.resolveType(ref.Source)
	if err != nil {
		return mapper.RuleRef{}, err
	}

	dst, err := c.resolveType(ref.Target)
	if err != nil {
		return mapper.RuleRef{}, err
	}

	return mapper.Ref(typeid.NewKey(src, dst)), nil
}

func (c *Catalog) transform(name string) (caster.Caster, error) {
	cs, ok := c.transforms[name]
	if !ok {
		return caster.Caster{}, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}

	return cs, nil
}

// constructorFor returns the named constructor as a mapper.ConstructorFunc
// building target.
func (c *Catalog) constructorFor(name string, target reflect.Type) (mapper.ConstructorFunc, error) {
	ctor, ok := c.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstructor, name)
	}

	if ctor.target != target {
		return nil, fmt.Errorf("constructor %q builds %s, not %s", name, ctor.target, target)
	}

	return ctor.call, nil
}

func parseConstructor(fn any) (constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return constructor{}, ErrBadConstructor
	}

	t := v.Type()
	ctor := constructor{fn: v}

	switch {
	case t.NumIn() == 0:
	case t.NumIn() == 1 && t.In(0) == contextType:
		ctor.hasCtx = true
	default:
		return constructor{}, ErrBadConstructor
	}

	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		ctor.hasErr = true
	default:
		return constructor{}, ErrBadConstructor
	}

	ctor.target = typeid.OfType(t.Out(0)).Type()
	if ctor.target == nil || ctor.target.Kind() != reflect.Struct {
		return constructor{}, ErrBadConstructor
	}

	return ctor, nil
}

// call invokes the constructor and returns a pointer to the new target.
func (c constructor) call(ctx context.Context) (reflect.Value, error) {
	var args []reflect.Value
	if c.hasCtx {
		args = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
	}

	res := c.fn.Call(args)

	if c.hasErr && !res[1].IsNil() {
		return reflect.Value{}, res[1].Interface().(error) //nolint:forcetypeassert // checked by parseConstructor
	}

	out := res[0]
	if out.Kind() == reflect.Pointer {
		if out.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor returned nil %s", out.Type())
		}

		return out, nil
	}

	p := reflect.New(out.Type())
	p.Elem().Set(out)

	return p, nil
}
