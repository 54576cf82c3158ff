// Package skema adapts goskema schemas to mapper.Validator.
//
// A schema validates one Go type. Issues reported by the schema become
// mapper violations grouped by property, so a rejected target surfaces as
// *mapper.ValidationFailedError with one entry per offending field.
package skema

import (
	"context"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/goskema"

	"caster-mapper/mapper"
	"caster-mapper/typeid"
)

// ValueSchema is the part of goskema.Schema used for validation.
type ValueSchema[T any] interface {
	ValidateValue(ctx context.Context, v T) error
}

// Validator validates mapped values of type T.
type Validator[T any] struct {
	schema ValueSchema[T]
}

var (
	_ mapper.Validator = (*Validator[struct{}])(nil)
	_ mapper.Validator = (*Set)(nil)
)

// New returns a validator backed by schema.
func New[T any](schema ValueSchema[T]) *Validator[T] {
	return &Validator[T]{schema: schema}
}

// Type is the type validated by v.
func (v *Validator[T]) Type() typeid.TypeID {
	return typeid.Of[T]()
}

// Validate implements mapper.Validator. Values of other types pass.
func (v *Validator[T]) Validate(ctx context.Context, instance any) error {
	typed, ok := unwrap[T](instance)
	if !ok {
		return nil
	}

	err := v.schema.ValidateValue(ctx, typed)
	if err == nil {
		return nil
	}

	issues, ok := goskema.AsIssues(err)
	if !ok {
		return err
	}

	return &mapper.ValidationFailedError{Violations: Violations(issues)}
}

func unwrap[T any](instance any) (T, bool) {
	switch x := instance.(type) {
	case T:
		return x, true
	case *T:
		if x != nil {
			return *x, true
		}
	}

	var zero T

	return zero, false
}

// Violations groups issues by property. Issue codes become constraint names.
func Violations(issues goskema.Issues) []mapper.Violation {
	byProperty := make(map[string]*mapper.Violation)
	order := make([]string, 0, len(issues))

	for _, iss := range issues {
		prop := Property(iss.Path)

		v, ok := byProperty[prop]
		if !ok {
			v = &mapper.Violation{Property: prop, Constraints: make(map[string]string)}
			byProperty[prop] = v
			order = append(order, prop)
		}

		code := iss.Code
		if code == "" {
			code = goskema.CodeBusinessRule
		}

		if prev, dup := v.Constraints[code]; dup {
			v.Constraints[code] = prev + "; " + iss.Message
		} else {
			v.Constraints[code] = iss.Message
		}

		if got, ok := iss.Params["got"]; ok && v.Value == nil {
			v.Value = got
		}
	}

	sort.Strings(order)

	out := make([]mapper.Violation, 0, len(order))
	for _, prop := range order {
		out = append(out, *byProperty[prop])
	}

	return out
}

// Property converts a JSON pointer such as /items/2/price to items.2.price.
// The root pointer maps to an empty property.
func Property(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}

	parts := strings.Split(pointer, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}

	return strings.Join(parts, ".")
}

// Set dispatches to the validator registered for the instance type.
// Instances without a validator pass.
type Set struct {
	byType map[reflect.Type]mapper.Validator
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byType: make(map[reflect.Type]mapper.Validator)}
}

// Add registers schema for T on s, replacing any earlier one.
func Add[T any](s *Set, schema ValueSchema[T]) *Set {
	s.byType[reflect.TypeFor[T]()] = New(schema)

	return s
}

// Len returns the number of registered types.
func (s *Set) Len() int {
	return len(s.byType)
}

// Validate implements mapper.Validator.
func (s *Set) Validate(ctx context.Context, instance any) error {
	rt := reflect.TypeOf(instance)
	if rt == nil {
		return nil
	}

	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	v, ok := s.byType[rt]
	if !ok {
		return nil
	}

	return v.Validate(ctx, instance)
}
