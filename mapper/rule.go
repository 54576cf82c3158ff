package mapper

import (
	"context"
	"reflect"

	"caster-mapper/typeid"
)

//go:generate go tool stringer -type=DirectiveKind -trimprefix=Directive -output=directivekind_string.go
//go:generate go tool stringer -type=ConstructionMode -trimprefix=Mode -output=constructionmode_string.go

// DirectiveKind enumerates the per-property mapping instructions.
type DirectiveKind uint8

const (
	// DirectiveCopy assigns the source property unchanged.
	DirectiveCopy DirectiveKind = iota + 1
	// DirectiveTransform assigns the result of a function of the source property.
	DirectiveTransform
	// DirectiveFill assigns the result of a function of the whole source.
	DirectiveFill
	// DirectiveByRule assigns the result of applying another rule.
	DirectiveByRule
)

// ConstructionMode selects how a rule obtains a fresh target.
type ConstructionMode uint8

const (
	// ModeAllocate produces the zero value of the target type.
	ModeAllocate ConstructionMode = iota
	// ModeCallConstructor obtains the target from a constructor.
	ModeCallConstructor
)

// ValueFunc computes a target property from the selected source value.
// source and target are pointers to the rule's source and target structs.
// Returning ok=false leaves the target property untouched.
type ValueFunc func(ctx context.Context, value, source, target reflect.Value) (out reflect.Value, ok bool, err error)

// SupplyFunc computes a target property from the source struct alone.
type SupplyFunc func(ctx context.Context, source reflect.Value) (out reflect.Value, ok bool, err error)

// ConstructorFunc returns a pointer to a new target instance.
type ConstructorFunc func(ctx context.Context) (reflect.Value, error)

// Initializer is implemented by targets that prepare themselves when built in
// ModeCallConstructor without an explicit constructor.
type Initializer interface {
	Init() error
}

// RuleRef names a rule, registered or not yet registered.
type RuleRef struct {
	Key typeid.Key
}

// WithRule references the rule mapping S to T.
func WithRule[S, T any]() RuleRef {
	return RuleRef{Key: typeid.KeyOf[S, T]()}
}

// Ref references the rule registered under key.
func Ref(key typeid.Key) RuleRef {
	return RuleRef{Key: key}
}

func (r RuleRef) String() string {
	return r.Key.String()
}

// Directive is one per-property instruction of a rule.
type Directive struct {
	Kind   DirectiveKind
	Source string  // Source property path, empty for DirectiveFill
	Target string  // Target property path
	Ref    RuleRef // Rule applied by DirectiveByRule

	src    accessor
	dst    accessor
	value  ValueFunc
	supply SupplyFunc
	nested nestedShape
}

// Rule is the ordered set of directives for one (source, target) pair.
type Rule struct {
	Key        typeid.Key
	Directives []Directive
	Mode       ConstructionMode
	Profile    string // Profile that registered the rule

	constructor ConstructorFunc
	synthesized bool
}

// Synthesized reports whether the rule was built by the automatic fallback.
func (r *Rule) Synthesized() bool {
	return r.synthesized
}

// References returns the distinct rules referenced by ByRule directives, in
// declaration order.
func (r *Rule) References() []RuleRef {
	var refs []RuleRef

	seen := make(map[typeid.Key]struct{})

	for _, d := range r.Directives {
		if d.Kind != DirectiveByRule {
			continue
		}

		if _, ok := seen[d.Ref.Key]; ok {
			continue
		}

		seen[d.Ref.Key] = struct{}{}
		refs = append(refs, d.Ref)
	}

	return refs
}

func (r *Rule) String() string {
	return r.Key.String()
}
