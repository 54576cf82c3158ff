package mapper

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

// ProfileMapper is the registration session handed to Profile.Define.
// It collects rules and registration errors; the store commits them when
// every profile has been defined.
type ProfileMapper struct {
	introspector typeid.Introspector
	policy       DuplicatePolicy
	profile      string
	closed       bool

	rules    []*Rule
	byKey    map[typeid.Key]int
	replaced []*Rule
	errs     []error
}

func newProfileMapper(in typeid.Introspector, policy DuplicatePolicy) *ProfileMapper {
	return &ProfileMapper{
		introspector: in,
		policy:       policy,
		byKey:        make(map[typeid.Key]int),
	}
}

// Profile returns the name of the profile being defined.
func (pm *ProfileMapper) Profile() string {
	return pm.profile
}

// Introspector returns the property introspector used to check paths.
func (pm *ProfileMapper) Introspector() typeid.Introspector {
	return pm.introspector
}

// Err returns every error recorded so far, joined.
func (pm *ProfileMapper) Err() error {
	return errors.Join(pm.errs...)
}

func (pm *ProfileMapper) fail(err error) {
	pm.errs = append(pm.errs, err)
}

func (pm *ProfileMapper) close() {
	pm.closed = true
}

// AddDynamicRule begins a rule for a pair known only at run time.
func (pm *ProfileMapper) AddDynamicRule(source, target typeid.TypeID) *DynamicBuilder {
	key := typeid.NewKey(source, target)
	rule := &Rule{Key: key, Profile: pm.profile}
	b := &DynamicBuilder{pm: pm, rule: rule}

	if pm.closed {
		pm.fail(ErrRegistrationClosed)
		b.rule = nil

		return b
	}

	if !source.IsStruct() || !target.IsStruct() {
		pm.fail(newDirectiveError(key, "", "rule endpoints must be structs"))
		b.rule = nil

		return b
	}

	if i, ok := pm.byKey[key]; ok {
		if pm.policy == RejectDuplicates {
			pm.fail(&DuplicateRuleError{Key: key, Profile: pm.profile})
			b.rule = nil

			return b
		}

		pm.rules[i] = rule
		pm.replaced = append(pm.replaced, rule)

		return b
	}

	pm.byKey[key] = len(pm.rules)
	pm.rules = append(pm.rules, rule)

	return b
}

// DynamicBuilder appends directives to a rule whose types are only known
// at run time. Every method returns the builder for chaining; problems are
// recorded in the session and surface from Store.CollectFromProfiles.
type DynamicBuilder struct {
	pm   *ProfileMapper
	rule *Rule
}

// Key returns the pair the rule is registered under.
func (b *DynamicBuilder) Key() typeid.Key {
	if b.rule == nil {
		return typeid.Key{}
	}

	return b.rule.Key
}

func (b *DynamicBuilder) usable() bool {
	if b.rule == nil {
		return false
	}

	if b.pm.closed {
		b.pm.fail(ErrRegistrationClosed)

		return false
	}

	return true
}

func (b *DynamicBuilder) sourceType() reflect.Type { return b.rule.Key.Source.Type() }
func (b *DynamicBuilder) targetType() reflect.Type { return b.rule.Key.Target.Type() }

func (b *DynamicBuilder) paths(src, dst string) (accessor, accessor, bool) {
	in := b.pm.introspector

	var srcAcc accessor

	if src != "" {
		acc, err := resolveAccessor(in, b.sourceType(), src)
		if err != nil {
			b.pm.fail(&DirectiveError{Key: b.rule.Key, Property: src, Cause: err})

			return accessor{}, accessor{}, false
		}

		srcAcc = acc
	}

	dstAcc, err := resolveAccessor(in, b.targetType(), dst)
	if err != nil {
		b.pm.fail(&DirectiveError{Key: b.rule.Key, Property: dst, Cause: err})

		return accessor{}, accessor{}, false
	}

	return srcAcc, dstAcc, true
}

func (b *DynamicBuilder) add(d Directive) *DynamicBuilder {
	b.rule.Directives = append(b.rule.Directives, d)

	return b
}

// Property copies src into dst. The source type must be assignable to the
// target type.
func (b *DynamicBuilder) Property(src, dst string) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	srcAcc, dstAcc, ok := b.paths(src, dst)
	if !ok {
		return b
	}

	if !srcAcc.Type().AssignableTo(dstAcc.Type()) {
		b.pm.fail(newDirectiveError(b.rule.Key, dst,
			"cannot copy %s (%s) to %s (%s): add a transform", src, srcAcc.Type(), dst, dstAcc.Type()))

		return b
	}

	return b.add(Directive{Kind: DirectiveCopy, Source: src, Target: dst, src: srcAcc, dst: dstAcc})
}

// PropertyFunc assigns fn applied to src into dst.
func (b *DynamicBuilder) PropertyFunc(src, dst string, fn ValueFunc) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	if fn == nil {
		b.pm.fail(newDirectiveError(b.rule.Key, dst, "nil transform"))

		return b
	}

	srcAcc, dstAcc, ok := b.paths(src, dst)
	if !ok {
		return b
	}

	return b.add(Directive{Kind: DirectiveTransform, Source: src, Target: dst, src: srcAcc, dst: dstAcc, value: fn})
}

// PropertyConvert copies src into dst, converting the value with the
// primitive conversions in allowed when the types differ.
func (b *DynamicBuilder) PropertyConvert(src, dst string, allowed primitive.CategoryEnum) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	srcAcc, dstAcc, ok := b.paths(src, dst)
	if !ok {
		return b
	}

	if srcAcc.Type().AssignableTo(dstAcc.Type()) {
		return b.add(Directive{Kind: DirectiveCopy, Source: src, Target: dst, src: srcAcc, dst: dstAcc})
	}

	if !primitive.Allowed(srcAcc.Type(), dstAcc.Type(), allowed) {
		b.pm.fail(newDirectiveError(b.rule.Key, dst,
			"cannot convert %s (%s) to %s (%s) with %s", src, srcAcc.Type(), dst, dstAcc.Type(), allowed))

		return b
	}

	return b.add(Directive{
		Kind: DirectiveTransform, Source: src, Target: dst,
		src: srcAcc, dst: dstAcc, value: convertValue(dstAcc.Type(), allowed),
	})
}

// Properties copies each named property to the property of the same name.
func (b *DynamicBuilder) Properties(names ...string) *DynamicBuilder {
	for _, name := range names {
		b.Property(name, name)
	}

	return b
}

// AllProperties copies every source property that the target declares with
// an assignable type, in source declaration order, skipping except.
func (b *DynamicBuilder) AllProperties(except ...string) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	skip := make(map[string]struct{}, len(except))
	for _, name := range except {
		skip[name] = struct{}{}
	}

	in := b.pm.introspector

	for _, name := range in.PropertyNames(b.rule.Key.Source) {
		if _, ok := skip[name]; ok {
			continue
		}

		sp, _ := in.Property(b.rule.Key.Source, name)

		tp, ok := in.Property(b.rule.Key.Target, name)
		if !ok || !sp.Type.AssignableTo(tp.Type) {
			continue
		}

		b.Property(name, name)
	}

	return b
}

// Fill assigns the result of fn to dst.
func (b *DynamicBuilder) Fill(dst string, fn SupplyFunc) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	if fn == nil {
		b.pm.fail(newDirectiveError(b.rule.Key, dst, "nil supplier"))

		return b
	}

	_, dstAcc, ok := b.paths("", dst)
	if !ok {
		return b
	}

	return b.add(Directive{Kind: DirectiveFill, Target: dst, dst: dstAcc, supply: fn})
}

// ByRule maps src with the referenced rule and assigns the result to dst.
// A sequence source produces a slice of the same length.
func (b *DynamicBuilder) ByRule(src, dst string, ref RuleRef) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	srcAcc, dstAcc, ok := b.paths(src, dst)
	if !ok {
		return b
	}

	shape, err := shapeFor(ref, srcAcc.Type(), dstAcc.Type())
	if err != nil {
		b.pm.fail(&DirectiveError{Key: b.rule.Key, Property: dst, Cause: err})

		return b
	}

	return b.add(Directive{Kind: DirectiveByRule, Source: src, Target: dst, Ref: ref, src: srcAcc, dst: dstAcc, nested: shape})
}

// CallConstructor switches the rule to ModeCallConstructor. With a nil fn
// the target must implement Initializer on its pointer.
func (b *DynamicBuilder) CallConstructor(fn ConstructorFunc) *DynamicBuilder {
	if !b.usable() {
		return b
	}

	b.rule.Mode = ModeCallConstructor
	b.rule.constructor = fn

	return b
}

// RuleBuilder is the typed registration API for the rule mapping S to T.
type RuleBuilder[S, T any] struct {
	dyn *DynamicBuilder
}

// TransformFunc computes a target property from the source property value.
type TransformFunc[S, T any] func(ctx context.Context, value any, source *S, target *T) (any, error)

// FillFunc computes a target property from the source instance.
type FillFunc[S any] func(ctx context.Context, source *S) (any, error)

// AddRule begins the rule mapping S to T. S and T must be struct types.
func AddRule[S, T any](pm *ProfileMapper) *RuleBuilder[S, T] {
	if reflect.TypeFor[S]().Kind() == reflect.Pointer || reflect.TypeFor[T]().Kind() == reflect.Pointer {
		key := typeid.KeyOf[S, T]()
		pm.fail(newDirectiveError(key, "", "rule type parameters must not be pointers"))

		return &RuleBuilder[S, T]{dyn: &DynamicBuilder{pm: pm}}
	}

	return &RuleBuilder[S, T]{dyn: pm.AddDynamicRule(typeid.Of[S](), typeid.Of[T]())}
}

// Key returns the pair the rule is registered under.
func (b *RuleBuilder[S, T]) Key() typeid.Key {
	return b.dyn.Key()
}

// Property copies src into dst, or assigns transform(src) when a transform
// is given.
func (b *RuleBuilder[S, T]) Property(src, dst string, transform ...TransformFunc[S, T]) *RuleBuilder[S, T] {
	switch len(transform) {
	case 0:
		b.dyn.Property(src, dst)
	case 1:
		b.dyn.PropertyFunc(src, dst, transformValue(transform[0]))
	default:
		if b.dyn.rule != nil {
			b.dyn.pm.fail(newDirectiveError(b.dyn.rule.Key, dst, "at most one transform per property"))
		}
	}

	return b
}

// Convert copies src into dst through the primitive conversions in allowed.
func (b *RuleBuilder[S, T]) Convert(src, dst string, allowed primitive.CategoryEnum) *RuleBuilder[S, T] {
	b.dyn.PropertyConvert(src, dst, allowed)

	return b
}

// Properties copies each named property to the property of the same name.
func (b *RuleBuilder[S, T]) Properties(names ...string) *RuleBuilder[S, T] {
	b.dyn.Properties(names...)

	return b
}

// AllProperties copies every same-named, assignable property except the
// listed ones.
func (b *RuleBuilder[S, T]) AllProperties(except ...string) *RuleBuilder[S, T] {
	b.dyn.AllProperties(except...)

	return b
}

// Fill assigns supplier(source) to dst.
func (b *RuleBuilder[S, T]) Fill(dst string, supplier FillFunc[S]) *RuleBuilder[S, T] {
	if supplier == nil {
		b.dyn.Fill(dst, nil)

		return b
	}

	b.dyn.Fill(dst, func(ctx context.Context, source reflect.Value) (reflect.Value, bool, error) {
		out, err := supplier(ctx, source.Interface().(*S))
		if err != nil {
			return reflect.Value{}, false, err
		}

		return reflect.ValueOf(out), true, nil
	})

	return b
}

// ByRule maps src with ref and assigns the result to dst.
func (b *RuleBuilder[S, T]) ByRule(src, dst string, ref RuleRef) *RuleBuilder[S, T] {
	b.dyn.ByRule(src, dst, ref)

	return b
}

// CallConstructor builds targets with ctor, or through Initializer when no
// ctor is given.
func (b *RuleBuilder[S, T]) CallConstructor(ctor ...func() (T, error)) *RuleBuilder[S, T] {
	if len(ctor) == 0 || ctor[0] == nil {
		b.dyn.CallConstructor(nil)

		return b
	}

	fn := ctor[0]
	b.dyn.CallConstructor(func(context.Context) (reflect.Value, error) {
		v, err := fn()
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(&v), nil
	})

	return b
}

func convertValue(to reflect.Type, allowed primitive.CategoryEnum) ValueFunc {
	return func(_ context.Context, value, _, _ reflect.Value) (reflect.Value, bool, error) {
		out, err := primitive.Convert(value, to, allowed)
		if err != nil {
			return reflect.Value{}, false, err
		}

		return out, true, nil
	}
}

func transformValue[S, T any](fn TransformFunc[S, T]) ValueFunc {
	if fn == nil {
		return nil
	}

	return func(ctx context.Context, value, source, target reflect.Value) (reflect.Value, bool, error) {
		var in any
		if value.IsValid() {
			in = value.Interface()
		}

		out, err := fn(ctx, in, source.Interface().(*S), target.Interface().(*T))
		if err != nil {
			return reflect.Value{}, false, err
		}

		return reflect.ValueOf(out), true, nil
	}
}

// Transform adapts a typed function to TransformFunc. A value that is not a
// V fails the mapping call.
func Transform[S, T, V, R any](fn func(ctx context.Context, value V, source *S, target *T) (R, error)) TransformFunc[S, T] {
	return func(ctx context.Context, value any, source *S, target *T) (any, error) {
		var v V

		if value != nil {
			typed, ok := value.(V)
			if !ok {
				return nil, fmt.Errorf("mapper: transform expects %s, got %T", reflect.TypeFor[V](), value)
			}

			v = typed
		}

		return fn(ctx, v, source, target)
	}
}

// Supply adapts a typed function to FillFunc.
func Supply[S, R any](fn func(ctx context.Context, source *S) (R, error)) FillFunc[S] {
	return func(ctx context.Context, source *S) (any, error) {
		return fn(ctx, source)
	}
}

// Const returns a transform that ignores its input and yields v.
func Const[S, T any](v any) TransformFunc[S, T] {
	return func(context.Context, any, *S, *T) (any, error) {
		return v, nil
	}
}

// Value returns a supplier that always yields v.
func Value[S any](v any) FillFunc[S] {
	return func(context.Context, *S) (any, error) {
		return v, nil
	}
}
