package mapper

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

// SequencePolicy decides how a failing element affects a sequence mapping.
type SequencePolicy uint8

const (
	// FailFast aborts the call with the failure of the lowest failing index.
	FailFast SequencePolicy = iota
	// CollectErrors maps every element and reports all failures together.
	CollectErrors
)

// Option configures a Mapper.
type Option func(*Mapper)

// WithValidator validates every mapped top-level target with v.
func WithValidator(v Validator) Option {
	return func(m *Mapper) {
		m.validator = v
	}
}

// WithAutoMapFallback copies same-named assignable properties when no rule
// is registered for a pair.
func WithAutoMapFallback(enabled bool) Option {
	return func(m *Mapper) {
		m.fallback = enabled
	}
}

// DefaultFuzzyScore is the name similarity used by WithFuzzyNames when no
// positive score is given.
const DefaultFuzzyScore = 0.85

// WithFuzzyNames lets the fallback pair properties whose normalized names
// score at least minScore (OrderID and order_id score 1). It implies
// WithAutoMapFallback(true).
func WithFuzzyNames(minScore float64) Option {
	return func(m *Mapper) {
		if minScore <= 0 {
			minScore = DefaultFuzzyScore
		}

		m.fallback = true
		m.fuzzy = true
		m.minScore = minScore
	}
}

// WithConversions lets the fallback pair same-named properties whose types
// differ but convert within allowed (int32 to int64, string to time.Time and
// so on). It implies WithAutoMapFallback(true).
func WithConversions(allowed primitive.CategoryEnum) Option {
	return func(m *Mapper) {
		m.fallback = true
		m.conversions = allowed
	}
}

// WithConcurrency maps up to n sequence elements at once. Directives of one
// element still run in order. Values below 2 keep sequences sequential.
func WithConcurrency(n int) Option {
	return func(m *Mapper) {
		m.concurrency = n
	}
}

// WithSequencePolicy sets the sequence failure policy. The default is FailFast.
func WithSequencePolicy(p SequencePolicy) Option {
	return func(m *Mapper) {
		m.policy = p
	}
}

// Mapper executes rules from a Store. It is safe for concurrent use.
type Mapper struct {
	store       *Store
	validator   Validator
	fallback    bool
	fuzzy       bool
	minScore    float64
	conversions primitive.CategoryEnum
	concurrency int
	policy      SequencePolicy

	auto sync.Map // typeid.Key -> *Rule
}

// New returns a Mapper over store.
func New(store *Store, opts ...Option) *Mapper {
	m := &Mapper{store: store, concurrency: 1}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Store returns the mapper's rule store.
func (m *Mapper) Store() *Store {
	return m.store
}

// Map maps source to targetType. A slice or array of sourceType values
// yields a []T of the same length in the same order; a single value, or a
// pointer to one, yields a T.
//
// Under FailFast a failing element aborts the call and the error is an
// *ElementError carrying its index. Under CollectErrors the returned slice
// holds zero values at failed positions and the error is a *SequenceError.
func (m *Mapper) Map(ctx context.Context, source any, sourceType, targetType typeid.TypeID) (any, error) {
	key := typeid.NewKey(sourceType, targetType)
	rv := reflect.ValueOf(source)

	if isSequence(rv, sourceType) {
		out, err := m.runSequence(ctx, rv, key)
		if out == nil {
			return nil, err
		}

		slice := reflect.MakeSlice(reflect.SliceOf(targetType.Type()), len(out), len(out))
		for i, p := range out {
			if p.IsValid() {
				slice.Index(i).Set(p.Elem())
			}
		}

		return slice.Interface(), err
	}

	p, err := m.runOne(ctx, rv, key)
	if err != nil {
		return nil, err
	}

	return p.Elem().Interface(), nil
}

// AutoMap maps source to target, taking the source type from the value.
// Slices and arrays are mapped element-wise by their element type.
func (m *Mapper) AutoMap(ctx context.Context, source any, target typeid.TypeID) (any, error) {
	sourceType, err := inferSource(source)
	if err != nil {
		return nil, err
	}

	return m.Map(ctx, source, sourceType, target)
}

// MapTo maps a single S to T. T may be a struct or a pointer to one.
func MapTo[S, T any](ctx context.Context, m *Mapper, src S) (T, error) {
	p, err := m.runOne(ctx, reflect.ValueOf(src), typeid.KeyOf[S, T]())
	if err != nil {
		var zero T

		return zero, err
	}

	return cast[T](p), nil
}

// MapSlice maps every element of src to T, preserving order.
func MapSlice[S, T any](ctx context.Context, m *Mapper, src []S) ([]T, error) {
	out, err := m.runSequence(ctx, reflect.ValueOf(src), typeid.KeyOf[S, T]())
	if out == nil {
		return nil, err
	}

	res := make([]T, len(out))
	for i, p := range out {
		res[i] = cast[T](p)
	}

	return res, err
}

// AutoMap maps source to T, taking the source type from the value.
func AutoMap[T any](ctx context.Context, m *Mapper, source any) (T, error) {
	var zero T

	sourceType, err := inferSource(source)
	if err != nil {
		return zero, err
	}

	p, err := m.runOne(ctx, reflect.ValueOf(source), typeid.NewKey(sourceType, typeid.Of[T]()))
	if err != nil {
		return zero, err
	}

	return cast[T](p), nil
}

// cast converts a pointer to a mapped target into T, which is either the
// target type or a pointer to it. An invalid p yields the zero T.
func cast[T any](p reflect.Value) T {
	var zero T

	if !p.IsValid() {
		return zero
	}

	if p.Type() == reflect.TypeFor[T]() {
		return p.Interface().(T)
	}

	return p.Elem().Interface().(T)
}

func inferSource(source any) (typeid.TypeID, error) {
	rv := reflect.ValueOf(source)
	if !rv.IsValid() {
		return typeid.TypeID{}, fmt.Errorf("%w: nil source", ErrUnsupportedSource)
	}

	t := rv.Type()
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}

	id := typeid.OfType(t)
	if id.Kind() == reflect.Interface {
		return typeid.TypeID{}, fmt.Errorf("%w: cannot infer the element type of %s", ErrUnsupportedSource, rv.Type())
	}

	return id, nil
}

// isSequence reports whether rv holds several sourceType values.
func isSequence(rv reflect.Value, sourceType typeid.TypeID) bool {
	if !rv.IsValid() {
		return false
	}

	k := rv.Kind()

	return (k == reflect.Slice || k == reflect.Array) && typeid.OfType(rv.Type()) != sourceType
}

func (m *Mapper) runOne(ctx context.Context, rv reflect.Value, key typeid.Key) (reflect.Value, error) {
	start := time.Now()
	emitMapStarted(ctx, key.String(), 1)

	p, err := m.mapOne(ctx, rv, key)

	emitMapCompleted(ctx, key.String(), 1, time.Since(start), err)

	return p, err
}

func (m *Mapper) mapOne(ctx context.Context, rv reflect.Value, key typeid.Key) (reflect.Value, error) {
	rule, err := m.resolve(ctx, key)
	if err != nil {
		return reflect.Value{}, err
	}

	return m.mapWithRule(ctx, rv, rule)
}

// resolve finds the rule for key, synthesizing one when the fallback is on.
func (m *Mapper) resolve(ctx context.Context, key typeid.Key) (*Rule, error) {
	if rule, ok := m.store.ResolveKey(key); ok {
		return rule, nil
	}

	if m.fallback {
		if rule, ok := m.autoRule(ctx, key); ok {
			return rule, nil
		}
	}

	return nil, &RuleNotFoundError{Key: key}
}

// mapWithRule maps one source value with rule and validates the result.
func (m *Mapper) mapWithRule(ctx context.Context, rv reflect.Value, rule *Rule) (reflect.Value, error) {
	src, err := sourcePointer(rv, rule.Key.Source)
	if err != nil {
		return reflect.Value{}, err
	}

	dst, err := m.apply(ctx, rule, src)
	if err != nil {
		return reflect.Value{}, err
	}

	if err := m.validate(ctx, rule.Key.Target, dst.Elem().Interface()); err != nil {
		return reflect.Value{}, err
	}

	return dst, nil
}

// sourcePointer returns a non-nil pointer to the want value held by rv.
func sourcePointer(rv reflect.Value, want typeid.TypeID) (reflect.Value, error) {
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: nil source", ErrUnsupportedSource)
	}

	for rv.Kind() == reflect.Interface || (rv.Kind() == reflect.Pointer && rv.Type().Elem().Kind() == reflect.Pointer) {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil source", ErrUnsupportedSource)
		}

		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil source", ErrUnsupportedSource)
		}

		if rv.Type().Elem() != want.Type() {
			return reflect.Value{}, fmt.Errorf("%w: got %s, want %s", ErrUnsupportedSource, rv.Type(), want)
		}

		return rv, nil
	}

	if rv.Type() != want.Type() {
		return reflect.Value{}, fmt.Errorf("%w: got %s, want %s", ErrUnsupportedSource, rv.Type(), want)
	}

	return pointerTo(rv), nil
}

// pointerTo returns a pointer to v, copying v when it is not addressable.
func pointerTo(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}

	p := reflect.New(v.Type())
	p.Elem().Set(v)

	return p
}

// apply constructs a target and runs the rule's directives on it in
// declaration order. src is a pointer to the source struct.
func (m *Mapper) apply(ctx context.Context, rule *Rule, src reflect.Value) (reflect.Value, error) {
	dst, err := m.construct(ctx, rule)
	if err != nil {
		return reflect.Value{}, err
	}

	sv, dv := src.Elem(), dst.Elem()

	for i := range rule.Directives {
		if err := m.applyDirective(ctx, rule, &rule.Directives[i], src, sv, dst, dv); err != nil {
			return reflect.Value{}, err
		}
	}

	return dst, nil
}

func (m *Mapper) applyDirective(ctx context.Context, rule *Rule, d *Directive, src, sv, dst, dv reflect.Value) error {
	var (
		out reflect.Value
		ok  bool
		err error
	)

	switch d.Kind {
	case DirectiveCopy:
		out, _ = d.src.get(sv)
		ok = true
	case DirectiveTransform:
		value, _ := d.src.get(sv)
		out, ok, err = d.value(ctx, value, src, dst)
	case DirectiveFill:
		out, ok, err = d.supply(ctx, src)
	case DirectiveByRule:
		return m.applyNested(ctx, rule, d, sv, dv)
	default:
		return newDirectiveError(rule.Key, d.Target, "unknown directive kind %s", d.Kind)
	}

	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	if err := d.dst.set(dv, out); err != nil {
		return &DirectiveError{Key: rule.Key, Property: d.Target, Cause: err}
	}

	return nil
}

// applyNested runs a ByRule directive. Nil pointers and nil slices in the
// source reset the target property to its zero value.
func (m *Mapper) applyNested(ctx context.Context, rule *Rule, d *Directive, sv, dv reflect.Value) error {
	nested, found := m.store.ResolveKey(d.Ref.Key)
	if !found {
		return &UnresolvedRuleError{Key: rule.Key, Ref: d.Ref.Key, Property: d.Target}
	}

	v, ok := d.src.get(sv)
	if !ok {
		return m.setNested(rule, d, dv, reflect.Value{})
	}

	shape := d.nested

	if !shape.sequence {
		p, mapped, err := m.applyElement(ctx, nested, shape, v)
		if err != nil {
			return err
		}

		if !mapped {
			p = reflect.Value{}
		}

		return m.setNested(rule, d, dv, p)
	}

	if v.Kind() == reflect.Slice && v.IsNil() {
		return m.setNested(rule, d, dv, reflect.Value{})
	}

	n := v.Len()
	out := reflect.MakeSlice(shape.dstType, n, n)

	for i := range n {
		p, mapped, err := m.applyElement(ctx, nested, shape, v.Index(i))
		if err != nil {
			return err
		}

		if mapped {
			out.Index(i).Set(p)
		}
	}

	return m.setNested(rule, d, dv, out)
}

func (m *Mapper) setNested(rule *Rule, d *Directive, dv, val reflect.Value) error {
	if err := d.dst.set(dv, val); err != nil {
		return &DirectiveError{Key: rule.Key, Property: d.Target, Cause: err}
	}

	return nil
}

// applyElement maps one nested value and shapes the result for the target
// element type. A nil source pointer maps to nothing.
func (m *Mapper) applyElement(ctx context.Context, rule *Rule, shape nestedShape, v reflect.Value) (reflect.Value, bool, error) {
	var src reflect.Value

	if shape.srcPointer {
		if v.IsNil() {
			return reflect.Value{}, false, nil
		}

		src = v
	} else {
		src = pointerTo(v)
	}

	p, err := m.apply(ctx, rule, src)
	if err != nil {
		return reflect.Value{}, false, err
	}

	if shape.dstPointer {
		return p, true, nil
	}

	return p.Elem(), true, nil
}
