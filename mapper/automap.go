package mapper

import (
	"context"
	"reflect"

	"caster-mapper/internal/match"
	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

// autoProfile is the profile name of rules built by the fallback.
const autoProfile = "automap"

// autoRule returns the fallback rule for key, building it on first use.
// Only struct pairs have a fallback.
func (m *Mapper) autoRule(ctx context.Context, key typeid.Key) (*Rule, bool) {
	if r, ok := m.auto.Load(key); ok {
		return r.(*Rule), true
	}

	if !key.Source.IsStruct() || !key.Target.IsStruct() {
		return nil, false
	}

	rule := m.synthesize(key)

	actual, loaded := m.auto.LoadOrStore(key, rule)
	if !loaded {
		fields := make([]string, 0, len(rule.Directives))
		for _, d := range rule.Directives {
			fields = append(fields, d.Source+"="+d.Target)
		}

		emitAutoMapped(ctx, key.String(), fields)
	}

	return actual.(*Rule), true
}

// synthesize builds a rule of shallow Copy directives, one per target
// property that has an assignable source counterpart. With conversions
// enabled a convertible counterpart yields a Transform directive instead.
// Properties tagged `mapper:"-"` on either side are left alone.
func (m *Mapper) synthesize(key typeid.Key) *Rule {
	in := m.store.Introspector()
	rule := &Rule{Key: key, Profile: autoProfile, synthesized: true}

	sources := make([]match.Field, 0)
	props := make(map[string]typeid.Property)

	for _, name := range in.PropertyNames(key.Source) {
		p, ok := in.Property(key.Source, name)
		if !ok || p.Skipped() {
			continue
		}

		sources = append(sources, match.Field{Name: p.Name, Type: p.Type})
		props[p.Name] = p
	}

	for _, name := range in.PropertyNames(key.Target) {
		tp, ok := in.Property(key.Target, name)
		if !ok || tp.Skipped() {
			continue
		}

		srcName, ok := m.pickSource(tp, sources, props)
		if !ok {
			continue
		}

		sp := props[srcName]
		d := Directive{
			Kind:   DirectiveCopy,
			Source: sp.Name,
			Target: tp.Name,
			src:    accessor{path: sp.Name, steps: []step{{name: sp.Name, index: sp.Index, typ: sp.Type}}},
			dst:    accessor{path: tp.Name, steps: []step{{name: tp.Name, index: tp.Index, typ: tp.Type}}},
		}

		if !sp.Type.AssignableTo(tp.Type) {
			d.Kind = DirectiveTransform
			d.value = convertValue(tp.Type, m.conversions)
		}

		rule.Directives = append(rule.Directives, d)
	}

	return rule
}

// fits reports whether a src value can be stored in a dst property.
func (m *Mapper) fits(src, dst reflect.Type) bool {
	if src.AssignableTo(dst) {
		return true
	}

	return m.conversions != primitive.CategoryNone && primitive.Allowed(src, dst, m.conversions)
}

// pickSource selects the source property for target: the same name when
// it fits, otherwise, with fuzzy names on, the single best fitting
// candidate scoring at least minScore.
func (m *Mapper) pickSource(target typeid.Property, sources []match.Field, props map[string]typeid.Property) (string, bool) {
	if sp, ok := props[target.Name]; ok && m.fits(sp.Type, target.Type) {
		return sp.Name, true
	}

	if !m.fuzzy {
		return "", false
	}

	var eligible match.CandidateList

	candidates := match.RankCandidates(match.Field{Name: target.Name, Type: target.Type}, sources)
	if m.conversions == primitive.CategoryNone {
		candidates = candidates.Copyable()
	}

	for _, c := range candidates {
		if c.NameScore >= m.minScore && m.fits(c.Source.Type, target.Type) {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 || eligible.IsAmbiguous(match.DefaultAmbiguityThreshold) {
		return "", false
	}

	return eligible.Best().Source.Name, true
}
