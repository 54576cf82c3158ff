package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"caster-mapper/internal/mapping"
	"caster-mapper/internal/match"
	"caster-mapper/typeid"
)

// suggestionScore is the name similarity above which an unknown property
// gets a "did you mean" hint.
const suggestionScore = 0.7

type step struct {
	name  string
	index []int
	typ   reflect.Type
}

// accessor reads and writes one dotted property path of a struct type.
type accessor struct {
	path  string
	steps []step
}

// resolveAccessor checks path against root and records the field indexes.
// Intermediate segments may be structs or pointers to structs.
func resolveAccessor(in typeid.Introspector, root reflect.Type, path string) (accessor, error) {
	fp, err := mapping.ParsePath(path)
	if err != nil {
		return accessor{}, err
	}

	acc := accessor{path: path, steps: make([]step, 0, len(fp.Segments))}
	cur := root

	for _, seg := range fp.Segments {
		if seg.IsSlice {
			return accessor{}, fmt.Errorf("collection segment %q: map collections with ByRule", seg.Name+"[]")
		}

		owner := typeid.OfType(cur)
		if !owner.IsStruct() {
			return accessor{}, fmt.Errorf("%s is not a struct", cur)
		}

		prop, ok := in.Property(owner, seg.Name)
		if !ok {
			return accessor{}, unknownProperty(in, owner, seg.Name)
		}

		acc.steps = append(acc.steps, step{name: prop.Name, index: prop.Index, typ: prop.Type})
		cur = prop.Type
	}

	return acc, nil
}

func unknownProperty(in typeid.Introspector, owner typeid.TypeID, name string) error {
	msg := fmt.Sprintf("%s has no exported property %q", owner.Name(), name)

	best, bestScore := "", 0.0
	for _, candidate := range in.PropertyNames(owner) {
		if score := match.NameScore(name, candidate); score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if bestScore >= suggestionScore {
		msg += fmt.Sprintf(" (did you mean %q?)", best)
	}

	return errors.New(msg)
}

// Type returns the type of the addressed property.
func (a accessor) Type() reflect.Type {
	return a.steps[len(a.steps)-1].typ
}

// get reads the property from the struct value v. Reading through a nil
// intermediate pointer yields the zero value and false.
func (a accessor) get(v reflect.Value) (reflect.Value, bool) {
	for i, s := range a.steps {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Zero(a.Type()), false
			}

			v = v.Elem()
		}

		v = v.FieldByIndex(s.index)
	}

	return v, true
}

// field returns the settable property of the addressable struct value v,
// allocating nil intermediate pointers on the way.
func (a accessor) field(v reflect.Value) reflect.Value {
	for i, s := range a.steps {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.FieldByIndex(s.index)
	}

	return v
}

// set assigns val to the property. An invalid val assigns the zero value;
// numeric values convert to a numeric property of another kind.
func (a accessor) set(v reflect.Value, val reflect.Value) error {
	dst := a.field(v)

	if !val.IsValid() {
		dst.SetZero()

		return nil
	}

	// Values arriving through interfaces carry their dynamic type.
	if val.Kind() == reflect.Interface && !dst.Type().AssignableTo(val.Type()) {
		if val.IsNil() {
			dst.SetZero()

			return nil
		}

		val = val.Elem()
	}

	if !val.Type().AssignableTo(dst.Type()) {
		if !numeric(val.Kind()) || !numeric(dst.Kind()) {
			return fmt.Errorf("cannot assign %s to %s of type %s", val.Type(), a.path, dst.Type())
		}

		val = val.Convert(dst.Type())
	}

	dst.Set(val)

	return nil
}

// numeric reports whether k is an integer or floating-point kind.
func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// nestedShape records how a ByRule directive walks its source and builds
// its target.
type nestedShape struct {
	sequence   bool
	srcPointer bool
	dstPointer bool
	dstType    reflect.Type
}

// elementOf strips one sequence level and one pointer level from t.
func elementOf(t reflect.Type) (elem reflect.Type, sequence, pointer bool) {
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		sequence = true
		t = t.Elem()
	}

	if t.Kind() == reflect.Pointer {
		pointer = true
		t = t.Elem()
	}

	return t, sequence, pointer
}

// shapeFor checks that ref can bridge the source and target property types.
func shapeFor(ref RuleRef, src, dst reflect.Type) (nestedShape, error) {
	srcElem, srcSeq, srcPtr := elementOf(src)
	dstElem, dstSeq, dstPtr := elementOf(dst)

	if srcSeq != dstSeq {
		return nestedShape{}, fmt.Errorf("cannot map %s to %s with %s: sequence and single value mixed", src, dst, ref)
	}

	if dstSeq && dst.Kind() != reflect.Slice {
		return nestedShape{}, fmt.Errorf("target %s of sequence mapping must be a slice", dst)
	}

	if srcElem.Kind() != reflect.Struct || dstElem.Kind() != reflect.Struct {
		return nestedShape{}, fmt.Errorf("rule %s needs struct values, got %s and %s", ref, src, dst)
	}

	if typeid.OfType(srcElem) != ref.Key.Source || typeid.OfType(dstElem) != ref.Key.Target {
		return nestedShape{}, fmt.Errorf("rule %s does not map %s to %s", ref, srcElem, dstElem)
	}

	return nestedShape{sequence: srcSeq, srcPointer: srcPtr, dstPointer: dstPtr, dstType: dst}, nil
}
