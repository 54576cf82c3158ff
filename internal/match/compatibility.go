package match

import (
	"reflect"

	"caster-mapper/internal/common"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be converted.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsTransform means conversion requires a transform or a nested rule.
	TypeNeedsTransform
	// TypeConvertible means types are convertible using Go's type conversion.
	TypeConvertible
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical      = "identical"
	VerdictAssignable     = "assignable"
	VerdictConvertible    = "convertible"
	VerdictNeedsTransform = "needs_transform"
	VerdictIncompatible   = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsTransform:
		return VerdictNeedsTransform
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// Copyable reports whether a value can be copied as-is, without coercion.
func (c TypeCompatibility) Copyable() bool {
	return c >= TypeAssignable
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string // String representation of source type
	TargetType    string // String representation of target type
}

func newResult(c TypeCompatibility, reason string, source, target reflect.Type) TypeCompatibilityResult {
	return TypeCompatibilityResult{
		Compatibility: c,
		Reason:        reason,
		SourceType:    typeString(source),
		TargetType:    typeString(target),
	}
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// ScoreTypeCompatibility determines the compatibility between a source and
// target type.
func ScoreTypeCompatibility(source, target reflect.Type) TypeCompatibilityResult {
	if source == nil || target == nil {
		return newResult(TypeIncompatible, "type information unavailable", source, target)
	}

	if source == target {
		return newResult(TypeIdentical, "types are identical", source, target)
	}

	if source.AssignableTo(target) {
		return newResult(TypeAssignable, "source is assignable to target", source, target)
	}

	if source.ConvertibleTo(target) {
		return newResult(TypeConvertible, "source is convertible to target", source, target)
	}

	if needsTransform(source, target) {
		return newResult(TypeNeedsTransform, "types require a transform function", source, target)
	}

	return newResult(TypeIncompatible, "types are not compatible", source, target)
}

// needsTransform checks for cases where types might be bridged by a transform
// or a nested rule.
func needsTransform(source, target reflect.Type) bool {
	sourceIsPtr := source.Kind() == reflect.Pointer
	targetIsPtr := target.Kind() == reflect.Pointer

	// *T -> T (dereference possible if not nil)
	if sourceIsPtr && !targetIsPtr && source.Elem().ConvertibleTo(target) {
		return true
	}

	// T -> *T (take address)
	if !sourceIsPtr && targetIsPtr && source.ConvertibleTo(target.Elem()) {
		return true
	}

	if isSequence(source) && isSequence(target) {
		elem := ScoreTypeCompatibility(source.Elem(), target.Elem())

		return elem.Compatibility >= TypeNeedsTransform
	}

	return structLike(source) && structLike(target)
}

func isSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func structLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct
}

// ScorePointerCompatibility checks compatibility considering pointer wrapping/unwrapping.
func ScorePointerCompatibility(source, target reflect.Type) TypeCompatibilityResult {
	result := ScoreTypeCompatibility(source, target)
	if result.Compatibility >= TypeConvertible || source == nil || target == nil {
		return result
	}

	if source.Kind() == reflect.Pointer {
		inner := ScoreTypeCompatibility(source.Elem(), target)
		if inner.Compatibility >= TypeConvertible {
			return newResult(TypeNeedsTransform, "requires pointer dereference", source, target)
		}
	}

	if target.Kind() == reflect.Pointer {
		inner := ScoreTypeCompatibility(source, target.Elem())
		if inner.Compatibility >= TypeConvertible {
			return newResult(TypeNeedsTransform, "requires taking address", source, target)
		}
	}

	return result
}
