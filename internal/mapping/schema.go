package mapping

import (
	"fmt"
	"strings"

	"caster-mapper/internal/common"
)

// DefaultVersion is the schema version assumed when a file omits it.
const DefaultVersion = "1"

// MappingFile represents the root of a mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// TypeMappings is a list of type pair mappings, one rule each.
	TypeMappings []TypeMapping `yaml:"mappings" json:"mappings"`

	// Transforms declares the named functions the mappings refer to.
	Transforms []TransformDef `yaml:"transforms,omitempty" json:"transforms,omitempty"`
}

// ConstructMode selects how a rule obtains its target.
type ConstructMode string

const (
	// ConstructAllocate starts from the zero value of the target type.
	ConstructAllocate ConstructMode = "allocate"
	// ConstructConstructor calls a named constructor or the target's Init method.
	ConstructConstructor ConstructMode = "constructor"
)

// IsValid returns true if the mode is empty or a recognized value.
func (c ConstructMode) IsValid() bool {
	return c == "" || c == ConstructAllocate || c == ConstructConstructor
}

// TypeMapping defines how to map one source type to one target type.
//
// Directives are produced in priority order, lowest first, so that later
// entries overwrite earlier ones:
//  1. auto: every same-named property not listed in ignore
//  2. 121 shorthand, ordered by source name
//  3. properties shorthand
//  4. fields, in file order
type TypeMapping struct {
	// Source type identifier (e.g., "cats.Cat" or full path).
	Source string `yaml:"source" json:"source"`

	// Target type identifier (e.g., "cats.CatDto" or full path).
	Target string `yaml:"target" json:"target"`

	// Construct selects the construction mode. Empty means allocate.
	Construct ConstructMode `yaml:"construct,omitempty" json:"construct,omitempty"`

	// Constructor names a catalog constructor for ConstructConstructor.
	// Empty means the target's Init method.
	Constructor string `yaml:"constructor,omitempty" json:"constructor,omitempty"`

	// Auto copies every same-named assignable property first.
	Auto bool `yaml:"auto,omitempty" json:"auto,omitempty"`

	// OneToOne is a simplified mapping syntax where keys are source fields
	// and values are target fields.
	// Example: { "OrderID": "ID", "CustomerName": "Customer" }
	OneToOne map[string]string `yaml:"121,omitempty" json:"121,omitempty"`

	// Properties copies each listed property to the property of the same name.
	Properties StringOrArray `yaml:"properties,omitempty" json:"properties,omitempty"`

	// Fields defines explicit field mappings with full control.
	Fields []FieldMapping `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Ignore lists target fields that auto must leave alone.
	Ignore StringOrArray `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// TypePair returns the "Source->Target" notation of the mapping.
func (tm *TypeMapping) TypePair() string {
	return tm.Source + "->" + tm.Target
}

// FieldMapping defines how target field(s) are populated.
//
//   - source only: copy
//   - source and transform: transform of the source property
//   - transform only: transform of the whole source
//   - default: literal converted to the target property type
//   - source and rule: nested mapping with another rule
type FieldMapping struct {
	// Target is the target field path(s). Several targets receive the same value.
	Target StringOrArray `yaml:"target" json:"target"`

	// Source is the source field path.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Transform is the name of a transform function to apply.
	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`

	// Default is a literal value to assign.
	Default *string `yaml:"default,omitempty" json:"default,omitempty"`

	// Rule is the "Source->Target" pair of the rule applied to Source.
	Rule string `yaml:"rule,omitempty" json:"rule,omitempty"`
}

// FieldKind classifies a field mapping by the directive it produces.
type FieldKind int

const (
	FieldInvalid   FieldKind = iota // conflicting or empty options
	FieldCopy                       // source
	FieldTransform                  // source + transform
	FieldSupply                     // transform without source
	FieldDefault                    // default
	FieldByRule                     // source + rule
)

// String returns a human-readable name of the kind.
func (k FieldKind) String() string {
	switch k {
	case FieldInvalid:
		return "invalid"
	case FieldCopy:
		return "copy"
	case FieldTransform:
		return "transform"
	case FieldSupply:
		return "supply"
	case FieldDefault:
		return "default"
	case FieldByRule:
		return "rule"
	default:
		return common.UnknownStr
	}
}

// Kind returns the directive kind described by the mapping's options.
func (fm *FieldMapping) Kind() FieldKind {
	hasSource := fm.Source != ""
	hasTransform := fm.Transform != ""
	hasRule := fm.Rule != ""

	switch {
	case fm.Default != nil:
		if hasSource || hasTransform || hasRule {
			return FieldInvalid
		}

		return FieldDefault
	case hasRule:
		if !hasSource || hasTransform {
			return FieldInvalid
		}

		return FieldByRule
	case hasTransform && hasSource:
		return FieldTransform
	case hasTransform:
		return FieldSupply
	case hasSource:
		return FieldCopy
	default:
		return FieldInvalid
	}
}

// TransformDef declares a transform function available to field mappings.
// The implementation is supplied by the host program.
type TransformDef struct {
	// Name is the transform identifier used in field mappings.
	Name string `yaml:"name" json:"name"`

	// Description is an optional human-readable description.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// RuleRef is a parsed "Source->Target" rule reference.
type RuleRef struct {
	Source string
	Target string
}

// String returns the reference in "Source->Target" notation.
func (r RuleRef) String() string {
	return r.Source + "->" + r.Target
}

// ParseRuleRef parses "Source->Target".
func ParseRuleRef(s string) (RuleRef, error) {
	src, dst, ok := strings.Cut(s, "->")
	src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)

	if !ok || src == "" || dst == "" || strings.Contains(dst, "->") {
		return RuleRef{}, fmt.Errorf("invalid rule reference %q: want Source->Target", s)
	}

	return RuleRef{Source: src, Target: dst}, nil
}

// StringOrArray is a type that can be unmarshaled from either a string or an array of strings.
// This allows fields to accept both "field" and ["field1", "field2"].
type StringOrArray []string

// PathSegment represents a parsed segment of a field path.
type PathSegment struct {
	// Name is the field name.
	Name string

	// IsSlice indicates this segment accesses slice elements (e.g., "Items[]").
	IsSlice bool
}

// FieldPath represents a parsed field path like "Items[].ProductID".
type FieldPath struct {
	Segments []PathSegment
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(seg.Name)

		if seg.IsSlice {
			sb.WriteString("[]")
		}
	}

	return sb.String()
}

// IsSimple returns true if this is a simple single-field path (no nesting, no slices).
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1 && !p.Segments[0].IsSlice
}

// Root returns the first segment's field name.
func (p FieldPath) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg.Name != other.Segments[i].Name || seg.IsSlice != other.Segments[i].IsSlice {
			return false
		}
	}

	return true
}
