package mapping

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclMappingFile is the decoding shape of an HCL mapping file:
//
//	version = "1"
//
//	mapping "cats.Cat" "cats.CatDto" {
//	  one_to_one = { ID = "ID" }
//	  properties = ["Name"]
//
//	  field "Coins" {
//	    default = 0
//	  }
//	}
//
//	transform "BadType" {}
type hclMappingFile struct {
	Version    *string         `hcl:"version,optional"`
	Mappings   []*hclMapping   `hcl:"mapping,block"`
	Transforms []*hclTransform `hcl:"transform,block"`
}

type hclMapping struct {
	Source      string            `hcl:"source,label"`
	Target      string            `hcl:"target,label"`
	Construct   *string           `hcl:"construct,optional"`
	Constructor *string           `hcl:"constructor,optional"`
	Auto        *bool             `hcl:"auto,optional"`
	OneToOne    map[string]string `hcl:"one_to_one,optional"`
	Properties  []string          `hcl:"properties,optional"`
	Ignore      []string          `hcl:"ignore,optional"`
	Fields      []*hclField       `hcl:"field,block"`
}

type hclField struct {
	Target    string         `hcl:"target,label"`
	Also      []string       `hcl:"also,optional"`
	Source    *string        `hcl:"source,optional"`
	Transform *string        `hcl:"transform,optional"`
	Rule      *string        `hcl:"rule,optional"`
	Default   hcl.Expression `hcl:"default,optional"`
}

type hclTransform struct {
	Name        string  `hcl:"name,label"`
	Description *string `hcl:"description,optional"`
}

// ParseHCL parses HCL data into a MappingFile. filename is used in
// diagnostics only.
func ParseHCL(data []byte, filename string) (*MappingFile, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse mapping HCL %s: %w", filename, diags)
	}

	var parsed hclMappingFile

	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode mapping HCL %s: %w", filename, diags)
	}

	mf := &MappingFile{Version: deref(parsed.Version)}

	for _, m := range parsed.Mappings {
		tm := TypeMapping{
			Source:      m.Source,
			Target:      m.Target,
			Construct:   ConstructMode(deref(m.Construct)),
			Constructor: deref(m.Constructor),
			Auto:        m.Auto != nil && *m.Auto,
			OneToOne:    m.OneToOne,
			Properties:  StringOrArray(m.Properties),
			Ignore:      StringOrArray(m.Ignore),
		}

		for _, f := range m.Fields {
			fm, err := f.toFieldMapping()
			if err != nil {
				return nil, fmt.Errorf("failed to decode mapping HCL %s: %s field %s: %w", filename, tm.TypePair(), f.Target, err)
			}

			tm.Fields = append(tm.Fields, fm)
		}

		mf.TypeMappings = append(mf.TypeMappings, tm)
	}

	for _, t := range parsed.Transforms {
		mf.Transforms = append(mf.Transforms, TransformDef{Name: t.Name, Description: deref(t.Description)})
	}

	applyDefaults(mf)

	return mf, nil
}

func (f *hclField) toFieldMapping() (FieldMapping, error) {
	fm := FieldMapping{
		Target:    append(StringOrArray{f.Target}, f.Also...),
		Source:    deref(f.Source),
		Transform: deref(f.Transform),
		Rule:      deref(f.Rule),
	}

	if f.Default == nil {
		return fm, nil
	}

	literal, err := defaultLiteral(f.Default)
	if err != nil {
		return FieldMapping{}, err
	}

	fm.Default = literal

	return fm, nil
}

// defaultLiteral evaluates a constant default expression and renders it as
// the literal string used by the other formats. A missing attribute yields nil.
func defaultLiteral(expr hcl.Expression) (*string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	if val.IsNull() {
		return nil, nil
	}

	if !val.IsKnown() {
		return nil, errors.New("default must be a constant")
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return nil, fmt.Errorf("default must be a string, number or bool: %w", err)
	}

	s := str.AsString()

	return &s, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}

	return *p
}
