package profilefile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"

	"caster-mapper/caster"
	"caster-mapper/internal/diagnostic"
	"caster-mapper/internal/mapping"
	"caster-mapper/mapper"
	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

// Load reads the mapping file at path and returns it as a profile named
// after the file.
func Load(path string, catalog *Catalog) (mapper.Profile, error) {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return Profile(filepath.Base(path), mf, catalog)
}

// Profile checks mf against catalog and returns a profile registering one
// rule per mapping. Validation errors are returned here; warnings are
// reported through SignalFileChecked.
//
// Within a mapping, directives are registered in the order auto, 121,
// properties, fields, so an explicit field overrides a shorthand writing the
// same target.
func Profile(name string, mf *mapping.MappingFile, catalog *Catalog) (mapper.Profile, error) {
	diags := mapping.Validate(mf, catalog.Types())
	diags.Sort()

	emitFileChecked(context.Background(), name, diags)

	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidFile, name, err)
	}

	mappings := make([]mapping.TypeMapping, len(mf.TypeMappings))
	for i, tm := range mf.TypeMappings {
		mapping.NormalizeTypeMapping(&tm)
		mappings[i] = tm
	}

	return mapper.NewProfile(name, func(pm *mapper.ProfileMapper) error {
		var errs []error

		for i := range mappings {
			if err := define(pm, catalog, &mappings[i]); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", mappings[i].TypePair(), err))
			}
		}

		return errors.Join(errs...)
	}), nil
}

// Warnings returns the non-fatal diagnostics of mf against catalog.
func Warnings(mf *mapping.MappingFile, catalog *Catalog) []diagnostic.Diagnostic {
	diags := mapping.Validate(mf, catalog.Types())
	diags.Sort()

	return diags.Warnings
}

func define(pm *mapper.ProfileMapper, catalog *Catalog, tm *mapping.TypeMapping) error {
	src, err := catalog.resolveType(tm.Source)
	if err != nil {
		return err
	}

	dst, err := catalog.resolveType(tm.Target)
	if err != nil {
		return err
	}

	b := pm.AddDynamicRule(src, dst)

	if tm.Construct == mapping.ConstructConstructor {
		var fn mapper.ConstructorFunc

		if tm.Constructor != "" {
			if fn, err = catalog.constructorFor(tm.Constructor, dst.Type()); err != nil {
				return err
			}
		}

		b.CallConstructor(fn)
	}

	if tm.Auto {
		b.AllProperties(tm.Ignore...)
	}

	d := definer{pm: pm, catalog: catalog, b: b, src: src.Type(), dst: dst.Type()}

	var errs []error

	for i := range tm.Fields {
		fm := &tm.Fields[i]
		for _, target := range fm.Target {
			if err := d.field(fm, target); err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", target, err))
			}
		}
	}

	return errors.Join(errs...)
}

type definer struct {
	pm       *mapper.ProfileMapper
	catalog  *Catalog
	b        *mapper.DynamicBuilder
	src, dst reflect.Type
}

func (d definer) field(fm *mapping.FieldMapping, target string) error {
	switch fm.Kind() {
	case mapping.FieldCopy:
		if d.catalog.conversions == primitive.CategoryNone {
			d.b.Property(fm.Source, target)
		} else {
			d.b.PropertyConvert(fm.Source, target, d.catalog.conversions)
		}

		return nil
	case mapping.FieldTransform:
		cs, err := d.catalog.transform(fm.Transform)
		if err != nil {
			return err
		}

		if err := d.checkCaster(cs, d.propertyType(d.src, fm.Source), target); err != nil {
			return err
		}

		d.b.PropertyFunc(fm.Source, target, transformValue(cs))

		return nil
	case mapping.FieldSupply:
		cs, err := d.catalog.transform(fm.Transform)
		if err != nil {
			return err
		}

		if err := d.checkCaster(cs, d.src, target); err != nil {
			return err
		}

		d.b.Fill(target, supplyValue(cs))

		return nil
	case mapping.FieldDefault:
		typ := d.propertyType(d.dst, target)
		if typ == nil {
			// The builder reports the unknown path.
			d.b.Fill(target, constant(reflect.Value{}))

			return nil
		}

		v, err := primitive.Parse(typ, *fm.Default, d.catalog.literals)
		if err != nil {
			return fmt.Errorf("default %q: %w", *fm.Default, err)
		}

		d.b.Fill(target, constant(v))

		return nil
	case mapping.FieldByRule:
		ref, err := d.catalog.resolveRule(fm.Rule)
		if err != nil {
			return err
		}

		d.b.ByRule(fm.Source, target, ref)

		return nil
	default:
		return fmt.Errorf("unsupported field mapping %s", fm.Kind())
	}
}

// propertyType returns the type of the dotted path below root, or nil.
func (d definer) propertyType(root reflect.Type, path string) reflect.Type {
	fp, err := mapping.ParsePath(path)
	if err != nil {
		return nil
	}

	in := d.pm.Introspector()
	cur := root

	for _, seg := range fp.Segments {
		prop, ok := in.Property(typeid.OfType(cur), seg.Name)
		if !ok || seg.IsSlice {
			return nil
		}

		cur = prop.Type
	}

	return cur
}

// checkCaster verifies that cs accepts in and that its result fits target.
// Unknown paths are left to the builder.
func (d definer) checkCaster(cs caster.Caster, in reflect.Type, target string) error {
	out := d.propertyType(d.dst, target)
	if in == nil || out == nil {
		return nil
	}

	if !cs.Accepts(in) {
		return fmt.Errorf("transform %s does not accept %s", cs, in)
	}

	if !cs.Dst.AssignableTo(out) {
		return fmt.Errorf("transform %s result is not assignable to %s", cs, out)
	}

	return nil
}

func transformValue(cs caster.Caster) mapper.ValueFunc {
	return func(ctx context.Context, value, _, _ reflect.Value) (reflect.Value, bool, error) {
		return cs.Call(ctx, value)
	}
}

func supplyValue(cs caster.Caster) mapper.SupplyFunc {
	return func(ctx context.Context, source reflect.Value) (reflect.Value, bool, error) {
		return cs.Call(ctx, source)
	}
}

// constant yields v on every call. Pointer values are copied so that
// targets never share them.
func constant(v reflect.Value) mapper.SupplyFunc {
	return func(context.Context, reflect.Value) (reflect.Value, bool, error) {
		if v.IsValid() && v.Kind() == reflect.Pointer && !v.IsNil() {
			p := reflect.New(v.Type().Elem())
			p.Elem().Set(v.Elem())

			return p, true, nil
		}

		return v, true, nil
	}
}
