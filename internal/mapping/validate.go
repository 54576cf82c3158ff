package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"caster-mapper/internal/diagnostic"
	"caster-mapper/internal/match"
	"caster-mapper/typeid"
)

// suggestionScore is the name similarity above which a diagnostic offers a
// "did you mean" suggestion.
const suggestionScore = 0.7

// Validate validates a mapping definition. Structural checks always run;
// when types is non-nil, type names and field paths are also resolved
// against it.
func Validate(mf *MappingFile, types TypeTable) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if mf.Version != "" && mf.Version != DefaultVersion {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported schema version %q", mf.Version), "", "")
	}

	transforms := validateTransformDefs(res, mf)
	pairs := map[RuleRef]int{}
	graph := NewRuleGraph()

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		ref := RuleRef{Source: tm.Source, Target: tm.Target}

		if prev, ok := pairs[ref]; ok {
			res.AddError("duplicate_mapping",
				fmt.Sprintf("mapping %s is declared twice (entries %d and %d)", tm.TypePair(), prev+1, i+1),
				tm.TypePair(), "")

			continue
		}

		pairs[ref] = i

		if err := graph.AddRule(tm.TypePair()); err != nil {
			res.AddError("rule_graph", err.Error(), tm.TypePair(), "")
		}
	}

	for i := range mf.TypeMappings {
		validateTypeMapping(res, &mf.TypeMappings[i], types, transforms, pairs, graph)
	}

	cycles, err := graph.Cycles()
	if err != nil {
		res.AddError("rule_graph", err.Error(), "", "")
	}

	for _, c := range cycles {
		res.AddInfo("rule_cycle", "mappings reference each other: "+strings.Join(c, " -> "), c[0], "")
	}

	return res
}

func validateTransformDefs(res *diagnostic.Diagnostics, mf *MappingFile) *TransformRegistry {
	registry := NewTransformRegistry()

	for i := range mf.Transforms {
		def := &mf.Transforms[i]
		if def.Name == "" {
			res.AddError("empty_transform_name", fmt.Sprintf("transform %d has no name", i+1), "", "")
			continue
		}

		if registry.Has(def.Name) {
			res.AddError("duplicate_transform", fmt.Sprintf("duplicate transform %q", def.Name), "", def.Name)
			continue
		}

		registry.Add(def)
	}

	return registry
}

// typeScope is a mapping's resolved source and target types. Both are nil
// when no type table is available or the name did not resolve.
type typeScope struct {
	src, dst reflect.Type
}

func validateTypeMapping(
	res *diagnostic.Diagnostics,
	tm *TypeMapping,
	types TypeTable,
	transforms *TransformRegistry,
	pairs map[RuleRef]int,
	graph *RuleGraph,
) {
	tp := tm.TypePair()

	if tm.Source == "" || tm.Target == "" {
		res.AddError("missing_type", "mapping must specify source and target", tp, "")
		return
	}

	scope, ok := resolveScope(res, tm, types)
	if !ok {
		return
	}

	if !tm.Construct.IsValid() {
		res.AddError("invalid_construct",
			fmt.Sprintf("construct must be %q or %q, got %q", ConstructAllocate, ConstructConstructor, tm.Construct), tp, "")
	}

	if tm.Constructor != "" && tm.Construct != ConstructConstructor {
		res.AddWarning("constructor_unused",
			fmt.Sprintf("constructor %q is only used with construct: %s", tm.Constructor, ConstructConstructor), tp, "")
	}

	// 121 shorthand
	for sp, dp := range tm.OneToOne {
		checkPath(res, tp, "invalid_source_path", sp, scope.src)
		checkPath(res, tp, "invalid_target_path", dp, scope.dst)
	}

	for _, name := range tm.Properties {
		checkPath(res, tp, "invalid_source_path", name, scope.src)
		checkPath(res, tp, "invalid_target_path", name, scope.dst)
	}

	for i := range tm.Fields {
		validateFieldMapping(res, tm, &tm.Fields[i], scope, transforms, pairs, graph)
	}

	for _, ig := range tm.Ignore {
		checkPath(res, tp, "invalid_ignore_path", ig, scope.dst)
	}

	if len(tm.Ignore) > 0 && !tm.Auto {
		res.AddInfo("ignore_without_auto", "ignore only affects auto mappings", tp, "")
	}
}

func resolveScope(res *diagnostic.Diagnostics, tm *TypeMapping, types TypeTable) (typeScope, bool) {
	if types == nil {
		return typeScope{}, true
	}

	tp := tm.TypePair()

	src, ok := types.Resolve(tm.Source)
	if !ok {
		res.AddError("source_type_not_found", fmt.Sprintf("source type %q not found", tm.Source), tp, tm.Source,
			closest(tm.Source, types.Names())...)

		return typeScope{}, false
	}

	dst, ok := types.Resolve(tm.Target)
	if !ok {
		res.AddError("target_type_not_found", fmt.Sprintf("target type %q not found", tm.Target), tp, tm.Target,
			closest(tm.Target, types.Names())...)

		return typeScope{}, false
	}

	return typeScope{src: src, dst: dst}, true
}

// validateFieldMapping validates a single field mapping within a type mapping.
func validateFieldMapping(
	res *diagnostic.Diagnostics,
	tm *TypeMapping,
	fm *FieldMapping,
	scope typeScope,
	transforms *TransformRegistry,
	pairs map[RuleRef]int,
	graph *RuleGraph,
) {
	tp := tm.TypePair()

	if fm.Target.IsEmpty() {
		res.AddError("missing_target_path", "field mapping must specify target", tp, "")
		return
	}

	for _, t := range fm.Target {
		checkPath(res, tp, "invalid_target_path", t, scope.dst)

		if tm.Auto && tm.Ignore.Contains(t) {
			res.AddWarning("ignored_target_mapped",
				fmt.Sprintf("target %q is ignored but also mapped explicitly; the explicit mapping applies", t), tp, t)
		}
	}

	field := fm.Target.First()

	if fm.Kind() == FieldInvalid {
		res.AddError("conflicting_field", conflictMessage(fm), tp, field)
		return
	}

	if fm.Source != "" {
		checkPath(res, tp, "invalid_source_path", fm.Source, scope.src)
	}

	if fm.Transform != "" && !transforms.Has(fm.Transform) {
		res.AddWarning("unknown_transform",
			fmt.Sprintf("referenced transform %q is not declared in transforms", fm.Transform),
			tp, field, closest(fm.Transform, transforms.Names())...)
	}

	if fm.Rule == "" {
		return
	}

	ref, err := ParseRuleRef(fm.Rule)
	if err != nil {
		res.AddError("invalid_rule_ref", err.Error(), tp, field)
		return
	}

	if _, ok := pairs[ref]; !ok {
		res.AddWarning("dangling_rule",
			fmt.Sprintf("rule %s is not declared in this file and must be registered elsewhere", ref), tp, field)

		return
	}

	if err := graph.AddReference(tp, ref.String()); err != nil {
		res.AddError("rule_graph", err.Error(), tp, field)
	}
}

func conflictMessage(fm *FieldMapping) string {
	switch {
	case fm.Default != nil:
		return "default cannot be combined with source, transform or rule"
	case fm.Rule != "" && fm.Source == "":
		return "rule requires a source"
	case fm.Rule != "":
		return "rule cannot be combined with transform"
	default:
		return "field mapping must specify source, transform, default or rule"
	}
}

// checkPath parses pathStr and, when typ is known, resolves it against typ.
func checkPath(res *diagnostic.Diagnostics, typePair, code, pathStr string, typ reflect.Type) {
	if pathStr == "" {
		res.AddError(code, "empty path", typePair, "")
		return
	}

	if err := validatePathAgainstType(pathStr, typ); err != nil {
		res.AddError(code, err.Error(), typePair, pathStr, suggestPath(pathStr, typ)...)
	}
}

func validatePathAgainstType(pathStr string, typ reflect.Type) error {
	fp, err := ParsePath(pathStr)
	if err != nil {
		return err
	}

	for _, seg := range fp.Segments {
		if seg.IsSlice {
			return fmt.Errorf("segment %q: collections are mapped with a rule", seg.Name+"[]")
		}
	}

	if typ == nil {
		return nil
	}

	current := typ
	for _, seg := range fp.Segments {
		// Auto-deref pointers (matches the executor).
		owner := typeid.OfType(current)
		if !owner.IsStruct() {
			return fmt.Errorf("cannot access field %q on non-struct %s", seg.Name, current)
		}

		prop, ok := typeid.Default.Property(owner, seg.Name)
		if !ok {
			return fmt.Errorf("exported field %q not found in %s", seg.Name, owner.Name())
		}

		current = prop.Type
	}

	return nil
}

// suggestPath proposes properties of typ close to the last segment of pathStr.
func suggestPath(pathStr string, typ reflect.Type) []string {
	if typ == nil {
		return nil
	}

	owner := typeid.OfType(typ)
	if !owner.IsStruct() {
		return nil
	}

	// Only top-level names are suggested.
	if strings.Contains(pathStr, ".") {
		return nil
	}

	var out []string

	for _, candidate := range typeid.Default.PropertyNames(owner) {
		if match.NameScore(pathStr, candidate) >= suggestionScore {
			out = append(out, candidate)
		}
	}

	return out
}

func closest(name string, candidates []string) []string {
	var out []string

	for _, c := range candidates {
		short := c[strings.LastIndex(c, "/")+1:]
		if match.NameScore(name, short) >= suggestionScore || match.NameScore(name, c) >= suggestionScore {
			out = append(out, short)
		}
	}

	return out
}
