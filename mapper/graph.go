package mapper

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"caster-mapper/internal/diagnostic"
	"caster-mapper/internal/mapping"
	"caster-mapper/internal/match"
)

// Finding is one result of Store.Check.
type Finding = diagnostic.Diagnostic

// Check codes.
const (
	CodeUnresolvedRule = "unresolved-rule"
	CodeRuleCycle      = "rule-cycle"
	CodeGraph          = "rule-graph"
)

// Check reports ByRule references to unregistered rules (warnings) and
// reference cycles between rules (infos). Neither prevents mapping: a
// missing rule fails the calls that reach it, and a cycle only fails to
// terminate on cyclic data.
func (s *Store) Check() []Finding {
	var diags diagnostic.Diagnostics

	rules := s.Rules()
	names := make([]string, 0, len(rules))
	// Vertices use full paths; findings show the short names.
	display := make(map[string]string, len(rules))

	rg := mapping.NewRuleGraph()

	for _, r := range rules {
		path := r.Key.Path()
		names = append(names, r.Key.String())
		display[path] = r.Key.String()

		if err := rg.AddRule(path); err != nil {
			diags.AddError(CodeGraph, err.Error(), r.Key.String(), "")
		}
	}

	for _, r := range rules {
		from := r.Key.Path()

		for _, d := range r.Directives {
			if d.Kind != DirectiveByRule {
				continue
			}

			if _, ok := s.ResolveKey(d.Ref.Key); !ok {
				diags.AddWarning(CodeUnresolvedRule,
					fmt.Sprintf("references unregistered rule %s", d.Ref),
					display[from], d.Target, closestNames(d.Ref.String(), names)...)

				continue
			}

			if err := rg.AddReference(from, d.Ref.Key.Path()); err != nil {
				diags.AddError(CodeGraph, err.Error(), display[from], d.Target)
			}
		}
	}

	cycles, err := rg.Cycles()
	if err != nil {
		diags.AddError(CodeGraph, err.Error(), "", "")
	}

	for _, c := range cycles {
		short := make([]string, len(c))
		for i, v := range c {
			short[i] = display[v]
		}

		diags.AddInfo(CodeRuleCycle, "rules reference each other: "+strings.Join(short, " -> "), short[0], "")
	}

	return diags.All()
}

func closestNames(name string, names []string) []string {
	var out []string

	for _, n := range names {
		if match.LevenshteinNormalized(name, n) >= suggestionScore {
			out = append(out, n)
		}
	}

	return out
}

type directiveView struct {
	Kind   string
	Source string
	Target string
	Ref    string
}

type ruleView struct {
	Key        string
	Profile    string
	Mode       string
	Directives []directiveView
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes the rule table in key order for debugging.
func (s *Store) Dump(w io.Writer) {
	rules := s.Rules()
	views := make([]ruleView, 0, len(rules))

	for _, r := range rules {
		v := ruleView{Key: r.Key.String(), Profile: r.Profile, Mode: r.Mode.String()}

		for _, d := range r.Directives {
			dv := directiveView{Kind: d.Kind.String(), Source: d.Source, Target: d.Target}
			if d.Kind == DirectiveByRule {
				dv.Ref = d.Ref.String()
			}

			v.Directives = append(v.Directives, dv)
		}

		views = append(views, v)
	}

	dumpConfig.Fdump(w, views)
}
