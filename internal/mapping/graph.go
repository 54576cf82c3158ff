package mapping

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// RuleGraph records which type pairs reference which through nested rules.
// Vertices are "Source->Target" names.
type RuleGraph struct {
	g     *core.Graph
	edges map[[2]string]struct{}
}

// NewRuleGraph returns an empty directed graph that admits self references.
func NewRuleGraph() *RuleGraph {
	return &RuleGraph{
		g:     core.NewGraph(core.WithDirected(true), core.WithLoops()),
		edges: make(map[[2]string]struct{}),
	}
}

// AddRule adds a vertex for the named rule.
func (rg *RuleGraph) AddRule(name string) error {
	return rg.g.AddVertex(name)
}

// AddReference records that from maps a property with rule to.
// Repeated references are recorded once.
func (rg *RuleGraph) AddReference(from, to string) error {
	edge := [2]string{from, to}
	if _, ok := rg.edges[edge]; ok {
		return nil
	}

	if _, err := rg.g.AddEdge(from, to, 0); err != nil {
		return fmt.Errorf("reference %s -> %s: %w", from, to, err)
	}

	rg.edges[edge] = struct{}{}

	return nil
}

// Cycles returns every simple reference cycle, in deterministic order.
// Cycles are legal but do not terminate on cyclic data.
func (rg *RuleGraph) Cycles() ([][]string, error) {
	found, cycles, err := dfs.DetectCycles(rg.g)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return len(cycles[i]) < len(cycles[j])
	})

	return cycles, nil
}
