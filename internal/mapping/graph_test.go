package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleGraph_NoCycles(t *testing.T) {
	rg := NewRuleGraph()
	require.NoError(t, rg.AddRule("a.Cat->b.CatDto"))
	require.NoError(t, rg.AddRule("a.Payload->b.PayloadDto"))
	require.NoError(t, rg.AddReference("a.Cat->b.CatDto", "a.Payload->b.PayloadDto"))
	require.NoError(t, rg.AddReference("a.Cat->b.CatDto", "a.Payload->b.PayloadDto"))

	cycles, err := rg.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestRuleGraph_SelfReference(t *testing.T) {
	rg := NewRuleGraph()
	require.NoError(t, rg.AddReference("a.Node->b.NodeDto", "a.Node->b.NodeDto"))

	cycles, err := rg.Cycles()
	require.NoError(t, err)
	require.NotEmpty(t, cycles)
	assert.Contains(t, cycles[0], "a.Node->b.NodeDto")
}

func TestRuleGraph_MutualReference(t *testing.T) {
	rg := NewRuleGraph()
	require.NoError(t, rg.AddReference("a.A->b.A", "a.B->b.B"))
	require.NoError(t, rg.AddReference("a.B->b.B", "a.A->b.A"))

	cycles, err := rg.Cycles()
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a.A->b.A", "a.B->b.B"}, cycles[0][:2])
}
