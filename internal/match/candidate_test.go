package match

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidates(t *testing.T) {
	int64T := reflect.TypeFor[int64]()

	target := Field{Name: "CustomerID", Type: int64T}
	sources := []Field{
		{Name: "CustomerName", Type: reflect.TypeFor[string]()},
		{Name: "customer_id", Type: reflect.TypeFor[int]()},
		{Name: "CustomerID", Type: int64T},
		{Name: "ID", Type: int64T},
	}

	candidates := RankCandidates(target, sources)
	require.Len(t, candidates, 4)

	best := candidates.Best()
	require.NotNil(t, best)
	assert.Equal(t, "CustomerID", best.Source.Name)
	assert.Equal(t, TypeIdentical, best.TypeCompat.Compatibility)
	assert.InDelta(t, 1.0, best.CombinedScore, 1e-9)

	assert.Equal(t, "customer_id", candidates[1].Source.Name)
	assert.Equal(t, "customerid", candidates[1].NormalizedSourceName)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].CombinedScore, candidates[i].CombinedScore)
	}
}

func TestRankCandidates_TieBreaksByName(t *testing.T) {
	strT := reflect.TypeFor[string]()

	candidates := RankCandidates(Field{Name: "Name", Type: strT}, []Field{
		{Name: "name_", Type: strT},
		{Name: "NAME", Type: strT},
	})

	require.Len(t, candidates, 2)
	assert.Equal(t, "NAME", candidates[0].Source.Name)
}

func TestCandidateList_Filters(t *testing.T) {
	strT := reflect.TypeFor[string]()

	candidates := RankCandidates(Field{Name: "Title", Type: strT}, []Field{
		{Name: "Title", Type: strT},
		{Name: "Titles", Type: reflect.TypeFor[[]string]()},
		{Name: "Weight", Type: reflect.TypeFor[float64]()},
	})

	assert.Len(t, candidates.Copyable(), 1)
	assert.False(t, candidates.IsAmbiguous(DefaultAmbiguityThreshold))

	best := candidates.Best()
	require.NotNil(t, best)
	assert.Equal(t, "Title", best.Source.Name)
}

func TestCandidateList_Empty(t *testing.T) {
	var c CandidateList

	assert.Nil(t, c.Best())
	assert.False(t, c.IsAmbiguous(1))
}

func TestCandidateList_AmbiguousCloseCalls(t *testing.T) {
	strT := reflect.TypeFor[string]()

	candidates := RankCandidates(Field{Name: "OrderID", Type: strT}, []Field{
		{Name: "order_id", Type: strT},
		{Name: "OrderId", Type: strT},
	})

	assert.True(t, candidates.IsAmbiguous(DefaultAmbiguityThreshold))
}
