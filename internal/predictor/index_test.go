package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleAssociations = []Association{
	{Function: "GO:0001", Domain: "1.10.8.10", Strength: 2.0},
	{Function: "GO:0002", Domain: "1.10.8.10", Strength: 0.5},
	{Function: "GO:0001", Domain: "3.40.50.300", Strength: 1.0},
	{Function: "GO:0003", Domain: "2.60.40.10", Strength: -1.5},
}

func TestBuildIndex_ThresholdExtremes(t *testing.T) {
	all := BuildIndex(sampleAssociations, IndexOptions{MinStrength: math.Inf(-1)})
	assert.Equal(t, len(sampleAssociations), all.Records())
	assert.Equal(t, 3, all.Domains())

	none := BuildIndex(sampleAssociations, IndexOptions{MinStrength: math.Inf(1)})
	assert.Zero(t, none.Records())
	assert.Zero(t, none.Domains())
}

func TestBuildIndex_ThresholdIsInclusive(t *testing.T) {
	idx := BuildIndex(sampleAssociations, IndexOptions{MinStrength: 1.0})

	ev, ok := idx.Lookup("3.40.50.300")
	require.True(t, ok, "record equal to the threshold must be kept")
	assert.Equal(t, []Evidence{{Function: "GO:0001", Strength: 1.0}}, ev)

	ev, ok = idx.Lookup("1.10.8.10")
	require.True(t, ok)
	assert.Equal(t, []Evidence{{Function: "GO:0001", Strength: 2.0}}, ev)

	_, ok = idx.Lookup("2.60.40.10")
	assert.False(t, ok)
}

func TestBuildIndex_Whitelist(t *testing.T) {
	idx := BuildIndex(sampleAssociations, IndexOptions{
		MinStrength: math.Inf(-1),
		Whitelist:   NewDomainSet("2.60.40.10"),
	})
	assert.Equal(t, 1, idx.Records())
	_, ok := idx.Lookup("1.10.8.10")
	assert.False(t, ok)
}

func TestBuildIndex_Duplicates(t *testing.T) {
	records := []Association{
		{Function: "F1", Domain: "D1", Strength: 1.0},
		{Function: "F1", Domain: "D1", Strength: 3.0},
		{Function: "F2", Domain: "D1", Strength: 2.0},
	}

	t.Run("retained by default", func(t *testing.T) {
		idx := BuildIndex(records, IndexOptions{})
		ev, _ := idx.Lookup("D1")
		assert.Len(t, ev, 3)
		assert.Equal(t, 1, idx.Duplicates())
	})

	t.Run("collapsed on request", func(t *testing.T) {
		idx := BuildIndex(records, IndexOptions{Dedupe: true})
		ev, _ := idx.Lookup("D1")
		assert.Equal(t, []Evidence{{"F1", 3.0}, {"F2", 2.0}}, ev)
		assert.Equal(t, 1, idx.Duplicates())
		assert.Equal(t, 2, idx.Records())
	})
}

func TestGroupByFunction(t *testing.T) {
	idx := BuildIndex([]Association{
		{Function: "F1", Domain: "D1", Strength: 2.0},
		{Function: "F2", Domain: "D1", Strength: 0.5},
		{Function: "F1", Domain: "D2", Strength: 1.0},
	}, IndexOptions{})

	g := GroupByFunction([]string{"D1", "D2", "D9", "D1"}, idx)

	assert.Equal(t, []string{"F1", "F2"}, g.Functions)
	assert.Equal(t, []string{"D1", "D2"}, g.Domains["F1"])
	assert.Equal(t, []string{"D1"}, g.Domains["F2"])
	assert.Equal(t, map[string]float64{"D1": 2.0, "D2": 1.0}, g.Strengths["F1"])
	for _, f := range g.Functions {
		assert.Len(t, g.Strengths[f], len(uniq(g.Domains[f])))
	}
}

func TestGroupByFunction_NoEvidence(t *testing.T) {
	idx := BuildIndex(nil, IndexOptions{})
	g := GroupByFunction([]string{"D1"}, idx)
	assert.True(t, g.Empty())
	assert.Empty(t, g.Domains)
	assert.Empty(t, g.Strengths)
}

func TestGroupByFunction_DuplicateRecordOverwrites(t *testing.T) {
	idx := BuildIndex([]Association{
		{Function: "F1", Domain: "D1", Strength: 1.0},
		{Function: "F1", Domain: "D1", Strength: 4.0},
	}, IndexOptions{})

	g := GroupByFunction([]string{"D1"}, idx)
	assert.Equal(t, []string{"D1", "D1"}, g.Domains["F1"])
	assert.Equal(t, 4.0, g.Strengths["F1"]["D1"])
}

func TestBuildMatrix(t *testing.T) {
	idx := BuildIndex([]Association{
		{Function: "F1", Domain: "D1", Strength: 2.0},
		{Function: "F2", Domain: "D2", Strength: 0.5},
	}, IndexOptions{})
	domains := []string{"D1", "D2", "D3"}
	g := GroupByFunction(domains, idx)

	m := BuildMatrix(g, domains, -1)
	assert.Equal(t, []string{"F1", "F2"}, m.Functions)
	assert.Equal(t, [][]float64{
		{2.0, -1, -1},
		{-1, 0.5, -1},
	}, m.Rows)

	n, err := m.SampleLength(DOFMaxNum)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.SampleLength("perrow")
	assert.ErrorIs(t, err, ErrUnknownDOFPolicy)
}

func uniq(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
