package network

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	annotations = map[string][]string{
		"P2": {"GO:1", "GO:2", "GO:1"},
		"P1": {"GO:3"},
	}
	domains = map[string][]string{
		"P1": {"D1", "D1", "D2"},
		"P2": {"D3"},
		"P3": {"D4"},
	}
)

func TestBuild_Tripartite(t *testing.T) {
	edges, err := Build(Tripartite, annotations, domains)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{"GO:3", "P1"},
		{"GO:1", "P2"}, {"GO:2", "P2"},
		{"D1", "P1"}, {"D2", "P1"},
		{"D3", "P2"},
	}, edges)
}

func TestBuild_Bipartite(t *testing.T) {
	edges, err := Build(Bipartite, nil, domains)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{"D1", "P1"}, {"D2", "P1"},
		{"D3", "P2"},
		{"D4", "P3"},
	}, edges)
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build("quadripartite", nil, nil)
	assert.Error(t, err)
	_, err = ParseKind("quadripartite")
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Edge{{"D1", "P1"}, {"GO:1", "P1"}}))
	assert.Equal(t, "D1\tP1\nGO:1\tP1\n", buf.String())
}
