package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/belinda/internal/table"
)

func TestReadEdgeList(t *testing.T) {
	input := "# comment\n% matrix market style comment\n\n1 2\n2\t3 0.5\n  3 1  \n1 2\n4 4\n"
	b := NewBuilder()
	require.NoError(t, ReadEdgeList(strings.NewReader(input), b))

	assert.Equal(t, []string{"1", "2", "3", "4"}, b.Names())
	assert.Len(t, b.Edges(), 3)
}

func TestReadEdgeList_MalformedLine(t *testing.T) {
	err := ReadEdgeList(strings.NewReader("1 2\nlonely\n"), NewBuilder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadEdgeList_MissingFile(t *testing.T) {
	_, err := LoadEdgeList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestReadMembership_GroupsByFirstSeenLabel(t *testing.T) {
	g := buildGraph(t, twoClusterEdges)
	ctx := context.Background()

	input := "b0\tB\na0\tA\nb1\tB\na1\tA\na1\tX\n"
	mem, err := ReadMembership(ctx, strings.NewReader(input), g)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "X"}, mem.Labels)
	lookup, err := g.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b0", "b1"}, mem.Sets[0].Flatten(lookup))
	assert.Equal(t, []string{"a0", "a1"}, mem.Sets[1].Flatten(lookup))
	assert.Equal(t, []string{"a1"}, mem.Sets[2].Flatten(lookup))
	assert.Equal(t, uint32(10), mem.Sets[0].Universe())
}

func TestReadMembership_UnknownNode(t *testing.T) {
	g := buildGraph(t, twoClusterEdges)
	_, err := ReadMembership(context.Background(), strings.NewReader("a0\tA\nzz\tA\n"), g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadMembership_Malformed(t *testing.T) {
	g := buildGraph(t, twoClusterEdges)
	_, err := ReadMembership(context.Background(), strings.NewReader("a0 A\n"), g)
	assert.Error(t, err)
}

func TestLoadClustering(t *testing.T) {
	g := buildGraph(t, twoClusterEdges)
	ctx := context.Background()

	var sb strings.Builder
	for _, n := range []string{"a0", "a1", "a2", "a3", "a4"} {
		sb.WriteString(n + "\tA\n")
	}
	for _, n := range []string{"b0", "b1", "b2", "b3", "b4"} {
		sb.WriteString(n + "\tB\n")
	}
	path := filepath.Join(t.TempDir(), "clustering.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	f, err := LoadClustering(ctx, path, g, table.Options{Parallelism: 2, ChunkSize: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"label", "nodes", "n", "m", "c"}, f.Names())

	labels, err := f.StringCol("label")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, labels.Values)
	for col, want := range map[string][]int64{"n": {5, 5}, "m": {4, 3}, "c": {2, 2}} {
		s, err := f.Int64Col(col)
		require.NoError(t, err)
		assert.Equal(t, want, s.Values, col)
	}
}

func TestBuildClustering_Empty(t *testing.T) {
	g := buildGraph(t, twoClusterEdges)
	f, err := BuildClustering(context.Background(), g, &Membership{}, table.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 5, f.Width())
}

func TestSummarize(t *testing.T) {
	g := buildGraph(t, twoClusterEdges, "island")
	s, err := Summarize(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, Summary{Nodes: 11, Edges: 9, NumComponents: 2, LargestComponent: 10}, s)
}
