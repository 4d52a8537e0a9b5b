//go:build cgo

package graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/belinda/internal/nodeset"
)

// newTestKuzu opens an in-memory KuzuGraph and imports edges into it.
// It registers a cleanup function to close the graph when the test finishes.
func newTestKuzu(t *testing.T, edges [][2]string) *KuzuGraph {
	t.Helper()
	ctx := context.Background()
	g, err := OpenKuzuGraph(ctx, ":memory:")
	require.NoError(t, err, "OpenKuzuGraph should not fail")
	t.Cleanup(func() { _ = g.Close() })

	b := NewBuilder()
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	require.NoError(t, g.Import(ctx, b))
	return g
}

func TestKuzuGraph_MatchesMemGraph(t *testing.T) {
	ctx := context.Background()
	kg := newTestKuzu(t, twoClusterEdges)
	mg := buildGraph(t, twoClusterEdges)

	for _, e := range []Engine{kg, mg} {
		n, err := e.NodeCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
		m, err := e.EdgeCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(9), m)
		comps, err := e.NumComponents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, comps)
	}

	clusters := [][]string{
		{"a0", "a1", "a2", "a3", "a4"},
		{"b0", "b1", "b2", "b3", "b4"},
		{"a1"},
		{"a2", "a3", "b0", "b1"},
	}
	var ksets, msets []*nodeset.Set
	for _, names := range clusters {
		ks, ms := setOf(t, kg, names...), setOf(t, mg, names...)
		ksets, msets = append(ksets, ks), append(msets, ms)

		kc, err := kg.ClusterCounts(ctx, ks)
		require.NoError(t, err)
		mc, err := mg.ClusterCounts(ctx, ms)
		require.NoError(t, err)
		assert.Equal(t, mc, kc, "%v", names)
	}

	kany, err := kg.CoveredEdgesAny(ctx, ksets)
	require.NoError(t, err)
	many, err := mg.CoveredEdgesAny(ctx, msets)
	require.NoError(t, err)
	assert.Equal(t, many, kany)
}

func TestKuzuGraph_EmptySet(t *testing.T) {
	g := newTestKuzu(t, twoClusterEdges)
	counts, err := g.ClusterCounts(context.Background(), nodeset.Empty(10))
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestKuzuGraph_RejectsForeignMembers(t *testing.T) {
	g := newTestKuzu(t, twoClusterEdges)
	ctx := context.Background()

	s := nodeset.MustNew(20, 1, 15)
	_, err := g.ClusterCounts(ctx, s)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	_, err = g.CoveredEdges(ctx, s)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	_, err = g.CoveredEdgesAny(ctx, []*nodeset.Set{nodeset.MustNew(20, 1), s})
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestKuzuGraph_ImportTwiceFails(t *testing.T) {
	g := newTestKuzu(t, twoClusterEdges)
	err := g.Import(context.Background(), NewBuilder())
	assert.True(t, errors.Is(err, ErrPopulated))
}

func TestKuzuGraph_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "graph.kuzu")

	g, err := OpenKuzuGraph(ctx, dbPath)
	require.NoError(t, err)
	b := NewBuilder()
	for _, e := range twoClusterEdges {
		b.AddEdge(e[0], e[1])
	}
	require.NoError(t, g.Import(ctx, b))
	require.NoError(t, g.Close())

	reopened, err := OpenKuzuGraph(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	n, err := reopened.NodeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	id, ok, err := reopened.Resolve(ctx, "b3")
	require.NoError(t, err)
	require.True(t, ok)
	lookup, err := reopened.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b3", lookup.ExternalID(id))
	largest, err := reopened.LargestComponent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, largest)
}
