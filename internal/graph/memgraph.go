package graph

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/dusk-indust/belinda/internal/nodeset"
)

// Compile-time assertion: *MemGraph satisfies Engine.
var _ Engine = (*MemGraph)(nil)

// Builder accumulates nodes and undirected edges keyed by external id.
// Internal indices are assigned in first-seen order. Not safe for concurrent
// use.
type Builder struct {
	ids   []string
	index map[string]uint32
	edges map[uint64]struct{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		index: make(map[string]uint32),
		edges: make(map[uint64]struct{}),
	}
}

// AddNode registers name and returns its internal index. Adding a known
// name returns the existing index.
func (b *Builder) AddNode(name string) uint32 {
	if id, ok := b.index[name]; ok {
		return id
	}
	id := uint32(len(b.ids))
	b.ids = append(b.ids, name)
	b.index[name] = id
	return id
}

// AddEdge registers an undirected edge between two external ids, adding
// either endpoint if needed. Duplicate edges collapse; self-loops only
// register the node.
func (b *Builder) AddEdge(src, dst string) {
	u := b.AddNode(src)
	v := b.AddNode(dst)
	if u == v {
		return
	}
	b.edges[edgeKey(u, v)] = struct{}{}
}

// NodeCount returns the number of nodes added so far.
func (b *Builder) NodeCount() int { return len(b.ids) }

// Edges returns the deduplicated edges sorted by (Source, Target).
func (b *Builder) Edges() []Edge {
	out := make([]Edge, 0, len(b.edges))
	for k := range b.edges {
		out = append(out, Edge{Source: uint32(k >> 32), Target: uint32(k)})
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if c := cmp.Compare(x.Source, y.Source); c != 0 {
			return c
		}
		return cmp.Compare(x.Target, y.Target)
	})
	return out
}

// Names returns the external ids indexed by internal index.
func (b *Builder) Names() []string {
	return slices.Clone(b.ids)
}

// Build freezes the accumulated graph into a MemGraph.
func (b *Builder) Build() *MemGraph {
	return newMemGraph(b.Names(), b.Edges())
}

// MemGraph is an immutable in-memory Engine holding the adjacency in
// compressed sparse row form. Safe for concurrent use.
type MemGraph struct {
	ids     nodeset.IDTable
	index   map[string]uint32
	offsets []int    // adj[offsets[u]:offsets[u+1]] are u's neighbours
	adj     []uint32 // sorted per node
	m       int64

	compOnce sync.Once
	comp     []int // component label per node
	compSize []int // size per component label
}

func newMemGraph(ids []string, edges []Edge) *MemGraph {
	n := len(ids)
	g := &MemGraph{
		ids:     ids,
		index:   make(map[string]uint32, n),
		offsets: make([]int, n+1),
		adj:     make([]uint32, 2*len(edges)),
		m:       int64(len(edges)),
	}
	for i, name := range ids {
		g.index[name] = uint32(i)
	}
	for _, e := range edges {
		g.offsets[e.Source+1]++
		g.offsets[e.Target+1]++
	}
	for i := 1; i <= n; i++ {
		g.offsets[i] += g.offsets[i-1]
	}
	fill := slices.Clone(g.offsets[:n])
	for _, e := range edges {
		g.adj[fill[e.Source]] = e.Target
		fill[e.Source]++
		g.adj[fill[e.Target]] = e.Source
		fill[e.Target]++
	}
	for u := range n {
		slices.Sort(g.neighbors(uint32(u)))
	}
	return g
}

func (g *MemGraph) neighbors(u uint32) []uint32 {
	return g.adj[g.offsets[u]:g.offsets[u+1]]
}

// checkMembers rejects sets whose largest member is not a node of g.
func (g *MemGraph) checkMembers(nodes *nodeset.Set) error {
	if last, ok := nodes.Max(); ok && int(last) >= len(g.ids) {
		return fmt.Errorf("%w: index %d (graph has %d nodes)", ErrUnknownNode, last, len(g.ids))
	}
	return nil
}

// NodeCount returns the number of nodes.
func (g *MemGraph) NodeCount(_ context.Context) (int, error) {
	return len(g.ids), nil
}

// EdgeCount returns the number of undirected edges.
func (g *MemGraph) EdgeCount(_ context.Context) (int64, error) {
	return g.m, nil
}

// NumComponents returns the number of connected components, isolated nodes
// included.
func (g *MemGraph) NumComponents(_ context.Context) (int, error) {
	g.components()
	return len(g.compSize), nil
}

// LargestComponent returns the node count of the largest component, or 0
// for an empty graph.
func (g *MemGraph) LargestComponent(_ context.Context) (int, error) {
	g.components()
	largest := 0
	for _, s := range g.compSize {
		largest = max(largest, s)
	}
	return largest, nil
}

// ComponentLabel returns the component label of node. Labels are dense and
// numbered in order of each component's smallest node.
func (g *MemGraph) ComponentLabel(_ context.Context, node uint32) (int, error) {
	if int(node) >= len(g.ids) {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownNode, node)
	}
	g.components()
	return g.comp[node], nil
}

// ComponentSize returns the number of nodes carrying label.
func (g *MemGraph) ComponentSize(_ context.Context, label int) (int, error) {
	g.components()
	if label < 0 || label >= len(g.compSize) {
		return 0, fmt.Errorf("graph: component %d out of range", label)
	}
	return g.compSize[label], nil
}

func (g *MemGraph) components() {
	g.compOnce.Do(func() {
		g.comp, g.compSize = labelComponents(len(g.ids), g.neighbors)
	})
}

// CoveredEdges counts edges with both endpoints in nodes.
func (g *MemGraph) CoveredEdges(_ context.Context, nodes *nodeset.Set) (int64, error) {
	if err := g.checkMembers(nodes); err != nil {
		return 0, err
	}
	var m int64
	nodes.Iterate(func(u uint32) bool {
		for _, v := range g.neighbors(u) {
			if v > u && nodes.Contains(v) {
				m++
			}
		}
		return true
	})
	return m, nil
}

// CoveredEdgesAny counts distinct edges with both endpoints inside at least
// one of sets.
func (g *MemGraph) CoveredEdgesAny(ctx context.Context, sets []*nodeset.Set) (int64, error) {
	seen := roaring64.New()
	for _, s := range sets {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := g.checkMembers(s); err != nil {
			return 0, err
		}
		s.Iterate(func(u uint32) bool {
			for _, v := range g.neighbors(u) {
				if v > u && s.Contains(v) {
					seen.Add(edgeKey(u, v))
				}
			}
			return true
		})
	}
	return int64(seen.GetCardinality()), nil
}

// ClusterCounts returns n, m and c for nodes in a single pass over their
// adjacency.
func (g *MemGraph) ClusterCounts(_ context.Context, nodes *nodeset.Set) (Counts, error) {
	if err := g.checkMembers(nodes); err != nil {
		return Counts{}, err
	}
	var inside, cut int64
	nodes.Iterate(func(u uint32) bool {
		for _, v := range g.neighbors(u) {
			switch {
			case !nodes.Contains(v):
				cut++
			case v > u:
				inside++
			}
		}
		return true
	})
	return Counts{N: int64(nodes.Cardinality()), M: inside, C: cut}, nil
}

// Lookup returns the internal to external id table.
func (g *MemGraph) Lookup(_ context.Context) (nodeset.Lookup, error) {
	return g.ids, nil
}

// Resolve maps an external id to its internal index.
func (g *MemGraph) Resolve(_ context.Context, external string) (uint32, bool, error) {
	id, ok := g.index[external]
	return id, ok, nil
}

// Close is a no-op for the in-memory graph.
func (g *MemGraph) Close() error {
	return nil
}
