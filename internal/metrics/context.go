package metrics

import (
	"context"
	"fmt"
)

// Graph is the slice of the graph engine needed for graph-wide scalars.
type Graph interface {
	NodeCount(ctx context.Context) (int, error)
	EdgeCount(ctx context.Context) (int64, error)
	NumComponents(ctx context.Context) (int, error)
	LargestComponent(ctx context.Context) (int, error)
}

// Context carries the graph-wide values shared by every row of a
// computation. Build it once and pass the same pointer everywhere; it is
// never modified.
type Context struct {
	N                int64 // total nodes
	M                int64 // total edges
	NumComponents    int
	LargestComponent int
}

// NewContext reads the graph-wide scalars from g.
func NewContext(ctx context.Context, g Graph) (*Context, error) {
	n, err := g.NodeCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("metrics: node count: %w", err)
	}
	m, err := g.EdgeCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("metrics: edge count: %w", err)
	}
	comps, err := g.NumComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("metrics: components: %w", err)
	}
	largest, err := g.LargestComponent(ctx)
	if err != nil {
		return nil, fmt.Errorf("metrics: largest component: %w", err)
	}
	return &Context{
		N:                int64(n),
		M:                m,
		NumComponents:    comps,
		LargestComponent: largest,
	}, nil
}

// NodeCoverage returns covered/N, or ok=false for an empty graph.
func (c *Context) NodeCoverage(covered int64) (float64, bool) {
	if c.N == 0 {
		return 0, false
	}
	return float64(covered) / float64(c.N), true
}

// EdgeCoverage returns covered/M, or ok=false for an edgeless graph.
func (c *Context) EdgeCoverage(covered int64) (float64, bool) {
	if c.M == 0 {
		return 0, false
	}
	return float64(covered) / float64(c.M), true
}
