package metrics

import (
	"context"
	"fmt"

	"github.com/dusk-indust/belinda/internal/nodeset"
	"github.com/dusk-indust/belinda/internal/table"
)

// Column names every clustering frame is expected to carry.
const (
	ColLabel = "label"
	ColNodes = "nodes"
	ColN     = "n"
	ColM     = "m"
	ColC     = "c"
)

var nmc = []string{ColN, ColM, ColC}

func rowOf(v []float64) Row {
	return Row{N: int64(v[0]), M: int64(v[1]), C: int64(v[2])}
}

// CPM is the row-wise expression for Row.CPM, named "cpm".
func CPM(resolution float64) table.Expr {
	return table.RowFloat("cpm", nmc, func(v []float64) (float64, bool, error) {
		return rowOf(v).CPM(resolution), true, nil
	})
}

// Vol is the row-wise expression for Row.Volume, named "vol".
func Vol() table.Expr {
	return table.RowFloat("vol", nmc, func(v []float64) (float64, bool, error) {
		return float64(rowOf(v).Volume()), true, nil
	})
}

// Modularity is the row-wise expression for Row.Modularity, named
// "modularity".
func Modularity(g *Context, resolution float64) table.Expr {
	return table.RowFloat("modularity", nmc, func(v []float64) (float64, bool, error) {
		q, ok := rowOf(v).Modularity(g, resolution)
		return q, ok, nil
	})
}

// Vol1 is the row-wise expression for Row.Vol1, named "vol1".
func Vol1(g *Context) table.Expr {
	return table.RowFloat("vol1", nmc, func(v []float64) (float64, bool, error) {
		return float64(rowOf(v).Vol1(g)), true, nil
	})
}

// Conductance is the row-wise expression for Row.Conductance, named
// "conductance".
func Conductance(g *Context, policy ZeroVolumePolicy) table.Expr {
	return table.RowFloat("conductance", nmc, func(v []float64) (float64, bool, error) {
		return rowOf(v).Conductance(g, policy)
	})
}

// NodeCoverage is the share of graph nodes in some cluster, named
// "node_coverage". With overlap the "nodes" column is unioned first so
// shared nodes count once; without it the n column is summed, which assumes
// disjoint clusters.
func NodeCoverage(g *Context, overlap bool) table.Expr {
	return table.Func("node_coverage", func(ctx context.Context, f *table.Frame, opts table.Options) (table.Series, error) {
		var covered int64
		if overlap {
			s, err := table.SetUnion(table.Col(ColNodes)).Eval(ctx, f, opts)
			if err != nil {
				return nil, fmt.Errorf("metrics: node coverage: %w", err)
			}
			covered = int64(s.(*table.SetSeries).Values[0].Cardinality())
		} else {
			total, err := sumInt(ctx, f, opts, ColN)
			if err != nil {
				return nil, fmt.Errorf("metrics: node coverage: %w", err)
			}
			covered = total
		}
		v, ok := g.NodeCoverage(covered)
		return table.NullFloat64("node_coverage", v, ok), nil
	})
}

// CoverageGraph answers the edge-covering queries behind overlap-aware
// edge coverage.
type CoverageGraph interface {
	// CoveredEdges counts edges with both endpoints in nodes.
	CoveredEdges(ctx context.Context, nodes *nodeset.Set) (int64, error)
	// CoveredEdgesAny counts distinct edges with both endpoints inside at
	// least one of sets.
	CoveredEdgesAny(ctx context.Context, sets []*nodeset.Set) (int64, error)
}

// EdgeCoverageOptions selects the edge coverage variant.
type EdgeCoverageOptions struct {
	// Overlap asks the graph which edges each cluster covers instead of
	// summing the m column.
	Overlap bool
	// CountSharedEdgesOnce counts an edge covered by several overlapping
	// clusters once. When false every covering cluster counts it.
	CountSharedEdgesOnce bool
}

// EdgeCoverage is the share of graph edges inside some cluster, named
// "edge_coverage". g is only consulted when opts.Overlap is set and may be
// nil otherwise.
func EdgeCoverage(g *Context, graph CoverageGraph, opts EdgeCoverageOptions) table.Expr {
	return table.Func("edge_coverage", func(ctx context.Context, f *table.Frame, topts table.Options) (table.Series, error) {
		var covered int64
		var err error
		switch {
		case !opts.Overlap:
			covered, err = sumInt(ctx, f, topts, ColM)
		case graph == nil:
			err = fmt.Errorf("overlap requires a graph")
		case opts.CountSharedEdgesOnce:
			covered, err = coveredOnce(ctx, f, graph)
		default:
			covered, err = coveredEach(ctx, f, topts, graph)
		}
		if err != nil {
			return nil, fmt.Errorf("metrics: edge coverage: %w", err)
		}
		v, ok := g.EdgeCoverage(covered)
		return table.NullFloat64("edge_coverage", v, ok), nil
	})
}

func sumInt(ctx context.Context, f *table.Frame, opts table.Options, col string) (int64, error) {
	s, err := table.Sum(table.Col(col)).Eval(ctx, f, opts)
	if err != nil {
		return 0, err
	}
	switch t := s.(type) {
	case *table.Int64Series:
		return t.Values[0], nil
	case *table.Float64Series:
		return int64(t.Values[0]), nil
	}
	return 0, fmt.Errorf("%w: %q", table.ErrKind, col)
}

func coveredOnce(ctx context.Context, f *table.Frame, graph CoverageGraph) (int64, error) {
	sets, err := f.SetCol(ColNodes)
	if err != nil {
		return 0, err
	}
	return graph.CoveredEdgesAny(ctx, sets.Values)
}

func coveredEach(ctx context.Context, f *table.Frame, opts table.Options, graph CoverageGraph) (int64, error) {
	sets, err := f.SetCol(ColNodes)
	if err != nil {
		return 0, err
	}
	per := make([]int64, sets.Len())
	err = table.ForChunks(ctx, sets.Len(), opts, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			n, err := graph.CoveredEdges(ctx, sets.Values[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			per[i] = n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, n := range per {
		total += n
	}
	return total, nil
}

// DefaultModularityResolution is the modularity resolution used when
// Options leaves it at zero.
const DefaultModularityResolution = 1.0

// Options configures the named statistics resolved by Statistic.
type Options struct {
	// CPMResolution is required for cpm; nil makes cpm fail with
	// ErrNoResolution.
	CPMResolution *float64
	// ModularityResolution of zero means DefaultModularityResolution.
	ModularityResolution float64
	ZeroVolume           ZeroVolumePolicy
}

func (o Options) modularityResolution() float64 {
	if o.ModularityResolution == 0 {
		return DefaultModularityResolution
	}
	return o.ModularityResolution
}

// missingResolution is the cpm column when no resolution was given.
func missingResolution() table.Expr {
	return table.Func("cpm", func(context.Context, *table.Frame, table.Options) (table.Series, error) {
		return nil, ErrNoResolution
	})
}

// Statistic resolves a per-cluster statistic by name: one of cpm, vol,
// modularity, vol1 or conductance, or else an existing column.
func Statistic(g *Context, name string, opts Options) table.Expr {
	switch name {
	case "cpm":
		if opts.CPMResolution == nil {
			return missingResolution()
		}
		return CPM(*opts.CPMResolution)
	case "vol":
		return Vol()
	case "modularity":
		return Modularity(g, opts.modularityResolution())
	case "vol1":
		return Vol1(g)
	case "conductance":
		return Conductance(g, opts.ZeroVolume)
	default:
		return table.Col(name)
	}
}

// Statistics resolves several names with Statistic.
func Statistics(g *Context, names []string, opts Options) []table.Expr {
	out := make([]table.Expr, len(names))
	for i, n := range names {
		out[i] = Statistic(g, n, opts)
	}
	return out
}
