package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/graph"
	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/table"
)

// Options configures a Reporter. The zero value reports non-overlapping
// coverage, modularity at resolution 1, null conductance on zero volume,
// and GOMAXPROCS-wide evaluation. cpm needs Metrics.CPMResolution.
type Options struct {
	Metrics metrics.Options
	// Overlap switches node and edge coverage to the set-based variants.
	Overlap bool
	// CountSharedEdgesOnce applies to overlap edge coverage only.
	CountSharedEdgesOnce bool
	Table                table.Options
	Logger               *zap.Logger
}

// Reporter computes reports for clusterings of one graph. The graph-level
// context is read once in New and shared by every report.
type Reporter struct {
	engine graph.Engine
	mctx   *metrics.Context
	opts   Options
	log    *zap.Logger
}

// New reads the graph-level context from e.
func New(ctx context.Context, e graph.Engine, opts Options) (*Reporter, error) {
	mctx, err := metrics.NewContext(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{engine: e, mctx: mctx, opts: opts, log: log}, nil
}

// Context returns the shared graph-level context.
func (r *Reporter) Context() *metrics.Context { return r.mctx }

// Engine returns the graph the reporter reads from.
func (r *Reporter) Engine() graph.Engine { return r.engine }

// WithOverlap returns a copy of r that computes coverage with the given
// overlap setting. The graph-level context is shared.
func (r *Reporter) WithOverlap(overlap bool) *Reporter {
	c := *r
	c.opts.Overlap = overlap
	return &c
}

// Statistics resolves statistic names (cpm, vol, modularity, vol1,
// conductance or a column) against the reporter's context and options.
func (r *Reporter) Statistics(names ...string) []table.Expr {
	return metrics.Statistics(r.mctx, names, r.opts.Metrics)
}

func (r *Reporter) nodeCoverage() table.Expr {
	return metrics.NodeCoverage(r.mctx, r.opts.Overlap)
}

func (r *Reporter) edgeCoverage() table.Expr {
	return metrics.EdgeCoverage(r.mctx, r.engine, metrics.EdgeCoverageOptions{
		Overlap:              r.opts.Overlap,
		CountSharedEdgesOnce: r.opts.CountSharedEdgesOnce,
	})
}

// VerboseStatistics selects node_coverage, edge_coverage and stats from
// clustering. The coverages are broadcast when stats are per-cluster.
func (r *Reporter) VerboseStatistics(ctx context.Context, clustering *table.Frame, stats ...table.Expr) (*table.Frame, error) {
	start := time.Now()
	exprs := append([]table.Expr{r.nodeCoverage(), r.edgeCoverage()}, stats...)
	out, err := table.Select(ctx, clustering, r.opts.Table, exprs...)
	if err != nil {
		return nil, fmt.Errorf("report: verbose statistics: %w", err)
	}
	r.log.Debug("verbose statistics",
		zap.Int("clusters", clustering.Len()),
		zap.Int("columns", out.Width()),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// SummaryStatistics describes the verbose statistics: count, null_count,
// mean, std, min, quartiles and max per numeric column, nulls excluded.
func (r *Reporter) SummaryStatistics(ctx context.Context, clustering *table.Frame, stats ...table.Expr) (*table.Frame, error) {
	verbose, err := r.VerboseStatistics(ctx, clustering, stats...)
	if err != nil {
		return nil, err
	}
	out, err := table.Describe(verbose)
	if err != nil {
		return nil, fmt.Errorf("report: summary statistics: %w", err)
	}
	return out, nil
}

// Peek is a one-row overview: n_clusters, node_coverage, edge_coverage and
// a [min, median, max] list for each statistic. With no stats the cluster
// size n is used.
func (r *Reporter) Peek(ctx context.Context, clustering *table.Frame, stats ...table.Expr) (*table.Frame, error) {
	if len(stats) == 0 {
		stats = []table.Expr{table.Col(metrics.ColN)}
	}
	exprs := []table.Expr{
		table.Alias(table.Count(table.Col(metrics.ColNodes)), "n_clusters"),
		r.nodeCoverage(),
		r.edgeCoverage(),
	}
	for _, s := range stats {
		exprs = append(exprs, table.Quantiles(s, 0, 0.5, 1))
	}
	out, err := table.Select(ctx, clustering, r.opts.Table, exprs...)
	if err != nil {
		return nil, fmt.Errorf("report: peek: %w", err)
	}
	return out, nil
}

// GraphSummary is the one-row frame n, m, num_components, largest_component.
func (r *Reporter) GraphSummary() *table.Frame {
	return table.MustNew(
		table.NewInt64("n", []int64{r.mctx.N}),
		table.NewInt64("m", []int64{r.mctx.M}),
		table.NewInt64("num_components", []int64{int64(r.mctx.NumComponents)}),
		table.NewInt64("largest_component", []int64{int64(r.mctx.LargestComponent)}),
	)
}
