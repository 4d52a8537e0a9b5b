// Package table is a small columnar host for clustering data.
//
// A Frame is an ordered list of equally long named Series. Computations are
// described as Expr values and only run when handed to Select or
// WithColumns, so callers can assemble a pipeline of metric columns first
// and evaluate it in one pass:
//
//	exprs := []table.Expr{
//		table.SetPopcount(table.Col("nodes")),
//		metrics.Conductance(mctx, metrics.ZeroVolumeNull),
//	}
//	out, err := table.Select(ctx, clustering, table.Options{}, exprs...)
//
// Row-wise expressions are evaluated in contiguous chunks on an errgroup;
// aggregating expressions produce a single row which Select broadcasts
// next to row-wise results.
//
// Float64 series carry a validity mask. Undefined results (a singleton's
// conductance, a ratio over an empty graph) are nulls, and Describe and
// Quantiles skip them.
package table
