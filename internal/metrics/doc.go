// Package metrics holds the clustering quality formulas.
//
// Every formula is a pure function of one cluster's counts (n nodes, m
// internal edges, c cut edges) and, where noted, of the graph-wide Context
// (N nodes, M edges). Each one is available twice: as a method on Row for
// direct use, and as a table.Expr that reads the n, m and c columns of a
// clustering frame so it can be composed into a Select before anything is
// evaluated.
//
//	cpm         m - r·n·(n-1)/2
//	vol         2m + c
//	modularity  m/M - r·(vol/2M)²
//	vol1        min(vol, 2M - vol)
//	conductance c / vol1, null for singletons
//
// Undefined results are reported as nulls (ok == false), never as errors,
// except when a caller opts into ZeroVolumeError.
package metrics
