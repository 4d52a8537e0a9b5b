// Package nodeset provides Set, an immutable compact set of node indices
// drawn from a bounded universe [0, U).
//
// A Set is the per-row value of a clustering's "nodes" column. Millions of
// them may be alive at once, so storage is a Roaring bitmap: small sets are
// kept as sorted arrays, dense ones as bitmaps, and the choice is made per
// 2^16-wide container without the caller noticing.
//
// Sets never change after construction. Union always allocates a new Set,
// which makes a Set safe to share across goroutines without locking.
package nodeset
