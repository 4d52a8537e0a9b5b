package graph

// Counts are the per-cluster quantities every metric is built from.
type Counts struct {
	N int64 `json:"n"` // member nodes
	M int64 `json:"m"` // edges with both endpoints inside
	C int64 `json:"c"` // edges with exactly one endpoint inside
}

// Edge is an undirected edge between two internal node indices, stored with
// Source < Target.
type Edge struct {
	Source uint32 `json:"source"`
	Target uint32 `json:"target"`
}

// edgeKey packs an edge into a single 64-bit key.
func edgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// Summary is the graph-level overview reported by `belinda graph`.
type Summary struct {
	Nodes            int   `json:"n"`
	Edges            int64 `json:"m"`
	NumComponents    int   `json:"num_components"`
	LargestComponent int   `json:"largest_component"`
}
