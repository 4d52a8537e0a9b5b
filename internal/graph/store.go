package graph

import (
	"context"
	"errors"
	"io"

	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/nodeset"
)

// ErrUnknownNode is returned when an external node id is not in the graph.
var ErrUnknownNode = errors.New("graph: unknown node")

// Engine is the interface every graph backend implements.
// Implementations: KuzuGraph (cgo builds), MemGraph.
// All metric and report code reaches the graph through this interface.
type Engine interface {
	io.Closer

	// Graph-wide scalars.
	NodeCount(ctx context.Context) (int, error)
	EdgeCount(ctx context.Context) (int64, error)
	NumComponents(ctx context.Context) (int, error)
	LargestComponent(ctx context.Context) (int, error)

	// Edge counting over node sets.
	CoveredEdges(ctx context.Context, nodes *nodeset.Set) (int64, error)
	CoveredEdgesAny(ctx context.Context, sets []*nodeset.Set) (int64, error)
	ClusterCounts(ctx context.Context, nodes *nodeset.Set) (Counts, error)

	// Connectivity of single nodes.
	ComponentLabel(ctx context.Context, node uint32) (int, error)
	ComponentSize(ctx context.Context, label int) (int, error)

	// Id translation between internal indices and external names.
	Lookup(ctx context.Context) (nodeset.Lookup, error)
	Resolve(ctx context.Context, external string) (uint32, bool, error)
}

// The metric layer only needs a slice of Engine.
var (
	_ metrics.Graph         = Engine(nil)
	_ metrics.CoverageGraph = Engine(nil)
)
