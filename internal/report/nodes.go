package report

import (
	"context"
	"fmt"

	"github.com/dusk-indust/belinda/internal/graph"
	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/table"
)

// Nodes pivots clustering into one row per clustered node: "node" holds the
// external id and "labels" the labels of every cluster containing it, in
// clustering row order. Rows are ascending by internal index; nodes in no
// cluster are left out.
func (r *Reporter) Nodes(ctx context.Context, clustering *table.Frame) (*table.Frame, error) {
	labels, err := clustering.StringCol(metrics.ColLabel)
	if err != nil {
		return nil, fmt.Errorf("report: nodes: %w", err)
	}
	sets, err := clustering.SetCol(metrics.ColNodes)
	if err != nil {
		return nil, fmt.Errorf("report: nodes: %w", err)
	}
	lookup, err := r.engine.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: nodes: %w", err)
	}

	perNode := make([][]string, r.mctx.N)
	for i, s := range sets.Values {
		var outOfRange error
		s.Iterate(func(id uint32) bool {
			if int64(id) >= r.mctx.N {
				outOfRange = fmt.Errorf("%w: index %d", graph.ErrUnknownNode, id)
				return false
			}
			perNode[id] = append(perNode[id], labels.Values[i])
			return true
		})
		if outOfRange != nil {
			return nil, fmt.Errorf("report: nodes: cluster %q: %w", labels.Values[i], outOfRange)
		}
	}

	var names []string
	var lists [][]string
	for id, ls := range perNode {
		if len(ls) == 0 {
			continue
		}
		names = append(names, lookup.ExternalID(uint32(id)))
		lists = append(lists, ls)
	}
	return table.New(
		table.NewString("node", names),
		table.NewStringList("labels", lists),
	)
}

// AnnotateComponents adds "cc", the connected component label of each row's
// node, and "cc_size", that component's node count, to a frame with a "node"
// column of external ids such as the output of Nodes.
func (r *Reporter) AnnotateComponents(ctx context.Context, nodes *table.Frame) (*table.Frame, error) {
	names, err := nodes.StringCol("node")
	if err != nil {
		return nil, fmt.Errorf("report: annotate components: %w", err)
	}
	cc := make([]int64, names.Len())
	size := make([]int64, names.Len())
	err = table.ForChunks(ctx, names.Len(), r.opts.Table, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			id, ok, err := r.engine.Resolve(ctx, names.Values[i])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", graph.ErrUnknownNode, names.Values[i])
			}
			label, err := r.engine.ComponentLabel(ctx, id)
			if err != nil {
				return err
			}
			n, err := r.engine.ComponentSize(ctx, label)
			if err != nil {
				return err
			}
			cc[i], size[i] = int64(label), int64(n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("report: annotate components: %w", err)
	}
	return nodes.With(table.NewInt64("cc", cc), table.NewInt64("cc_size", size))
}
