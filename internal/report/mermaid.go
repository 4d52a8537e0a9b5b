package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/nodeset"
	"github.com/dusk-indust/belinda/internal/table"
)

// MaxDiagramClusters bounds the clusterings Mermaid will draw. Every pair of
// clusters costs an edge count.
const MaxDiagramClusters = 500

// Mermaid renders the cluster graph of clustering as a Mermaid graph TD
// diagram: one node per cluster, labelled with its label and size, and one
// link per pair of clusters joined by at least one edge, labelled with the
// number of such edges. Edges with both endpoints in the shared part of two
// overlapping clusters do not join them.
func (r *Reporter) Mermaid(ctx context.Context, clustering *table.Frame) (string, error) {
	labels, err := clustering.StringCol(metrics.ColLabel)
	if err != nil {
		return "", fmt.Errorf("report: mermaid: %w", err)
	}
	sets, err := clustering.SetCol(metrics.ColNodes)
	if err != nil {
		return "", fmt.Errorf("report: mermaid: %w", err)
	}
	k := sets.Len()
	if k > MaxDiagramClusters {
		return "", fmt.Errorf("report: mermaid: %d clusters, at most %d can be drawn", k, MaxDiagramClusters)
	}

	internal := make([]int64, k)
	err = table.ForChunks(ctx, k, r.opts.Table, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			m, err := r.engine.CoveredEdges(ctx, sets.Values[i])
			if err != nil {
				return err
			}
			internal[i] = m
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("report: mermaid: %w", err)
	}

	// between[i] holds the link counts from cluster i to clusters j > i.
	between := make([][]int64, k)
	err = table.ForChunks(ctx, k, r.opts.Table, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			row := make([]int64, k)
			for j := i + 1; j < k; j++ {
				n, err := r.crossingEdges(ctx, sets.Values[i], sets.Values[j], internal[i]+internal[j])
				if err != nil {
					return err
				}
				row[j] = n
			}
			between[i] = row
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("report: mermaid: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for i, label := range labels.Values {
		fmt.Fprintf(&sb, "  C%d[\"%s (n=%d)\"]\n", i, mermaidEscape(truncateRunes(label, mermaidLabelRunes)), sets.Values[i].Cardinality())
	}
	for i := range k {
		for j := i + 1; j < k; j++ {
			if n := between[i][j]; n > 0 {
				fmt.Fprintf(&sb, "  C%d ---|%d| C%d\n", i, n, j)
			}
		}
	}
	return sb.String(), nil
}

// crossingEdges counts edges with one endpoint only in a and the other only
// in b, by inclusion-exclusion over the edges inside a ∪ b.
func (r *Reporter) crossingEdges(ctx context.Context, a, b *nodeset.Set, inside int64) (int64, error) {
	union, err := r.engine.CoveredEdges(ctx, a.Union(b))
	if err != nil {
		return 0, err
	}
	shared := a.Intersect(b)
	var sharedEdges int64
	if shared.Cardinality() > 1 {
		if sharedEdges, err = r.engine.CoveredEdges(ctx, shared); err != nil {
			return 0, err
		}
	}
	return union - inside + sharedEdges, nil
}

// mermaidLabelRunes caps node labels before escaping, so an escape is never
// cut in half.
const mermaidLabelRunes = 40

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func mermaidEscape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
