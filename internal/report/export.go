package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/table"
)

// WriteMembership writes one "node<TAB>label" line per membership, nodes
// ascending by internal index and labels in clustering row order. There is
// no header, so the output loads back with graph.ReadMembership.
func (r *Reporter) WriteMembership(ctx context.Context, w io.Writer, clustering *table.Frame) error {
	nodes, err := r.Nodes(ctx, clustering)
	if err != nil {
		return err
	}
	names, err := nodes.StringCol("node")
	if err != nil {
		return fmt.Errorf("report: write membership: %w", err)
	}
	col, err := nodes.Column("labels")
	if err != nil {
		return fmt.Errorf("report: write membership: %w", err)
	}
	labels := col.(*table.StringListSeries)

	bw := bufio.NewWriter(w)
	for i, node := range names.Values {
		for _, label := range labels.Values[i] {
			bw.WriteString(node)
			bw.WriteByte('\t')
			bw.WriteString(label)
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("report: write membership: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("report: write membership: %w", err)
	}
	return nil
}

// WriteJSON writes clustering as NDJSON, one object per cluster, with the
// nodes column replaced by the list of external node ids.
func (r *Reporter) WriteJSON(ctx context.Context, w io.Writer, clustering *table.Frame) error {
	lookup, err := r.engine.Lookup(ctx)
	if err != nil {
		return fmt.Errorf("report: write json: %w", err)
	}
	flat, err := table.WithColumns(ctx, clustering, r.opts.Table,
		table.SetFlatten(table.Col(metrics.ColNodes), lookup))
	if err != nil {
		return fmt.Errorf("report: write json: %w", err)
	}
	return table.WriteNDJSON(w, flat)
}

// WriteMembershipFile writes the membership export to path.
func (r *Reporter) WriteMembershipFile(ctx context.Context, path string, clustering *table.Frame) error {
	return r.writeFile(path, "membership", func(w io.Writer) error {
		return r.WriteMembership(ctx, w, clustering)
	})
}

// WriteJSONFile writes the NDJSON export to path.
func (r *Reporter) WriteJSONFile(ctx context.Context, path string, clustering *table.Frame) error {
	return r.writeFile(path, "json", func(w io.Writer) error {
		return r.WriteJSON(ctx, w, clustering)
	})
}

// writeFile creates path and runs write on it. A failed write leaves the
// partial file in place.
func (r *Reporter) writeFile(path, kind string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	r.log.Info("wrote export", zap.String("kind", kind), zap.String("path", path))
	return nil
}
