package graph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/nodeset"
	"github.com/dusk-indust/belinda/internal/table"
)

const maxLineSize = 1 << 20

// ReadEdgeList adds every edge in r to b. Each line holds two
// whitespace-separated external ids; further fields such as weights are
// ignored. Blank lines and lines starting with '#' or '%' are skipped.
func ReadEdgeList(r io.Reader, b *Builder) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '%' {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return fmt.Errorf("graph: edge list line %d: want two node ids, got %q", line, text)
		}
		b.AddEdge(fields[0], fields[1])
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("graph: read edge list: %w", err)
	}
	return nil
}

// LoadEdgeList reads the edge list file at path into a new Builder.
func LoadEdgeList(path string) (*Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph: open edge list: %w", err)
	}
	defer f.Close()

	b := NewBuilder()
	if err := ReadEdgeList(f, b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Membership is a clustering read from a membership file: cluster labels in
// first-seen order and the member sets in the same order.
type Membership struct {
	Labels []string
	Sets   []*nodeset.Set
}

// ReadMembership parses "node<TAB>label" lines, resolving every node through
// e. A node missing from the graph fails with ErrUnknownNode.
func ReadMembership(ctx context.Context, r io.Reader, e Engine) (*Membership, error) {
	n, err := e.NodeCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: read membership: %w", err)
	}

	var labels []string
	members := make(map[string][]uint32)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		node, label, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("graph: membership line %d: want node<TAB>label, got %q", line, text)
		}
		id, found, err := e.Resolve(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("graph: membership line %d: %w", line, err)
		}
		if !found {
			return nil, fmt.Errorf("graph: membership line %d: %w: %q", line, ErrUnknownNode, node)
		}
		if _, seen := members[label]; !seen {
			labels = append(labels, label)
		}
		members[label] = append(members[label], id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graph: read membership: %w", err)
	}

	out := &Membership{Labels: labels, Sets: make([]*nodeset.Set, len(labels))}
	for i, label := range labels {
		s, err := nodeset.New(uint32(n), members[label]...)
		if err != nil {
			return nil, fmt.Errorf("graph: cluster %q: %w", label, err)
		}
		out.Sets[i] = s
	}
	return out, nil
}

// LoadClustering reads the membership file at path and builds the cluster
// frame for it.
func LoadClustering(ctx context.Context, path string, e Engine, opts table.Options) (*table.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph: open clustering: %w", err)
	}
	defer f.Close()

	mem, err := ReadMembership(ctx, f, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return BuildClustering(ctx, e, mem, opts)
}

// BuildClustering produces the cluster frame with columns label, nodes, n, m
// and c. Counts are fetched from e concurrently, one call per cluster.
func BuildClustering(ctx context.Context, e Engine, mem *Membership, opts table.Options) (*table.Frame, error) {
	k := len(mem.Sets)
	n := make([]int64, k)
	m := make([]int64, k)
	c := make([]int64, k)
	err := table.ForChunks(ctx, k, opts, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			counts, err := e.ClusterCounts(ctx, mem.Sets[i])
			if err != nil {
				return fmt.Errorf("graph: cluster %q: %w", mem.Labels[i], err)
			}
			n[i], m[i], c[i] = counts.N, counts.M, counts.C
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table.New(
		table.NewString(metrics.ColLabel, mem.Labels),
		table.NewSet(metrics.ColNodes, mem.Sets),
		table.NewInt64(metrics.ColN, n),
		table.NewInt64(metrics.ColM, m),
		table.NewInt64(metrics.ColC, c),
	)
}

// Summarize reads the graph-level overview from e.
func Summarize(ctx context.Context, e Engine) (Summary, error) {
	mctx, err := metrics.NewContext(ctx, e)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Nodes:            int(mctx.N),
		Edges:            mctx.M,
		NumComponents:    mctx.NumComponents,
		LargestComponent: mctx.LargestComponent,
	}, nil
}
