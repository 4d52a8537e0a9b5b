package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/graph"
	"github.com/dusk-indust/belinda/internal/report"
	"github.com/dusk-indust/belinda/internal/table"
)

// MetricsService answers MCP tool calls from a loaded graph.
type MetricsService struct {
	reporter *report.Reporter
	opts     report.Options
	log      *zap.Logger
}

// NewMetricsService reads the graph-level context from e. opts supplies the
// defaults that tool inputs may override.
func NewMetricsService(ctx context.Context, e graph.Engine, opts report.Options) (*MetricsService, error) {
	r, err := report.New(ctx, e, opts)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &MetricsService{reporter: r, opts: opts, log: log}, nil
}

// GraphSummary returns node, edge and component counts.
func (s *MetricsService) GraphSummary(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GraphSummaryInput,
) (*mcp.CallToolResult, GraphSummaryOutput, error) {
	mctx := s.reporter.Context()
	return nil, GraphSummaryOutput{Summary: graph.Summary{
		Nodes:            int(mctx.N),
		Edges:            mctx.M,
		NumComponents:    mctx.NumComponents,
		LargestComponent: mctx.LargestComponent,
	}}, nil
}

// PeekClustering returns the one-row peek of a clustering.
func (s *MetricsService) PeekClustering(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClusteringInput,
) (*mcp.CallToolResult, FrameOutput, error) {
	return s.clusteringReport(ctx, "peek_clustering", input, (*report.Reporter).Peek)
}

// VerboseStatistics returns coverage plus per-cluster statistics.
func (s *MetricsService) VerboseStatistics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClusteringInput,
) (*mcp.CallToolResult, FrameOutput, error) {
	return s.clusteringReport(ctx, "verbose_statistics", input, (*report.Reporter).VerboseStatistics)
}

// SummarizeClustering returns the describe table of the verbose statistics.
func (s *MetricsService) SummarizeClustering(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClusteringInput,
) (*mcp.CallToolResult, FrameOutput, error) {
	return s.clusteringReport(ctx, "summarize_clustering", input, (*report.Reporter).SummaryStatistics)
}

type reportFunc func(r *report.Reporter, ctx context.Context, clustering *table.Frame, stats ...table.Expr) (*table.Frame, error)

func (s *MetricsService) clusteringReport(ctx context.Context, tool string, input ClusteringInput, fn reportFunc) (*mcp.CallToolResult, FrameOutput, error) {
	r := s.reporter
	if input.Overlap != nil {
		r = r.WithOverlap(*input.Overlap)
	}
	clustering, err := s.loadClustering(ctx, input.Clustering)
	if err != nil {
		return nil, FrameOutput{}, err
	}
	out, err := fn(r, ctx, clustering, r.Statistics(input.Statistics...)...)
	if err != nil {
		return nil, FrameOutput{}, err
	}
	s.log.Info("tool call",
		zap.String("tool", tool),
		zap.String("clustering", input.Clustering),
		zap.Int("clusters", clustering.Len()))
	return nil, frameOutput(out), nil
}

// ExportClustering writes a clustering to disk in the requested format.
func (s *MetricsService) ExportClustering(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportClusteringInput,
) (*mcp.CallToolResult, ExportClusteringOutput, error) {
	if input.Output == "" {
		return nil, ExportClusteringOutput{}, fmt.Errorf("output is required")
	}
	clustering, err := s.loadClustering(ctx, input.Clustering)
	if err != nil {
		return nil, ExportClusteringOutput{}, err
	}
	r := s.reporter
	if input.Format != "membership" && len(input.Statistics) > 0 {
		clustering, err = table.WithColumns(ctx, clustering, s.opts.Table, r.Statistics(input.Statistics...)...)
		if err != nil {
			return nil, ExportClusteringOutput{}, err
		}
	}

	switch input.Format {
	case "membership":
		err = r.WriteMembershipFile(ctx, input.Output, clustering)
	case "json":
		err = r.WriteJSONFile(ctx, input.Output, clustering)
	case "sqlite":
		err = r.WriteSQLiteFile(ctx, input.Output, "clusters", clustering)
	default:
		err = fmt.Errorf("unknown format %q (want membership, json or sqlite)", input.Format)
	}
	if err != nil {
		return nil, ExportClusteringOutput{}, err
	}
	return nil, ExportClusteringOutput{Output: input.Output, Clusters: clustering.Len()}, nil
}

// ClusterDiagram renders the cluster graph of a clustering as Mermaid.
func (s *MetricsService) ClusterDiagram(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClusterDiagramInput,
) (*mcp.CallToolResult, ClusterDiagramOutput, error) {
	clustering, err := s.loadClustering(ctx, input.Clustering)
	if err != nil {
		return nil, ClusterDiagramOutput{}, err
	}
	diagram, err := s.reporter.Mermaid(ctx, clustering)
	if err != nil {
		return nil, ClusterDiagramOutput{}, err
	}
	return nil, ClusterDiagramOutput{Mermaid: diagram}, nil
}

func (s *MetricsService) loadClustering(ctx context.Context, path string) (*table.Frame, error) {
	if path == "" {
		return nil, fmt.Errorf("clustering is required")
	}
	return graph.LoadClustering(ctx, path, s.reporter.Engine(), s.opts.Table)
}

// frameOutput converts a frame into its JSON tool result.
func frameOutput(f *table.Frame) FrameOutput {
	out := FrameOutput{Columns: f.Names(), Rows: make([]map[string]any, f.Len())}
	for i := range out.Rows {
		out.Rows[i] = f.Row(i)
	}
	return out
}
