package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMetricsMCPServer creates an MCP server with the clustering metric tools
// registered.
func NewMetricsMCPServer(svc *MetricsService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "belinda",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_summary",
		Description: "Return the node count, edge count, number of connected components and largest component size of the loaded graph.",
	}, svc.GraphSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "peek_clustering",
		Description: "One-row overview of a clustering: cluster count, node and edge coverage, and [min, median, max] of each statistic (default: cluster size n).",
	}, svc.PeekClustering)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "verbose_statistics",
		Description: "Node and edge coverage plus the requested per-cluster statistics, one row per cluster.",
	}, svc.VerboseStatistics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_clustering",
		Description: "Describe table (count, null_count, mean, std, min, quartiles, max) of node coverage, edge coverage and the requested statistics.",
	}, svc.SummarizeClustering)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_clustering",
		Description: "Write a clustering as a membership TSV, NDJSON records with external node ids, or a SQLite table.",
	}, svc.ExportClustering)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cluster_diagram",
		Description: "Mermaid graph TD diagram with one node per cluster and links labelled with the number of edges between clusters.",
	}, svc.ClusterDiagram)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
