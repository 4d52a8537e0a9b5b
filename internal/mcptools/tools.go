package mcptools

import "github.com/dusk-indust/belinda/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// GraphSummaryInput is the input for the graph_summary MCP tool.
type GraphSummaryInput struct{}

// GraphSummaryOutput is the result of the graph_summary MCP tool.
type GraphSummaryOutput struct {
	Summary graph.Summary `json:"summary"`
}

// ClusteringInput is the input shared by the clustering report tools.
type ClusteringInput struct {
	Clustering string   `json:"clustering" jsonschema:"path to a membership file with one node<TAB>label line per membership"`
	Statistics []string `json:"statistics,omitempty" jsonschema:"per-cluster statistics: n, m, c, cpm, vol, modularity, vol1, conductance. Default depends on the tool"`
	Overlap    *bool    `json:"overlap,omitempty" jsonschema:"treat clusters as possibly overlapping when computing coverage (default: server setting)"`
}

// FrameOutput is a table returned by the clustering report tools. Nulls are
// encoded as JSON null.
type FrameOutput struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ExportClusteringInput is the input for the export_clustering MCP tool.
type ExportClusteringInput struct {
	Clustering string   `json:"clustering" jsonschema:"path to a membership file with one node<TAB>label line per membership"`
	Format     string   `json:"format" jsonschema:"one of membership, json, sqlite"`
	Output     string   `json:"output" jsonschema:"path of the file to write"`
	Statistics []string `json:"statistics,omitempty" jsonschema:"statistics appended to each cluster for json and sqlite exports"`
}

// ExportClusteringOutput is the result of the export_clustering MCP tool.
type ExportClusteringOutput struct {
	Output   string `json:"output"`
	Clusters int    `json:"clusters"`
}

// ClusterDiagramInput is the input for the cluster_diagram MCP tool.
type ClusterDiagramInput struct {
	Clustering string `json:"clustering" jsonschema:"path to a membership file with one node<TAB>label line per membership"`
}

// ClusterDiagramOutput is the result of the cluster_diagram MCP tool.
type ClusterDiagramOutput struct {
	Mermaid string `json:"mermaid"`
}
