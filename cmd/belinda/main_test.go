package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dusk-indust/belinda/internal/config"
)

const testEdges = "# two halves joined by two edges\na0 a1\na1 a2\na2 a3\na3 a4\nb0 b1\nb1 b2\nb3 b4\na4 b0\na0 b4\n"

const testMembership = "a0\tA\na1\tA\na2\tA\na3\tA\na4\tA\nb0\tB\nb1\tB\nb2\tB\nb3\tB\nb4\tB\n"

// fixture writes the test graph and clustering into a temp dir and returns
// the flags pointing at them.
func fixture(t *testing.T) (dir string, args []string) {
	t.Helper()
	dir = t.TempDir()
	graphPath := filepath.Join(dir, "graph.txt")
	clusterPath := filepath.Join(dir, "clustering.tsv")
	require.NoError(t, os.WriteFile(graphPath, []byte(testEdges), 0o644))
	require.NoError(t, os.WriteFile(clusterPath, []byte(testMembership), 0o644))
	return dir, []string{"-graph", graphPath, "-clustering", clusterPath}
}

// runCLI runs the command line and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRun_Version(t *testing.T) {
	out, err := runCLI(t, "-version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestRun_MissingCommand(t *testing.T) {
	_, err := runCLI(t)
	assert.Error(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	_, args := fixture(t)
	_, err := runCLI(t, append(args, "frobnicate")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestRun_MissingGraph(t *testing.T) {
	_, err := runCLI(t, "graph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-graph")
}

func TestRun_Graph(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "graph")...)
	require.NoError(t, err)
	assert.Equal(t, "n\tm\tnum_components\tlargest_component\n10\t9\t1\t10\n", out)
}

func TestRun_Stats(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "-stats", "n,conductance", "stats")...)
	require.NoError(t, err)
	assert.Equal(t,
		"node_coverage\tedge_coverage\tn\tconductance\n"+
			"1\t0.7777777777777778\t5\t0.25\n"+
			"1\t0.7777777777777778\t5\t0.25\n", out)
}

func TestRun_Summary(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "-stats", "m", "summary")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "statistic\tnode_coverage\tedge_coverage\tm", lines[0])
	assert.Equal(t, "mean\t1\t0.7777777777777778\t3.5", lines[3])
	assert.Equal(t, "50%\t1\t0.7777777777777778\t3.5", lines[7])
}

func TestRun_Peek(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "peek")...)
	require.NoError(t, err)
	assert.Equal(t, "n_clusters\tnode_coverage\tedge_coverage\tn\n2\t1\t0.7777777777777778\t[5,5,5]\n", out)
}

func TestRun_Nodes(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "nodes")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "node\tlabels\tcc\tcc_size", lines[0])
	assert.Equal(t, "a0\t[\"A\"]\t0\t10", lines[1])
}

func TestRun_Diagram(t *testing.T) {
	_, args := fixture(t)
	out, err := runCLI(t, append(args, "diagram")...)
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n  C0[\"A (n=5)\"]\n  C1[\"B (n=5)\"]\n  C0 ---|2| C1\n", out)
}

func TestRun_Exports(t *testing.T) {
	dir, args := fixture(t)

	membership := filepath.Join(dir, "out.tsv")
	_, err := runCLI(t, append(args, "membership", membership)...)
	require.NoError(t, err)
	data, err := os.ReadFile(membership)
	require.NoError(t, err)
	assert.Equal(t, testMembership, string(data))

	records := filepath.Join(dir, "out.ndjson")
	_, err = runCLI(t, append(args, "-stats", "conductance", "json", records)...)
	require.NoError(t, err)
	data, err = os.ReadFile(records)
	require.NoError(t, err)
	assert.Equal(t,
		`{"label":"A","nodes":["a0","a1","a2","a3","a4"],"n":5,"m":4,"c":2,"conductance":0.25}`+"\n"+
			`{"label":"B","nodes":["b0","b1","b2","b3","b4"],"n":5,"m":3,"c":2,"conductance":0.25}`+"\n",
		string(data))

	dbPath := filepath.Join(dir, "out.db")
	_, err = runCLI(t, append(args, "sqlite", dbPath)...)
	require.NoError(t, err)
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	var clusters, nodes int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM clusters").Scan(&clusters))
	require.NoError(t, db.QueryRow("SELECT n FROM graph_summary").Scan(&nodes))
	assert.Equal(t, 2, clusters)
	assert.Equal(t, 10, nodes)

	_, err = runCLI(t, append(args, "json")...)
	assert.Error(t, err, "json needs an output path")
}

func TestRun_ConfigFileAndOverrides(t *testing.T) {
	dir, args := fixture(t)
	cfgPath := filepath.Join(dir, "belinda.yml")
	cfg := "graph: " + args[1] + "\nclustering: " + args[3] + "\nstatistics: [cpm]\ncpmResolution: 0.5\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	// cpm(A) = 4 - 0.5*5*4/2 = -1
	out, err := runCLI(t, "-config", cfgPath, "stats")
	require.NoError(t, err)
	assert.Equal(t, "node_coverage\tedge_coverage\tcpm\n1\t0.7777777777777778\t-1\n1\t0.7777777777777778\t-2\n", out)

	// The flag wins over the file.
	out, err = runCLI(t, "-config", cfgPath, "-cpm-resolution", "0", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "\t4\n")

	_, err = runCLI(t, "-config", filepath.Join(dir, "missing.yml"), "graph")
	assert.Error(t, err)
}

func TestRun_ResolutionsAreIndependent(t *testing.T) {
	_, args := fixture(t)
	args = append(args, "-stats", "cpm,modularity")

	_, err := runCLI(t, append(args, "stats")...)
	require.Error(t, err, "cpm has no default resolution")
	assert.Contains(t, err.Error(), "cpm needs a resolution")

	out, err := runCLI(t, append(args, "-cpm-resolution", "0.1", "stats")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "node_coverage\tedge_coverage\tcpm\tmodularity", lines[0])
	fields := strings.Split(lines[1], "\t")
	cpm, err := strconv.ParseFloat(fields[2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, cpm, 1e-12)
	q, err := strconv.ParseFloat(fields[3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/9-25.0/81, q, 1e-12, "modularity stays at resolution 1")

	out, err = runCLI(t, append(args, "-cpm-resolution", "0.1", "-modularity-resolution", "2", "stats")...)
	require.NoError(t, err)
	fields = strings.Split(strings.Split(out, "\n")[1], "\t")
	q, err = strconv.ParseFloat(fields[3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/9-2*25.0/81, q, 1e-12)
}

func TestRun_ZeroVolumeError(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.txt")
	clusterPath := filepath.Join(dir, "clustering.tsv")
	require.NoError(t, os.WriteFile(graphPath, []byte("x y\n"), 0o644))
	// Both endpoints in one cluster leaves an empty complement.
	require.NoError(t, os.WriteFile(clusterPath, []byte("x\tall\ny\tall\n"), 0o644))
	args := []string{"-graph", graphPath, "-clustering", clusterPath, "-stats", "conductance"}

	out, err := runCLI(t, append(args, "stats")...)
	require.NoError(t, err)
	assert.Equal(t, "node_coverage\tedge_coverage\tconductance\n1\t1\t\n", out)

	_, err = runCLI(t, append(args, "-zero-volume", "error", "stats")...)
	assert.Error(t, err)
}

func TestRun_Init(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created ./belinda.yml")
	assert.Contains(t, out, "created .mcp.json")

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"serve-mcp"`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "graph.txt", cfg.Graph)
	assert.Equal(t, []string{"n", "m", "c", "conductance", "modularity"}, cfg.Statistics)

	out, err = runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped ./belinda.yml")
	assert.Contains(t, out, "skipped .mcp.json belinda entry")
}

func TestRun_InitMergesExistingMCPConfig(t *testing.T) {
	dir := t.TempDir()
	existing := `{"mcpServers": {"other": {"type": "stdio", "command": "other"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(existing), 0o644))

	out, err := runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "updated .mcp.json")

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"other"`)
	assert.Contains(t, string(data), `"belinda"`)
}
