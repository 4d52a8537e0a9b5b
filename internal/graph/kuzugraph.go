//go:build cgo

package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"
	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/belinda/internal/nodeset"
)

// ErrPopulated is returned by Import when the database already holds a graph.
var ErrPopulated = errors.New("graph: kuzu database already populated")

// KuzuGraph implements Engine on top of KuzuDB. Edge counts run as Cypher
// queries; the id table and connected components are read once into memory
// when the graph is loaded. It requires CGO because the go-kuzu driver wraps
// KuzuDB's C library.
type KuzuGraph struct {
	mu   sync.Mutex // serializes use of conn
	db   *kuzu.Database
	conn *kuzu.Connection

	ids      nodeset.IDTable
	index    map[string]uint32
	m        int64
	comp     []int
	compSize []int
}

// Compile-time check that KuzuGraph satisfies Engine.
var _ Engine = (*KuzuGraph)(nil)

// OpenKuzuGraph opens the KuzuDB database at dbPath, creating the schema if
// needed and loading any graph already stored there. An empty path or
// ":memory:" opens an in-memory database.
func OpenKuzuGraph(ctx context.Context, dbPath string) (*KuzuGraph, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if dbPath != ":memory:" {
		// KuzuDB creates the leaf directory itself.
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
		}
	}
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	g := &KuzuGraph{db: db, conn: conn}
	if err := g.initSchema(); err != nil {
		g.Close()
		return nil, err
	}
	if err := g.load(ctx); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Close releases the KuzuDB connection and database.
func (g *KuzuGraph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		g.conn.Close()
		g.conn = nil
	}
	if g.db != nil {
		g.db.Close()
		g.db = nil
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by initSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Node(
		idx INT64,
		name STRING,
		PRIMARY KEY(idx)
	)`,
	`CREATE REL TABLE IF NOT EXISTS LINK(FROM Node TO Node)`,
}

func (g *KuzuGraph) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := g.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// Import stores the graph accumulated in b. Each undirected edge is stored
// once, directed from the smaller index to the larger. The database must
// be empty.
func (g *KuzuGraph) Import(ctx context.Context, b *Builder) error {
	g.mu.Lock()
	if len(g.ids) > 0 {
		g.mu.Unlock()
		return ErrPopulated
	}

	names := b.Names()
	nodes := make([]map[string]any, len(names))
	for i, name := range names {
		nodes[i] = map[string]any{"idx": int64(i), "name": name}
	}
	err := g.execMany(ctx, "CREATE (n:Node {idx: $idx, name: $name})", nodes)
	if err == nil {
		edges := b.Edges()
		links := make([]map[string]any, len(edges))
		for i, e := range edges {
			links[i] = map[string]any{"src": int64(e.Source), "dst": int64(e.Target)}
		}
		err = g.execMany(ctx,
			`MATCH (a:Node {idx: $src}), (b:Node {idx: $dst})
			 CREATE (a)-[:LINK]->(b)`, links)
	}
	g.mu.Unlock()
	if err != nil {
		return fmt.Errorf("kuzu: import: %w", err)
	}
	return g.load(ctx)
}

// ---------- Loading ----------

// load reads the id table and edge list and labels components.
func (g *KuzuGraph) load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows, err := g.query(ctx, "MATCH (n:Node) RETURN n.idx, n.name ORDER BY n.idx")
	if err != nil {
		return err
	}
	ids := make(nodeset.IDTable, len(rows))
	index := make(map[string]uint32, len(rows))
	for i, r := range rows {
		if toInt(r[0]) != i {
			return fmt.Errorf("kuzu: node indices are not dense at %d", i)
		}
		ids[i] = toString(r[1])
		index[ids[i]] = uint32(i)
	}

	rows, err = g.query(ctx, "MATCH (a:Node)-[:LINK]->(b:Node) RETURN a.idx, b.idx")
	if err != nil {
		return err
	}
	edges := make([]Edge, len(rows))
	for i, r := range rows {
		edges[i] = Edge{Source: uint32(toInt(r[0])), Target: uint32(toInt(r[1]))}
	}

	mem := newMemGraph(ids, edges)
	g.ids, g.index, g.m = ids, index, int64(len(edges))
	g.comp, g.compSize = labelComponents(len(ids), mem.neighbors)
	return nil
}

// ---------- Read operations ----------

// NodeCount counts Node rows.
func (g *KuzuGraph) NodeCount(ctx context.Context) (int, error) {
	n, err := g.count(ctx, "MATCH (n:Node) RETURN count(n)")
	return int(n), err
}

// EdgeCount counts LINK rows.
func (g *KuzuGraph) EdgeCount(ctx context.Context) (int64, error) {
	return g.count(ctx, "MATCH ()-[r:LINK]->() RETURN count(r)")
}

// NumComponents returns the number of connected components.
func (g *KuzuGraph) NumComponents(_ context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.compSize), nil
}

// LargestComponent returns the node count of the largest component.
func (g *KuzuGraph) LargestComponent(_ context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	largest := 0
	for _, s := range g.compSize {
		largest = max(largest, s)
	}
	return largest, nil
}

// ComponentLabel returns the component label of node.
func (g *KuzuGraph) ComponentLabel(_ context.Context, node uint32) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(node) >= len(g.comp) {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownNode, node)
	}
	return g.comp[node], nil
}

// ComponentSize returns the number of nodes carrying label.
func (g *KuzuGraph) ComponentSize(_ context.Context, label int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if label < 0 || label >= len(g.compSize) {
		return 0, fmt.Errorf("graph: component %d out of range", label)
	}
	return g.compSize[label], nil
}

// CoveredEdges counts LINK rows with both endpoints in nodes.
func (g *KuzuGraph) CoveredEdges(ctx context.Context, nodes *nodeset.Set) (int64, error) {
	if nodes.IsEmpty() {
		return 0, nil
	}
	if err := g.checkMembers(nodes); err != nil {
		return 0, err
	}
	list := idList(nodes)
	return g.count(ctx, fmt.Sprintf(
		"MATCH (a:Node)-[:LINK]->(b:Node) WHERE a.idx IN %s AND b.idx IN %s RETURN count(*)", list, list))
}

// CoveredEdgesAny collects the covered edges of every set and counts the
// distinct ones.
func (g *KuzuGraph) CoveredEdgesAny(ctx context.Context, sets []*nodeset.Set) (int64, error) {
	seen := roaring64.New()
	for _, s := range sets {
		if s.IsEmpty() {
			continue
		}
		if err := g.checkMembers(s); err != nil {
			return 0, err
		}
		list := idList(s)
		g.mu.Lock()
		rows, err := g.query(ctx, fmt.Sprintf(
			"MATCH (a:Node)-[:LINK]->(b:Node) WHERE a.idx IN %s AND b.idx IN %s RETURN a.idx, b.idx", list, list))
		g.mu.Unlock()
		if err != nil {
			return 0, err
		}
		for _, r := range rows {
			seen.Add(edgeKey(uint32(toInt(r[0])), uint32(toInt(r[1]))))
		}
	}
	return int64(seen.GetCardinality()), nil
}

// ClusterCounts returns n, m and c for nodes. The cut is counted over the
// undirected LINK pattern so both stored directions are seen.
func (g *KuzuGraph) ClusterCounts(ctx context.Context, nodes *nodeset.Set) (Counts, error) {
	if nodes.IsEmpty() {
		return Counts{}, nil
	}
	// CoveredEdges rejects foreign members before the cut query runs.
	m, err := g.CoveredEdges(ctx, nodes)
	if err != nil {
		return Counts{}, err
	}
	list := idList(nodes)
	c, err := g.count(ctx, fmt.Sprintf(
		"MATCH (a:Node)-[:LINK]-(b:Node) WHERE a.idx IN %s AND NOT (b.idx IN %s) RETURN count(*)", list, list))
	if err != nil {
		return Counts{}, err
	}
	return Counts{N: int64(nodes.Cardinality()), M: m, C: c}, nil
}

// Lookup returns the internal to external id table loaded with the graph.
func (g *KuzuGraph) Lookup(_ context.Context) (nodeset.Lookup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ids, nil
}

// Resolve maps an external id to its internal index.
func (g *KuzuGraph) Resolve(_ context.Context, external string) (uint32, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.index[external]
	return id, ok, nil
}

// ---------- Internal helpers ----------

// checkMembers rejects sets holding indexes past the loaded node table. The
// IN filters would otherwise drop them silently.
func (g *KuzuGraph) checkMembers(nodes *nodeset.Set) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if last, ok := nodes.Max(); ok && int(last) >= len(g.ids) {
		return fmt.Errorf("%w: index %d (graph has %d nodes)", ErrUnknownNode, last, len(g.ids))
	}
	return nil
}

// idList renders the members of s as a Cypher list literal. Members are
// integers, so inlining them cannot inject Cypher.
func idList(s *nodeset.Set) string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	s.Iterate(func(id uint32) bool {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// count runs a single-value count query.
func (g *KuzuGraph) count(ctx context.Context, cypher string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rows, err := g.query(ctx, cypher)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return int64(toInt(rows[0][0])), nil
}

// execMany prepares cypher once and executes it for every parameter set.
// The caller holds g.mu.
func (g *KuzuGraph) execMany(ctx context.Context, cypher string, params []map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	stmt, err := g.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range params {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := g.conn.Execute(stmt, p)
		if err != nil {
			return fmt.Errorf("kuzu: execute: %w", err)
		}
		res.Close()
	}
	return nil
}

// query runs a Cypher statement and collects all result rows. Each row is a
// []any slice with values in column order. The caller holds g.mu.
func (g *KuzuGraph) query(ctx context.Context, cypher string) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.conn == nil {
		return nil, errors.New("kuzu: graph is closed")
	}
	res, err := g.conn.Query(cypher)
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
