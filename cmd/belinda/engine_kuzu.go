//go:build cgo

package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/config"
	"github.com/dusk-indust/belinda/internal/graph"
)

// openKuzu opens the KuzuDB database and imports the edge list into it when
// it is empty. A populated database is used as is.
func openKuzu(ctx context.Context, cfg *config.ProjectConfig, log *zap.Logger) (graph.Engine, error) {
	g, err := graph.OpenKuzuGraph(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	n, err := g.NodeCount(ctx)
	if err != nil {
		g.Close()
		return nil, err
	}

	switch {
	case n > 0:
		if cfg.Graph != "" {
			log.Warn("database already holds a graph, ignoring -graph",
				zap.String("db", cfg.DBPath), zap.String("graph", cfg.Graph))
		}
		return g, nil
	case cfg.Graph == "":
		g.Close()
		return nil, errors.New("-graph is required for an empty database")
	}

	b, err := graph.LoadEdgeList(cfg.Graph)
	if err == nil {
		err = g.Import(ctx, b)
	}
	if err != nil {
		g.Close()
		return nil, err
	}
	log.Info("imported graph into kuzu",
		zap.String("db", cfg.DBPath),
		zap.Int("nodes", b.NodeCount()))
	return g, nil
}
