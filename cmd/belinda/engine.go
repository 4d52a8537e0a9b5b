package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/config"
	"github.com/dusk-indust/belinda/internal/graph"
)

// openEngine loads the graph into the configured engine.
func openEngine(ctx context.Context, cfg *config.ProjectConfig, log *zap.Logger) (graph.Engine, error) {
	switch cfg.Engine {
	case "", "mem":
		if cfg.Graph == "" {
			return nil, errors.New("-graph is required")
		}
		b, err := graph.LoadEdgeList(cfg.Graph)
		if err != nil {
			return nil, err
		}
		g := b.Build()
		log.Debug("loaded graph",
			zap.String("path", cfg.Graph),
			zap.Int("nodes", b.NodeCount()),
			zap.Int("edges", len(b.Edges())))
		return g, nil
	case "kuzu":
		return openKuzu(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
