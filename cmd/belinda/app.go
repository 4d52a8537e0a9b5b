package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/config"
	"github.com/dusk-indust/belinda/internal/graph"
	"github.com/dusk-indust/belinda/internal/mcptools"
	"github.com/dusk-indust/belinda/internal/report"
	"github.com/dusk-indust/belinda/internal/table"
)

// app holds the loaded graph and everything derived from the config.
type app struct {
	cfg       *config.ProjectConfig // defaults applied
	userStats []string              // statistics named explicitly by config or flags
	engine    graph.Engine
	rep       *report.Reporter
	opts      report.Options
	log       *zap.Logger
	addr      string
}

func newApp(ctx context.Context, cfg *config.ProjectConfig, log *zap.Logger) (*app, error) {
	opts, err := reportOptions(cfg, log)
	if err != nil {
		return nil, err
	}
	engine, err := openEngine(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rep, err := report.New(ctx, engine, opts)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return &app{
		cfg:       cfg.WithDefaults(),
		userStats: cfg.Statistics,
		engine:    engine,
		rep:       rep,
		opts:      opts,
		log:       log,
	}, nil
}

// Close releases the graph engine.
func (a *app) Close() error {
	return a.engine.Close()
}

func (a *app) dispatch(ctx context.Context, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "graph":
		return table.WriteTSV(w, a.rep.GraphSummary())
	case "stats":
		return a.runFrame(ctx, w, func(c *table.Frame) (*table.Frame, error) {
			return a.rep.VerboseStatistics(ctx, c, a.rep.Statistics(a.cfg.Statistics...)...)
		})
	case "summary":
		return a.runFrame(ctx, w, func(c *table.Frame) (*table.Frame, error) {
			return a.rep.SummaryStatistics(ctx, c, a.rep.Statistics(a.cfg.Statistics...)...)
		})
	case "peek":
		return a.runFrame(ctx, w, func(c *table.Frame) (*table.Frame, error) {
			return a.rep.Peek(ctx, c, a.rep.Statistics(a.userStats...)...)
		})
	case "nodes":
		return a.runFrame(ctx, w, func(c *table.Frame) (*table.Frame, error) {
			nodes, err := a.rep.Nodes(ctx, c)
			if err != nil {
				return nil, err
			}
			return a.rep.AnnotateComponents(ctx, nodes)
		})
	case "diagram":
		c, err := a.clustering(ctx)
		if err != nil {
			return err
		}
		diagram, err := a.rep.Mermaid(ctx, c)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, diagram)
		return err
	case "membership", "json", "sqlite":
		if len(args) != 1 {
			return fmt.Errorf("usage: belinda %s <out>", cmd)
		}
		return a.runExport(ctx, cmd, args[0])
	case "serve-mcp":
		return a.serveMCP(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// clustering loads the configured membership file.
func (a *app) clustering(ctx context.Context) (*table.Frame, error) {
	if a.cfg.Clustering == "" {
		return nil, errors.New("-clustering is required")
	}
	c, err := graph.LoadClustering(ctx, a.cfg.Clustering, a.engine, a.opts.Table)
	if err != nil {
		return nil, err
	}
	a.log.Debug("loaded clustering", zap.String("path", a.cfg.Clustering), zap.Int("clusters", c.Len()))
	return c, nil
}

// runFrame loads the clustering, derives a frame from it and prints the
// frame as TSV.
func (a *app) runFrame(ctx context.Context, w io.Writer, derive func(*table.Frame) (*table.Frame, error)) error {
	c, err := a.clustering(ctx)
	if err != nil {
		return err
	}
	out, err := derive(c)
	if err != nil {
		return err
	}
	return table.WriteTSV(w, out)
}

func (a *app) runExport(ctx context.Context, kind, path string) error {
	c, err := a.clustering(ctx)
	if err != nil {
		return err
	}
	if kind == "membership" {
		return a.rep.WriteMembershipFile(ctx, path, c)
	}

	if len(a.userStats) > 0 {
		c, err = table.WithColumns(ctx, c, a.opts.Table, a.rep.Statistics(a.userStats...)...)
		if err != nil {
			return err
		}
	}
	if kind == "json" {
		return a.rep.WriteJSONFile(ctx, path, c)
	}
	if err := a.rep.WriteSQLiteFile(ctx, path, "clusters", c); err != nil {
		return err
	}
	return a.rep.WriteSQLiteFile(ctx, path, "graph_summary", a.rep.GraphSummary())
}

func (a *app) serveMCP(ctx context.Context) error {
	svc, err := mcptools.NewMetricsService(ctx, a.engine, a.opts)
	if err != nil {
		return err
	}
	server := mcptools.NewMetricsMCPServer(svc)
	if a.addr != "" {
		a.log.Info("serving MCP over HTTP", zap.String("addr", a.addr))
		return mcptools.RunHTTP(ctx, server, a.addr)
	}
	return mcptools.RunStdio(ctx, server)
}
