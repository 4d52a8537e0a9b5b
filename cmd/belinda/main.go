package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/config"
	"github.com/dusk-indust/belinda/internal/metrics"
	"github.com/dusk-indust/belinda/internal/report"
	"github.com/dusk-indust/belinda/internal/table"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Graph                string
	Clustering           string
	Config               string
	Engine               string
	DBPath               string
	Stats                string
	CPMResolution        float64
	ModularityResolution float64
	ZeroVolume           string
	Overlap              bool
	SharedEdgesOnce      bool
	Parallelism          int
	Addr                 string
	Verbose              bool
	Version              bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: belinda [flags] <command> [args]

commands:
  graph              print node, edge and component counts
  stats              coverage plus per-cluster statistics, one row per cluster
  summary            describe table of the stats output
  peek               one-row overview of the clustering
  nodes              clustered nodes with their labels and components
  diagram            Mermaid diagram of the clusters and the edges between them
  membership <out>   write node<TAB>label lines
  json <out>         write one JSON record per cluster
  sqlite <out>       write clusters and graph summary tables to SQLite
  serve-mcp          serve the report tools over MCP (stdio, or HTTP with -addr)
  init [dir]         write a starter belinda.yml and register the MCP server
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var flags cliFlags

	fs := flag.NewFlagSet("belinda", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage+"\nflags:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.Graph, "graph", "", "edge list file, one whitespace separated node pair per line")
	fs.StringVar(&flags.Clustering, "clustering", "", "membership file, one node<TAB>label line per membership")
	fs.StringVar(&flags.Config, "config", "", "config file (default: belinda.yml in the working directory, if present)")
	fs.StringVar(&flags.Engine, "engine", config.DefaultEngine, "graph engine: mem or kuzu")
	fs.StringVar(&flags.DBPath, "db", "", "KuzuDB database path for -engine kuzu (default: in memory)")
	fs.StringVar(&flags.Stats, "stats", "", "comma separated statistics: n, m, c, cpm, vol, modularity, vol1, conductance")
	fs.Float64Var(&flags.CPMResolution, "cpm-resolution", 0, "resolution for cpm (required when cpm is requested)")
	fs.Float64Var(&flags.ModularityResolution, "modularity-resolution", config.DefaultModularityResolution, "resolution for modularity")
	fs.StringVar(&flags.ZeroVolume, "zero-volume", "null", "conductance when vol1 is zero: null or error")
	fs.BoolVar(&flags.Overlap, "overlap", false, "clusters may overlap; compute coverage from node sets")
	fs.BoolVar(&flags.SharedEdgesOnce, "shared-edges-once", true, "with -overlap, count an edge inside several clusters once")
	fs.IntVar(&flags.Parallelism, "parallelism", 0, "worker count (default: GOMAXPROCS)")
	fs.StringVar(&flags.Addr, "addr", "", "serve-mcp over streamable HTTP on this address instead of stdio")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, cmdArgs := rest[0], rest[1:]

	if cmd == "init" {
		root := "."
		if len(cmdArgs) > 0 {
			root = cmdArgs[0]
		}
		return runInit(stdout, root)
	}

	cfg, err := loadConfig(fs, flags)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	a.addr = flags.Addr

	return a.dispatch(ctx, stdout, cmd, cmdArgs)
}

// loadConfig reads the config file and lets explicitly set flags override
// it.
func loadConfig(fs *flag.FlagSet, flags cliFlags) (*config.ProjectConfig, error) {
	var cfg *config.ProjectConfig
	var err error
	if flags.Config != "" {
		cfg, err = config.LoadFile(flags.Config)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "graph":
			cfg.Graph = flags.Graph
		case "clustering":
			cfg.Clustering = flags.Clustering
		case "engine":
			cfg.Engine = flags.Engine
		case "db":
			cfg.DBPath = flags.DBPath
		case "stats":
			cfg.Statistics = splitList(flags.Stats)
		case "cpm-resolution":
			cfg.CPMResolution = &flags.CPMResolution
		case "modularity-resolution":
			cfg.ModularityResolution = &flags.ModularityResolution
		case "zero-volume":
			cfg.ZeroVolume = flags.ZeroVolume
		case "overlap":
			cfg.Overlap = flags.Overlap
		case "shared-edges-once":
			cfg.CountSharedEdgesOnce = &flags.SharedEdgesOnce
		case "parallelism":
			cfg.Parallelism = flags.Parallelism
		case "verbose":
			cfg.Verbose = flags.Verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newLogger builds a development logger for -verbose and a production
// logger at warn level otherwise. Both write to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// reportOptions maps the effective config onto report options.
func reportOptions(cfg *config.ProjectConfig, log *zap.Logger) (report.Options, error) {
	d := cfg.WithDefaults()
	policy, err := metrics.ParseZeroVolumePolicy(d.ZeroVolume)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Metrics: metrics.Options{
			CPMResolution:        d.CPMResolution,
			ModularityResolution: *d.ModularityResolution,
			ZeroVolume:           policy,
		},
		Overlap:              d.Overlap,
		CountSharedEdgesOnce: *d.CountSharedEdgesOnce,
		Table:                table.Options{Parallelism: d.Parallelism},
		Logger:               log,
	}, nil
}
