package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/config"
	"github.com/lox/drawpoker/internal/ranktable"
)

// version is set by ldflags during build
var version = "dev"

// Globals are shared by every command.
type Globals struct {
	Config     string `short:"c" default:"drawpoker.hcl" env:"DRAWPOKER_CONFIG" help:"Path to HCL configuration file"`
	Debug      bool   `env:"DRAWPOKER_DEBUG" help:"Enable debug logging"`
	TableFile  string `name:"table-file" env:"DRAWPOKER_TABLE" help:"Hand rank table file (overrides config)"`
	BinsFile   string `name:"bins-file" env:"DRAWPOKER_BINS" help:"Bin definitions file (overrides config)"`
	StatsFile  string `name:"stats-file" env:"DRAWPOKER_STATS" help:"Stats dump file (overrides config)"`
	BuildTable bool   `env:"DRAWPOKER_BUILD_TABLE" help:"Build the rank table in memory instead of loading it"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Table   TableCmd         `cmd:"" help:"Build or verify the hand rank table"`
	Eval    EvalCmd          `cmd:"" help:"Evaluate a hand"`
	Bins    BinsCmd          `cmd:"" help:"Manage bin definitions"`
	Learn   LearnCmd         `cmd:"" help:"Simulate deals and update strategy statistics"`
	Stats   StatsCmd         `cmd:"" help:"Inspect strategy statistics"`
	Decide  DecideCmd        `cmd:"" help:"Make a one-shot decision for a hand"`
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("drawpoker"),
		kong.Description("Five card draw decision engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// env holds what a command needs after configuration is resolved.
type env struct {
	cfg    config.Config
	logger *log.Logger
}

func (g *Globals) setup() (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.TableFile != "" {
		cfg.Paths.Table = g.TableFile
	}
	if g.BinsFile != "" {
		cfg.Paths.Bins = g.BinsFile
	}
	if g.StatsFile != "" {
		cfg.Paths.Stats = g.StatsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if g.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return &env{cfg: cfg, logger: logger}, nil
}

// table loads the rank table, or builds it when asked to.
func (e *env) table(ctx context.Context, build bool) (*ranktable.Table, error) {
	start := time.Now()
	if build {
		e.logger.Info("Building rank table")
		t, err := ranktable.Build(ctx)
		if err != nil {
			return nil, err
		}
		e.logger.Info("Rank table built", "hands", t.Len(), "elapsed", time.Since(start).Round(time.Millisecond))
		return t, nil
	}

	e.logger.Info("Loading rank table", "path", e.cfg.Paths.Table)
	t, err := ranktable.LoadFile(e.cfg.Paths.Table)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (run 'drawpoker table build' or pass --build-table)", err)
	}
	if err != nil {
		return nil, err
	}
	e.logger.Info("Rank table loaded", "hands", t.Len(), "elapsed", time.Since(start).Round(time.Millisecond))
	return t, nil
}

// binSet loads the configured bins, or the built-in set when none is configured.
func (e *env) binSet() (*bins.Set, error) {
	if e.cfg.Paths.Bins == "" {
		return bins.Default(), nil
	}
	return bins.LoadSetFile(e.cfg.Paths.Bins)
}

// stats loads the stats dump for a bin set. A missing dump starts fresh.
func (e *env) stats(set *bins.Set) (*bins.Stats, error) {
	stats := bins.NewStats(set)
	if err := stats.Load(e.cfg.Paths.Stats); err != nil {
		return nil, err
	}
	return stats, nil
}
