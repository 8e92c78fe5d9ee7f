package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/learner"
)

type LearnCmd struct {
	Iterations    *int           `short:"n" help:"Deals to simulate (overrides config)"`
	Players       *int           `short:"p" help:"Players per deal (overrides config)"`
	Workers       *int           `short:"w" help:"Parallel workers (overrides config)"`
	Seed          *int64         `help:"Random seed for reproducible runs (overrides config)"`
	ProgressEvery *time.Duration `help:"Progress log interval (overrides config)"`
	SaveEvery     int            `help:"Save the stats dump after this many deals (0 saves once at the end)" default:"0"`
}

func (c *LearnCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	cfg := e.cfg.Learner
	set(&cfg.Iterations, c.Iterations)
	set(&cfg.Players, c.Players)
	set(&cfg.Workers, c.Workers)
	set(&cfg.Seed, c.Seed)
	set(&cfg.ProgressEvery, c.ProgressEvery)
	if c.SaveEvery < 0 {
		return errors.New("save-every cannot be negative")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := e.table(ctx, g.BuildTable)
	if err != nil {
		return err
	}
	binSet, err := e.binSet()
	if err != nil {
		return err
	}
	stats, err := e.stats(binSet)
	if err != nil {
		return err
	}
	e.logger.Info("Loaded stats", "path", e.cfg.Paths.Stats, "iterations", stats.Iterations())

	l, err := learner.New(cfg, t, binSet, e.logger)
	if err != nil {
		return err
	}

	batch := c.SaveEvery
	if batch == 0 {
		batch = cfg.Iterations
	}
	for remaining := cfg.Iterations; remaining > 0; {
		n := min(batch, remaining)
		if err := l.Run(ctx, stats, n, nil); err != nil {
			if errors.Is(err, context.Canceled) {
				e.logger.Warn("Interrupted, unsaved deals discarded", "saved", stats.Iterations())
				return nil
			}
			return err
		}
		if err := stats.Save(e.cfg.Paths.Stats); err != nil {
			return fmt.Errorf("save stats: %w", err)
		}
		remaining -= n
		e.logger.Info("Stats saved", "path", e.cfg.Paths.Stats, "iterations", stats.Iterations(), "remaining", remaining)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type StatsCmd struct {
	Show StatsShowCmd `cmd:"" help:"Print the learned statistics per bin"`
}

type StatsShowCmd struct {
	Bin   string `help:"Only show this bin"`
	Top   bool   `help:"Sort strategies by score within each bin"`
	Tried bool   `help:"Hide strategies that were never simulated"`
}

func (c *StatsShowCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	binSet, err := e.binSet()
	if err != nil {
		return err
	}
	if _, err := os.Stat(e.cfg.Paths.Stats); err != nil {
		return fmt.Errorf("stats dump: %w", err)
	}
	stats, err := e.stats(binSet)
	if err != nil {
		return err
	}

	only := -1
	if c.Bin != "" {
		i, ok := binSet.Index(c.Bin)
		if !ok {
			return fmt.Errorf("unknown bin %q", c.Bin)
		}
		only = i
	}

	field(os.Stdout, "Iterations", stats.Iterations())
	tw := newTable(os.Stdout, "Bin", "#", "Strategy", "Hits", "Weighted", "Unweighted", "Score")
	for i, b := range binSet.Bins() {
		if only >= 0 && i != only {
			continue
		}
		rows := rankStrategies(stats.Bin(i), c.Top)
		for _, j := range rows {
			st := stats.Stat(i, j)
			if c.Tried && st.Hits == 0 {
				continue
			}
			style := dimStyle
			if st.Score() >= 1 {
				style = goodStyle
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%.4f\t%.4f\t%s\n",
				categoryStyle.Render(b.Name), j, b.Strategies[j], st.Hits, st.Weighted, st.Unweighted,
				style.Render(fmt.Sprintf("%.4f", st.Score())))
		}
	}
	return tw.Flush()
}

// rankStrategies returns strategy indices, by score when byScore is set.
func rankStrategies(stats []bins.Stat, byScore bool) []int {
	idx := make([]int, len(stats))
	for i := range idx {
		idx[i] = i
	}
	if byScore {
		sort.SliceStable(idx, func(a, b int) bool {
			return stats[idx[a]].Score() > stats[idx[b]].Score()
		})
	}
	return idx
}
