// Package learner estimates how well each bin's discard strategies perform by
// simulating random deals and trying every joint combination of strategies.
package learner

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

// Ranker deals and redraws ranked hands. *ranktable.Table implements it.
type Ranker interface {
	Deal(d *poker.Deck) (ranktable.Ranked, error)
	Draw(r ranktable.Ranked, d *poker.Deck, positions []int) (ranktable.Ranked, error)
}

// Progress is reported periodically during Run and once at the end.
type Progress struct {
	RunID   uuid.UUID
	Done    int64
	Total   int64
	Elapsed time.Duration
}

// Rate returns simulated deals per second.
func (p Progress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Done) / p.Elapsed.Seconds()
}

// Learner runs simulations against a read-only ranker and bin set.
type Learner struct {
	cfg    Config
	ranker Ranker
	set    *bins.Set
	logger *log.Logger
	clock  quartz.Clock
	seed   int64
	runs   int // completed or attempted Run calls, selects the worker streams
}

// Option customises a Learner.
type Option func(*Learner)

// WithClock replaces the wall clock used for progress reporting.
func WithClock(clock quartz.Clock) Option {
	return func(l *Learner) {
		l.clock = clock
	}
}

// New constructs a learner. The ranker and set are shared between workers and
// must not be mutated while a run is in progress.
func New(cfg Config, ranker Ranker, set *bins.Set, logger *log.Logger, opts ...Option) (*Learner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ranker == nil || set == nil {
		return nil, errors.New("learner requires a rank table and a bin set")
	}
	if logger == nil {
		logger = log.Default()
	}
	l := &Learner{
		cfg:    cfg,
		ranker: ranker,
		set:    set,
		logger: logger.WithPrefix("learner"),
		clock:  quartz.NewReal(),
		seed:   randutil.Seed(cfg.Seed),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the run configuration.
func (l *Learner) Config() Config {
	return l.cfg
}

// SimulateDeal deals one hand per player from a fresh deck and records, for
// every joint combination of the players' strategies, how each player's
// strength changed. Every combination draws from its own copy of the deck.
func (l *Learner) SimulateDeal(rng *rand.Rand, stats *bins.Stats) error {
	deck := poker.NewDeck(rng)
	hands := make([]ranktable.Ranked, l.cfg.Players)
	matches := make([]bins.Match, l.cfg.Players)
	for i := range hands {
		r, err := l.ranker.Deal(deck)
		if err != nil {
			return fmt.Errorf("deal player %d: %w", i, err)
		}
		m, err := l.set.Classify(r.Value)
		if err != nil {
			return fmt.Errorf("classify %s: %w", r.Hand, err)
		}
		hands[i], matches[i] = r, m
	}

	combo := make([]int, len(hands))
	for {
		d := deck.Clone()
		for i, r := range hands {
			j := combo[i]
			drawn, err := l.ranker.Draw(r, d, matches[i].Strategies[j])
			if err != nil {
				return fmt.Errorf("player %d strategy %v: %w", i, matches[i].Strategies[j], err)
			}
			sample := float64(drawn.Value.Strength) / float64(r.Value.Strength)
			stats.Record(matches[i].Bin, j, sample)
		}
		if !advance(combo, matches) {
			break
		}
	}
	stats.AddIterations(1)
	return nil
}

// advance steps combo to the next joint strategy choice, last player fastest.
// It reports false once every combination has been visited.
func advance(combo []int, matches []bins.Match) bool {
	for i := len(combo) - 1; i >= 0; i-- {
		combo[i]++
		if combo[i] < len(matches[i].Strategies) {
			return true
		}
		combo[i] = 0
	}
	return false
}

// Run simulates iterations deals split across the configured workers and
// merges the results into stats. Each worker owns private counters seeded
// from the learner seed and the number of earlier runs: consecutive runs on
// one learner simulate different deals, and a fixed seed and worker count
// reproduce the whole sequence. Run must not be called concurrently.
func (l *Learner) Run(ctx context.Context, stats *bins.Stats, iterations int, progress func(Progress)) error {
	if iterations < 0 {
		return errors.New("iterations cannot be negative")
	}
	batch := l.runs
	l.runs++
	workers := min(l.cfg.Workers, max(iterations, 1))
	runID := uuid.New()
	logger := l.logger.With("run", runID.String()[:8])
	logger.Info("Starting simulation", "iterations", iterations, "players", l.cfg.Players, "workers", workers, "seed", l.seed, "batch", batch)

	start := l.clock.Now()
	var done atomic.Int64
	report := func() Progress {
		p := Progress{RunID: runID, Done: done.Load(), Total: int64(iterations), Elapsed: l.clock.Now().Sub(start)}
		if progress != nil {
			progress(p)
		}
		return p
	}

	ticker := l.clock.NewTicker(l.cfg.ProgressEvery, "learner", "progress")
	stop := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Add(1)
	go func() {
		defer reporter.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p := report()
				logger.Info("Progress", "done", p.Done, "total", p.Total, "rate", fmt.Sprintf("%.0f/s", p.Rate()))
			}
		}
	}()

	private := make([]*bins.Stats, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := iterations / workers
		if w < iterations%workers {
			n++
		}
		private[w] = bins.NewStats(l.set)
		g.Go(func() error {
			rng := randutil.Worker(l.seed, batch*l.cfg.Workers+w)
			for i := 0; i < n; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := l.SimulateDeal(rng, private[w]); err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
				done.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	close(stop)
	reporter.Wait()
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	for _, p := range private {
		if err := stats.Merge(p); err != nil {
			return err
		}
	}
	p := report()
	logger.Info("Simulation complete", "deals", p.Done, "elapsed", p.Elapsed.Round(time.Millisecond), "global", stats.Iterations())
	return nil
}
