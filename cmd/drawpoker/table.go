package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

type TableCmd struct {
	Build  TableBuildCmd  `cmd:"" help:"Enumerate every hand and write the rank table"`
	Verify TableVerifyCmd `cmd:"" help:"Check a rank table against an independent evaluator"`
}

type TableBuildCmd struct {
	Out    string `short:"o" help:"Output file (defaults to the configured table path)"`
	Verify bool   `help:"Verify the table before writing it"`
}

func (c *TableBuildCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t, err := e.table(ctx, true)
	if err != nil {
		return err
	}
	if c.Verify {
		if err := e.verify(ctx, t); err != nil {
			return err
		}
	}

	out := c.Out
	if out == "" {
		out = e.cfg.Paths.Table
	}
	start := time.Now()
	if err := t.SaveFile(out); err != nil {
		return err
	}
	e.logger.Info("Rank table written", "path", out, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

type TableVerifyCmd struct{}

func (c *TableVerifyCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t, err := e.table(ctx, g.BuildTable)
	if err != nil {
		return err
	}
	return e.verify(ctx, t)
}

func (e *env) verify(ctx context.Context, t *ranktable.Table) error {
	start := time.Now()
	report, err := t.Verify(ctx)
	printCounts(report)
	if err != nil {
		return err
	}
	e.logger.Info("Rank table verified", "classes", report.Classes, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func printCounts(report ranktable.Report) {
	tw := newTable(os.Stdout, "Category", "Hands", "Expected")
	for cat := poker.NumCategories - 1; cat >= 0; cat-- {
		got, want := report.Counts[cat], ranktable.KnownCounts[cat]
		style := goodStyle
		if got != want {
			style = badStyle
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", categoryStyle.Render(poker.Category(cat).Title()), style.Render(fmt.Sprint(got)), want)
	}
	tw.Flush()
}
