package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

type EvalCmd struct {
	Cards []string `arg:"" help:"Five cards, e.g. 'AH KH QH JH TH' or AH,KH,QH,JH,10H"`
}

func (c *EvalCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	h, err := parseHand(c.Cards)
	if err != nil {
		return err
	}
	set, err := e.binSet()
	if err != nil {
		return err
	}

	v := ranktable.NewValue(h.ID(), poker.Evaluate(h), 0)
	t, err := e.table(context.Background(), g.BuildTable)
	switch {
	case errors.Is(err, os.ErrNotExist):
		e.logger.Warn("No rank table, strength unavailable", "path", e.cfg.Paths.Table)
	case err != nil:
		return err
	default:
		if v, err = t.Value(h); err != nil {
			return err
		}
	}

	printValue(os.Stdout, h, v)
	m, err := set.Classify(v)
	if err != nil {
		return err
	}
	printMatch(os.Stdout, m)
	return nil
}

func parseHand(args []string) (poker.Hand, error) {
	return poker.ParseHand(strings.Join(args, ","))
}

func printValue(w io.Writer, h poker.Hand, v ranktable.HandValue) {
	fmt.Fprintln(w, handStyle.Render(h.String()))
	field(w, "Category", categoryStyle.Render(v.Category.Title()))
	if desc, err := ranktable.Describe(v.Cards); err == nil {
		field(w, "Description", desc)
	}
	field(w, "Order", formatCards(v.Cards[:]))
	field(w, "S0", v.S0)
	if v.Strength > 0 {
		field(w, "Strength", fmt.Sprintf("%d (%.4f%%)", v.Strength, 100*v.Percentile()))
	}
	if fd := v.FlushDraw; fd.Ok() {
		field(w, "Flush draw", fmt.Sprintf("throw %s, best completion %s", v.Cards[fd.Discard].Compact(), completion(fd.Completion)))
	}
	if sd := v.StraightDraw; sd.Ok() {
		field(w, "Straight draw", fmt.Sprintf("throw %s, %d window(s), best completion %s",
			v.Cards[sd.Discard].Compact(), sd.Multiplicity, completion(sd.Completion)))
	}
}

func printMatch(w io.Writer, m bins.Match) {
	field(w, "Bin", categoryStyle.Render(m.Name))
	for i, st := range m.Strategies {
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d", i)), st)
	}
}

func completion(id poker.HandID) string {
	h, err := poker.HandFromID(id)
	if err != nil {
		return dimStyle.Render("none")
	}
	return h.String()
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Compact()
	}
	return strings.Join(parts, " ")
}

type BinsCmd struct {
	Init     BinsInitCmd     `cmd:"" help:"Write the built-in bin set"`
	Classify BinsClassifyCmd `cmd:"" help:"Show which bin a hand falls into"`
	List     BinsListCmd     `cmd:"" help:"List bins and their strategies"`
}

type BinsInitCmd struct {
	Out string `short:"o" help:"Output file (defaults to the configured bins path)"`
}

func (c *BinsInitCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = e.cfg.Paths.Bins
	}
	if out == "" {
		return errors.New("no output path: pass --out or set paths.bins")
	}
	if err := bins.Default().SaveFile(out); err != nil {
		return err
	}
	e.logger.Info("Bin set written", "path", out, "bins", bins.Default().Len())
	return nil
}

type BinsClassifyCmd struct {
	Cards []string `arg:"" help:"Five cards"`
}

func (c *BinsClassifyCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	set, err := e.binSet()
	if err != nil {
		return err
	}
	h, err := parseHand(c.Cards)
	if err != nil {
		return err
	}
	m, err := set.Classify(ranktable.NewValue(h.ID(), poker.Evaluate(h), 0))
	if err != nil {
		return err
	}
	fmt.Println(handStyle.Render(h.String()))
	printMatch(os.Stdout, m)
	return nil
}

type BinsListCmd struct{}

func (c *BinsListCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	set, err := e.binSet()
	if err != nil {
		return err
	}
	tw := newTable(os.Stdout, "#", "Bin", "Category", "Ranks", "Draw", "Strategies")
	for i, b := range set.Bins() {
		draw := "-"
		switch {
		case b.PotentialFlush:
			draw = "flush"
		case b.PotentialStraight > 0:
			draw = fmt.Sprintf("straight x%d", b.PotentialStraight)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d-%d\t%s\t%d\n", i, b.Name, b.Category.Title(), b.RankFrom, b.RankTo, draw, len(b.Strategies))
	}
	return tw.Flush()
}
