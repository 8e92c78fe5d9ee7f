package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lox/drawpoker/internal/agent"
	"github.com/lox/drawpoker/internal/policy"
	"github.com/lox/drawpoker/internal/randutil"
)

type DecideCmd struct {
	Open      DecideOpenCmd      `cmd:"" help:"Decide whether to check, open or go all-in"`
	CallRaise DecideCallRaiseCmd `cmd:"call-raise" help:"Decide how to answer a bet"`
	Discard   DecideDiscardCmd   `cmd:"" help:"Pick cards to throw"`
}

// Seat describes the table the one-shot agent sits at.
type Seat struct {
	Cards     []string `arg:"" help:"Five cards, e.g. 'AH KH QH JH TH'"`
	Opponents int      `short:"o" default:"1" help:"Opponents at the table"`
	Chips     int      `default:"1000" help:"Chips behind"`
	Ante      int      `default:"10" help:"Ante for the round"`
	Drawn     bool     `help:"Treat the hand as the post-draw hand"`
	Seed      *int64   `help:"Random seed for the policy"`
}

func (s *Seat) agent(g *Globals) (*agent.Agent, error) {
	e, err := g.setup()
	if err != nil {
		return nil, err
	}
	t, err := e.table(context.Background(), g.BuildTable)
	if err != nil {
		return nil, err
	}
	binSet, err := e.binSet()
	if err != nil {
		return nil, err
	}
	stats, err := e.stats(binSet)
	if err != nil {
		return nil, err
	}
	var seed int64
	if s.Seed != nil {
		seed = *s.Seed
	}
	pol, err := policy.New(e.cfg.Policy, randutil.New(randutil.Seed(seed)))
	if err != nil {
		return nil, err
	}
	a, err := agent.New(e.cfg.AgentName, t, stats, pol, e.logger)
	if err != nil {
		return nil, err
	}

	a.OnNewRound()
	a.OnAnteChanged(s.Ante)
	a.OnChipsUpdate(a.Name(), s.Chips)
	for i := 1; i <= s.Opponents; i++ {
		a.OnChipsUpdate(fmt.Sprintf("opp%d", i), s.Chips)
	}
	tokens := strings.FieldsFunc(strings.Join(s.Cards, " "), func(r rune) bool {
		return r == ' ' || r == ','
	})
	if err := a.OnCardsDealt(tokens); err != nil {
		return nil, err
	}
	if s.Drawn {
		// the agent marks itself drawn once it has answered a discard request
		if _, err := a.DecideDiscards(); err != nil {
			return nil, err
		}
		if err := a.OnCardsDealt(tokens); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func printHand(a *agent.Agent) {
	st := a.State()
	fmt.Println(handStyle.Render(st.Hand.Hand.String()))
	field(os.Stdout, "Category", categoryStyle.Render(st.Hand.Value.Category.Title()))
	field(os.Stdout, "Bin", st.Match.Name)
	field(os.Stdout, "Win probability", fmt.Sprintf("%.4f vs %d", policy.WinProbability(st.Hand.Value.Strength, a.Opponents()), a.Opponents()))
}

type DecideOpenCmd struct {
	Seat `embed:""`

	MinimumPot int `help:"Minimum pot after opening" default:"0"`
	CurrentBet int `help:"Chips already committed this round" default:"0"`
}

func (c *DecideOpenCmd) Run(g *Globals) error {
	a, err := c.agent(g)
	if err != nil {
		return err
	}
	minPot := c.MinimumPot
	if minPot == 0 {
		minPot = 2 * c.Ante
	}
	action, err := a.DecideOpen(minPot, c.CurrentBet, c.Chips-c.CurrentBet)
	if err != nil {
		return err
	}
	printHand(a)
	field(os.Stdout, "Action", goodStyle.Render(action.String()))
	field(os.Stdout, "Reason", dimStyle.Render(action.Reason))
	return nil
}

type DecideCallRaiseCmd struct {
	Seat `embed:""`

	MaximumBet     int `required:"" help:"Largest bet on the table"`
	MinimumRaiseTo int `help:"Smallest legal raise target (defaults to twice the maximum bet)" default:"0"`
	CurrentBet     int `help:"Chips already committed this round" default:"0"`
}

func (c *DecideCallRaiseCmd) Run(g *Globals) error {
	a, err := c.agent(g)
	if err != nil {
		return err
	}
	minRaise := c.MinimumRaiseTo
	if minRaise == 0 {
		minRaise = 2 * c.MaximumBet
	}
	action, err := a.DecideCallRaise(c.MaximumBet, minRaise, c.CurrentBet, c.Chips-c.CurrentBet)
	if err != nil {
		return err
	}
	printHand(a)
	style := goodStyle
	if action.Kind == policy.Fold {
		style = badStyle
	}
	field(os.Stdout, "Action", style.Render(action.String()))
	field(os.Stdout, "Reason", dimStyle.Render(action.Reason))
	return nil
}

type DecideDiscardCmd struct {
	Seat `embed:""`
}

func (c *DecideDiscardCmd) Run(g *Globals) error {
	a, err := c.agent(g)
	if err != nil {
		return err
	}
	d, err := a.DecideDiscards()
	if err != nil {
		return err
	}
	printHand(a)
	st := a.State()
	field(os.Stdout, "Strategy", fmt.Sprintf("%d (%s)", d.Strategy, st.Match.Strategies[d.Strategy]))
	if len(d.Cards) == 0 {
		field(os.Stdout, "Discard", goodStyle.Render("stand pat"))
		return nil
	}
	field(os.Stdout, "Discard", goodStyle.Render(strings.Join(d.Tokens(), " ")))
	return nil
}
