// Package agent is the decision core a game client drives: it tracks round
// state from server notifications and answers betting and discard requests.
package agent

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/policy"
	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

// ErrNoHand is returned when a decision is requested before cards were dealt.
var ErrNoHand = errors.New("no hand dealt this round")

// Ranker values hands. *ranktable.Table implements it.
type Ranker interface {
	Rank(h poker.Hand) (ranktable.Ranked, error)
}

// PlayerInfo is what the agent knows about an opponent this round.
type PlayerInfo struct {
	Name       string
	Chips      int
	CurrentBet int
	Drew       bool
	DrawCount  int
}

// State is the agent's own view of the current round.
type State struct {
	Chips      int
	Ante       int
	CurrentBet int
	Hand       *ranktable.Ranked
	Match      *bins.Match
	Drawn      bool
}

// Discard is the answer to a discard request.
type Discard struct {
	Strategy  int
	Positions []int
	Cards     []poker.Card
}

// Tokens renders the discarded cards the way the game server expects them,
// with T for ten.
func (d Discard) Tokens() []string {
	out := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		out[i] = c.Compact()
	}
	return out
}

// Agent holds per-round state. It is not safe for concurrent use; the game
// client delivers events one at a time.
type Agent struct {
	name    string
	ranker  Ranker
	stats   *bins.Stats
	policy  *policy.Policy
	logger  *log.Logger
	state   State
	players map[string]*PlayerInfo
}

// New constructs an agent. The ranker, bin set and stats are shared read-only.
func New(name string, ranker Ranker, stats *bins.Stats, pol *policy.Policy, logger *log.Logger) (*Agent, error) {
	if name == "" {
		return nil, errors.New("agent name is required")
	}
	if ranker == nil || stats == nil || pol == nil {
		return nil, errors.New("agent requires a rank table, bin statistics and a policy")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{
		name:    name,
		ranker:  ranker,
		stats:   stats,
		policy:  pol,
		logger:  logger.WithPrefix(name),
		players: make(map[string]*PlayerInfo),
	}, nil
}

// Name returns the agent's seat name.
func (a *Agent) Name() string {
	return a.name
}

// State returns a copy of the agent's round state.
func (a *Agent) State() State {
	return a.state
}

// Players returns the opponents seen this round, sorted by name.
func (a *Agent) Players() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(a.players))
	for _, p := range a.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Opponents is the number of distinct opponents seen this round.
func (a *Agent) Opponents() int {
	return len(a.players)
}

func (a *Agent) player(name string) *PlayerInfo {
	p, ok := a.players[name]
	if !ok {
		p = &PlayerInfo{Name: name}
		a.players[name] = p
	}
	return p
}

// OnChipsUpdate records a player's chip count.
func (a *Agent) OnChipsUpdate(player string, chips int) {
	if player == a.name {
		a.state.Chips = chips
		return
	}
	a.player(player).Chips = chips
	a.logger.Debug("Chips update", "player", player, "chips", chips)
}

// OnAnteChanged records the ante for the round.
func (a *Agent) OnAnteChanged(amount int) {
	a.state.Ante = amount
}

// OnForcedBet records a bet the server placed for a player.
func (a *Agent) OnForcedBet(player string, amount int) {
	if player == a.name {
		a.state.CurrentBet = amount
		return
	}
	a.player(player).CurrentBet = amount
	a.logger.Debug("Forced bet", "player", player, "amount", amount)
}

// OnOpponentDraw records that an opponent exchanged count cards.
func (a *Agent) OnOpponentDraw(player string, count int) {
	if player == a.name {
		return
	}
	p := a.player(player)
	p.Drew = true
	p.DrawCount = count
	a.logger.Debug("Opponent drew", "player", player, "count", count)
}

// OnNewRound clears everything learned about the previous round.
func (a *Agent) OnNewRound() {
	a.state = State{Chips: a.state.Chips}
	clear(a.players)
}

// OnCardsDealt takes the five card tokens the server dealt, either at the
// start of the round or after a draw.
func (a *Agent) OnCardsDealt(tokens []string) error {
	if len(tokens) != poker.HandSize {
		return fmt.Errorf("dealt %d cards, want %d", len(tokens), poker.HandSize)
	}
	cards := make([]poker.Card, len(tokens))
	for i, tok := range tokens {
		c, err := poker.ParseCard(tok)
		if err != nil {
			return err
		}
		cards[i] = c
	}
	h, err := poker.NewHand(cards...)
	if err != nil {
		return err
	}
	r, err := a.ranker.Rank(h)
	if err != nil {
		return fmt.Errorf("rank %s: %w", h, err)
	}
	m, err := a.stats.Set().Classify(r.Value)
	if err != nil {
		return err
	}
	a.state.Hand, a.state.Match = &r, &m
	a.logger.Debug("Cards dealt", "hand", h, "category", r.Value.Category, "strength", r.Value.Strength, "bin", m.Name)
	return nil
}

func (a *Agent) winProbability() (float64, error) {
	if a.state.Hand == nil {
		return 0, ErrNoHand
	}
	return policy.WinProbability(a.state.Hand.Value.Strength, a.Opponents()), nil
}

// DecideOpen answers an open request.
func (a *Agent) DecideOpen(minimumPotAfterOpen, currentBet, remainingChips int) (policy.OpenAction, error) {
	pWin, err := a.winProbability()
	if err != nil {
		return policy.OpenAction{}, err
	}
	req := policy.OpenRequest{
		MinimumPotAfterOpen: minimumPotAfterOpen,
		CurrentBet:          currentBet,
		RemainingChips:      remainingChips,
		Ante:                a.state.Ante,
	}
	action := a.policy.Open(req, pWin, a.state.Drawn)
	a.logger.Debug("Open decision", "pWin", fmt.Sprintf("%.3f", pWin), "opponents", a.Opponents(),
		"drawn", a.state.Drawn, "action", action, "reason", action.Reason)
	return action, nil
}

// DecideCallRaise answers a call or raise request.
func (a *Agent) DecideCallRaise(maximumBet, minimumRaiseTo, currentBet, remainingChips int) (policy.CallRaiseAction, error) {
	pWin, err := a.winProbability()
	if err != nil {
		return policy.CallRaiseAction{}, err
	}
	req := policy.CallRaiseRequest{
		MaximumBet:     maximumBet,
		MinimumRaiseTo: minimumRaiseTo,
		CurrentBet:     currentBet,
		RemainingChips: remainingChips,
		Ante:           a.state.Ante,
	}
	action := a.policy.CallRaise(req, pWin)
	a.logger.Debug("Call/raise decision", "pWin", fmt.Sprintf("%.3f", pWin), "opponents", a.Opponents(),
		"action", action, "reason", action.Reason)
	return action, nil
}

// DecideDiscards picks a strategy for the current bin and returns the
// evaluation-order positions and cards to throw.
func (a *Agent) DecideDiscards() (Discard, error) {
	if a.state.Hand == nil || a.state.Match == nil {
		return Discard{}, ErrNoHand
	}
	m := *a.state.Match
	idx, strategy, err := a.policy.Discard(m, a.stats.Bin(m.Bin))
	if err != nil {
		return Discard{}, err
	}
	cards, err := a.state.Hand.Value.Discards(strategy)
	if err != nil {
		return Discard{}, err
	}
	a.state.Drawn = true

	d := Discard{Strategy: idx, Positions: append([]int(nil), strategy...), Cards: cards}
	if len(cards) == 0 {
		a.logger.Debug("Standing pat", "bin", m.Name)
	} else {
		a.logger.Debug("Discarding", "bin", m.Name, "strategy", idx, "cards", strings.Join(d.Tokens(), " "))
	}
	return d, nil
}
