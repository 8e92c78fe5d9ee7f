// Package policy turns a hand's win probability into betting actions and
// picks discard strategies from learned statistics.
package policy

import (
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/drawpoker/internal/bins"
	"github.com/lox/drawpoker/internal/ranktable"
)

// OpenKind is the choice made when the agent may open the betting.
type OpenKind uint8

const (
	Check OpenKind = iota
	Open
	OpenAllIn
)

var openKinds = [...]OpenKind{Check, Open, OpenAllIn}

func (k OpenKind) String() string {
	switch k {
	case Check:
		return "check"
	case Open:
		return "open"
	case OpenAllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// CallRaiseKind is the choice made when facing a bet.
type CallRaiseKind uint8

const (
	Fold CallRaiseKind = iota
	Call
	Raise
	AllIn
)

var callRaiseKinds = [...]CallRaiseKind{Fold, Call, Raise, AllIn}

func (k CallRaiseKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case AllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// OpenRequest describes the table when the agent may open.
type OpenRequest struct {
	MinimumPotAfterOpen int
	CurrentBet          int
	RemainingChips      int
	Ante                int
}

// OpenAction is the answer to an OpenRequest. Amount is the total the agent
// puts in the pot and is only meaningful for Open.
type OpenAction struct {
	Kind   OpenKind
	Amount int
	Reason string
}

func (a OpenAction) String() string {
	if a.Kind == Open {
		return fmt.Sprintf("open %d", a.Amount)
	}
	return a.Kind.String()
}

// CallRaiseRequest describes the table when the agent faces a bet.
type CallRaiseRequest struct {
	MaximumBet     int
	MinimumRaiseTo int
	CurrentBet     int
	RemainingChips int
	Ante           int
}

func (r CallRaiseRequest) stack() int {
	return r.CurrentBet + r.RemainingChips
}

// CallRaiseAction is the answer to a CallRaiseRequest. Amount is the raise
// target and is only meaningful for Raise.
type CallRaiseAction struct {
	Kind   CallRaiseKind
	Amount int
	Reason string
}

func (a CallRaiseAction) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("raise to %d", a.Amount)
	}
	return a.Kind.String()
}

// WinProbability estimates the chance of beating every opponent, treating
// opponents' hands as independent. At least one opponent is assumed.
func WinProbability(strength, opponents int) float64 {
	pHand := float64(strength) / ranktable.NumHands
	return math.Pow(pHand, float64(max(opponents, 1)))
}

// Policy samples actions. It is not safe for concurrent use because it owns
// its random source.
type Policy struct {
	cfg Config
	rng *rand.Rand
}

// New validates the configuration and binds it to a random source.
func New(cfg Config, rng *rand.Rand) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("policy requires a random source")
	}
	return &Policy{cfg: cfg, rng: rng}, nil
}

// Config returns the policy configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// Open decides between check, open and all-in. drawn reports whether the
// agent has already exchanged cards this round; weak hands only check after
// the draw.
func (p *Policy) Open(req OpenRequest, pWin float64, drawn bool) OpenAction {
	if req.MinimumPotAfterOpen > req.RemainingChips+req.CurrentBet {
		return OpenAction{Kind: Check, Reason: "not enough chips to open"}
	}
	if drawn && pWin < p.cfg.OpenThreshold {
		return OpenAction{Kind: Check, Reason: "hand below open threshold"}
	}
	if pWin > p.cfg.ForceAllInThreshold {
		return OpenAction{Kind: OpenAllIn, Reason: "hand above all-in threshold"}
	}

	c := p.cfg.Open
	weights := []float64{c.Check.Weight(pWin, 0), c.Open.Weight(pWin, 0), c.AllIn.Weight(pWin, 0)}
	kind := openKinds[p.sample(weights)]
	if kind == Open {
		return OpenAction{Kind: Open, Amount: p.OpenAmount(req, pWin), Reason: "sampled"}
	}
	return OpenAction{Kind: kind, Reason: "sampled"}
}

// OpenAmount samples how much to open with: the minimum plus a share of the
// free chips above the ante reserve that grows with pWin.
func (p *Policy) OpenAmount(req OpenRequest, pWin float64) int {
	afterMinimum := req.RemainingChips + req.CurrentBet - req.MinimumPotAfterOpen
	reserve := p.cfg.KeepAntes * float64(req.Ante)
	if float64(afterMinimum) < reserve {
		return req.MinimumPotAfterOpen
	}
	free := float64(afterMinimum) - reserve
	ratio := 1 / (1 + math.Exp(-p.cfg.OpenAmountSteepness*(pWin-p.cfg.OpenAmountCenter)))
	return req.MinimumPotAfterOpen + int(p.rng.Float64()*free*ratio)
}

// CallRaise decides between fold, call, raise and all-in.
func (p *Policy) CallRaise(req CallRaiseRequest, pWin float64) CallRaiseAction {
	if req.RemainingChips < req.Ante {
		return CallRaiseAction{Kind: AllIn, Reason: "fewer chips than one ante"}
	}
	if pWin < p.cfg.ForceFoldThreshold {
		return CallRaiseAction{Kind: Fold, Reason: "hand below fold threshold"}
	}
	if pWin > p.cfg.ForceAllInThreshold {
		return CallRaiseAction{Kind: AllIn, Reason: "hand above all-in threshold"}
	}

	risk := 1.0
	if stack := req.stack(); stack > 0 {
		risk = min(1, float64(req.MaximumBet)/float64(stack))
	}
	c := p.cfg.CallRaise
	weights := []float64{
		c.Fold.Weight(pWin, risk),
		c.Call.Weight(pWin, risk),
		c.Raise.Weight(pWin, risk),
		c.AllIn.Weight(pWin, risk),
	}
	return p.feasible(req, callRaiseKinds[p.sample(weights)])
}

// feasible downgrades a sampled choice the stack cannot cover:
// call becomes all-in, raise becomes call and then all-in.
func (p *Policy) feasible(req CallRaiseRequest, kind CallRaiseKind) CallRaiseAction {
	canCall := req.MaximumBet < req.stack()
	canRaise := req.MinimumRaiseTo < req.stack()
	switch kind {
	case Call:
		if !canCall {
			return CallRaiseAction{Kind: AllIn, Reason: "sampled call, not enough chips"}
		}
	case Raise:
		switch {
		case canRaise:
			return CallRaiseAction{Kind: Raise, Amount: req.MinimumRaiseTo, Reason: "sampled"}
		case canCall:
			return CallRaiseAction{Kind: Call, Reason: "sampled raise, not enough chips"}
		default:
			return CallRaiseAction{Kind: AllIn, Reason: "sampled raise, not enough chips"}
		}
	}
	return CallRaiseAction{Kind: kind, Reason: "sampled"}
}

// Discard samples one of the match's strategies with probability proportional
// to unweighted times weighted performance. stats are the counters of the
// matched bin.
func (p *Policy) Discard(m bins.Match, stats []bins.Stat) (int, bins.Strategy, error) {
	if len(m.Strategies) == 0 {
		return 0, nil, fmt.Errorf("bin %q has no strategies", m.Name)
	}
	if len(stats) != len(m.Strategies) {
		return 0, nil, fmt.Errorf("bin %q: %d strategies but %d counters", m.Name, len(m.Strategies), len(stats))
	}
	weights := make([]float64, len(stats))
	for i, st := range stats {
		weights[i] = max(st.Score(), 0)
	}
	i := p.sample(weights)
	return i, m.Strategies[i], nil
}

// sample draws an index with probability proportional to its weight. An
// all-zero distribution picks the first index.
func (p *Policy) sample(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	r := p.rng.Float64() * total
	var acc float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if r < acc {
			return i
		}
	}
	return last
}
