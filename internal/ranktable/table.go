// Package ranktable holds the precomputed value of every five card hand.
//
// The table maps each of the 2,598,960 canonical hands to its category,
// evaluation order, tie-break ordinal, strength and draw metadata. It is built
// once offline, persisted, and loaded read-only at runtime.
package ranktable

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/poker"
)

// NumHands is C(52,5), the number of distinct five card hands.
const NumHands = 2598960

// ErrNotFound reports a hand id the table cannot resolve. The table is
// foundational, so callers treat this as an integrity failure.
var ErrNotFound = errors.New("hand not found in rank table")

// HandValue is the immutable, persisted value of a hand.
type HandValue struct {
	ID           poker.HandID
	Category     poker.Category
	Cards        [poker.HandSize]poker.Card // evaluation order
	S0           int64
	Strength     int // 1-based, equal for equal S0, NumHands scale
	FlushDraw    poker.FlushDraw
	StraightDraw poker.StraightDraw
}

// BestRank is the rank of the first card in evaluation order, the rank bins key on.
func (v HandValue) BestRank() uint8 {
	return v.Cards[0].Rank()
}

// NewValue pairs an evaluation with the strength the table assigned it.
func NewValue(id poker.HandID, ev poker.Evaluation, strength int) HandValue {
	return HandValue{
		ID:           id,
		Category:     ev.Category,
		Cards:        ev.Cards,
		S0:           ev.S0,
		Strength:     strength,
		FlushDraw:    ev.FlushDraw,
		StraightDraw: ev.StraightDraw,
	}
}

// Percentile is the share of hands this hand is at least as strong as.
func (v HandValue) Percentile() float64 {
	return float64(v.Strength) / NumHands
}

// entry is the compact in-memory form of a HandValue. Hand ids fit in int32
// because 52^5 < 2^31.
type entry struct {
	s0           int32
	strength     int32
	flushID      int32
	straightID   int32
	cards        [poker.HandSize]poker.Card
	category     poker.Category
	flushDisc    int8
	straightDisc int8
	multiplicity uint8
}

func (v HandValue) compact() entry {
	return entry{
		s0:           int32(v.S0),
		strength:     int32(v.Strength),
		flushID:      int32(v.FlushDraw.Completion),
		straightID:   int32(v.StraightDraw.Completion),
		cards:        v.Cards,
		category:     v.Category,
		flushDisc:    int8(v.FlushDraw.Discard),
		straightDisc: int8(v.StraightDraw.Discard),
		multiplicity: uint8(v.StraightDraw.Multiplicity),
	}
}

func (e entry) value(id poker.HandID) HandValue {
	return HandValue{
		ID:       id,
		Category: e.category,
		Cards:    e.cards,
		S0:       int64(e.s0),
		Strength: int(e.strength),
		FlushDraw: poker.FlushDraw{
			Discard:    int(e.flushDisc),
			Completion: poker.HandID(e.flushID),
		},
		StraightDraw: poker.StraightDraw{
			Discard:      int(e.straightDisc),
			Multiplicity: int(e.multiplicity),
			Completion:   poker.HandID(e.straightID),
		},
	}
}

// Table is the complete hand rank table. It is safe for concurrent reads.
type Table struct {
	entries []entry
}

// binomial[n][k] = C(n, k) for n < 52, k <= 5.
var binomial = func() [poker.NumCards][poker.HandSize + 1]int {
	var c [poker.NumCards][poker.HandSize + 1]int
	for n := range c {
		c[n][0] = 1
		for k := 1; k <= poker.HandSize && k <= n; k++ {
			c[n][k] = c[n-1][k-1]
			if k < n {
				c[n][k] += c[n-1][k]
			}
		}
	}
	return c
}()

// Slot returns the combinatorial index of a canonical hand, a minimal
// perfect index over [0, NumHands).
func Slot(h poker.Hand) int {
	slot := 0
	for i, c := range h.Cards() {
		slot += binomial[c.SortKey()][poker.HandSize-i]
	}
	return slot
}

// Build enumerates every hand, evaluates it and assigns strengths.
func Build(ctx context.Context) (*Table, error) {
	t := &Table{entries: make([]entry, NumHands)}
	evals := make([]poker.Evaluation, NumHands)

	// One task per highest card. Every slot is written by exactly one task.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k0 := poker.HandSize - 1; k0 < poker.NumCards; k0++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c0 := poker.CardFromSortKey(k0)
			for k1 := 0; k1 < k0; k1++ {
				for k2 := 0; k2 < k1; k2++ {
					for k3 := 0; k3 < k2; k3++ {
						for k4 := 0; k4 < k3; k4++ {
							h, err := poker.NewHand(c0,
								poker.CardFromSortKey(k1),
								poker.CardFromSortKey(k2),
								poker.CardFromSortKey(k3),
								poker.CardFromSortKey(k4))
							if err != nil {
								return err
							}
							evals[Slot(h)] = poker.Evaluate(h)
						}
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enumerate hands: %w", err)
	}

	order := make([]int32, NumHands)
	for i := range order {
		order[i] = int32(i)
	}
	slices.SortStableFunc(order, func(a, b int32) int {
		switch sa, sb := evals[a].S0, evals[b].S0; {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})

	// Strength is the 1-based position of the first hand in each S0 class, so
	// equal hands share it and Strength/NumHands reads as a percentile.
	strength := 0
	var prev int64 = -1
	for i, slot := range order {
		if i == 0 || evals[slot].S0 != prev {
			strength = i + 1
			prev = evals[slot].S0
		}
		t.entries[slot] = NewValue(0, evals[slot], strength).compact()
	}
	return t, nil
}

// Len returns the number of populated hands.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the value of a canonical hand id.
func (t *Table) Lookup(id poker.HandID) (HandValue, error) {
	if t.Len() != NumHands {
		return HandValue{}, fmt.Errorf("%w: table not loaded", ErrNotFound)
	}
	h, err := poker.HandFromID(id)
	if err != nil {
		return HandValue{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	e := t.entries[Slot(h)]
	if e.strength == 0 {
		return HandValue{}, fmt.Errorf("%w: hand %d has no entry", ErrNotFound, id)
	}
	return e.value(id), nil
}

// Value returns the value of a hand.
func (t *Table) Value(h poker.Hand) (HandValue, error) {
	return t.Lookup(h.ID())
}

// Ranked is a hand together with its current table value.
type Ranked struct {
	Hand  poker.Hand
	Value HandValue
}

// Rank pairs a hand with its value.
func (t *Table) Rank(h poker.Hand) (Ranked, error) {
	v, err := t.Value(h)
	if err != nil {
		return Ranked{}, err
	}
	return Ranked{Hand: h, Value: v}, nil
}

// Deal draws a fresh hand from the deck and ranks it.
func (t *Table) Deal(d *poker.Deck) (Ranked, error) {
	h, err := poker.DealHand(d)
	if err != nil {
		return Ranked{}, err
	}
	return t.Rank(h)
}

// Draw discards the cards at the given evaluation-order positions, replaces
// them from the deck and returns the re-ranked hand. r is not modified.
func (t *Table) Draw(r Ranked, d *poker.Deck, positions []int) (Ranked, error) {
	if len(positions) == 0 {
		return r, nil
	}
	discard, err := r.Value.Discards(positions)
	if err != nil {
		return Ranked{}, err
	}
	h, err := r.Hand.Replace(discard, d)
	if err != nil {
		return Ranked{}, err
	}
	return t.Rank(h)
}

// Discards maps evaluation-order positions to the cards they name.
func (v HandValue) Discards(positions []int) ([]poker.Card, error) {
	var seen uint8
	cards := make([]poker.Card, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= poker.HandSize {
			return nil, fmt.Errorf("discard position %d out of range", p)
		}
		if seen&(1<<p) != 0 {
			return nil, fmt.Errorf("discard position %d repeated", p)
		}
		seen |= 1 << p
		cards = append(cards, v.Cards[p])
	}
	return cards, nil
}

// Each calls fn for every hand in slot order until fn returns false.
func (t *Table) Each(fn func(HandValue) bool) {
	for k0 := poker.HandSize - 1; k0 < poker.NumCards; k0++ {
		for k1 := 0; k1 < k0; k1++ {
			for k2 := 0; k2 < k1; k2++ {
				for k3 := 0; k3 < k2; k3++ {
					for k4 := 0; k4 < k3; k4++ {
						slot := binomial[k0][5] + binomial[k1][4] + binomial[k2][3] + binomial[k3][2] + binomial[k4][1]
						if slot >= t.Len() {
							return
						}
						id := handID(k0, k1, k2, k3, k4)
						if !fn(t.entries[slot].value(id)) {
							return
						}
					}
				}
			}
		}
	}
}

func handID(keys ...int) poker.HandID {
	var id poker.HandID
	for _, k := range keys {
		id = id*poker.NumCards + poker.HandID(poker.CardFromSortKey(k))
	}
	return id
}
