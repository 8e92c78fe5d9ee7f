package ranktable

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	ref "github.com/paulhankin/poker"
	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/poker"
)

// KnownCounts is the number of hands in each category among all C(52,5) hands.
var KnownCounts = [poker.NumCategories]int{
	poker.HighCard:      1302540,
	poker.OnePair:       1098240,
	poker.TwoPair:       123552,
	poker.ThreeOfAKind:  54912,
	poker.Straight:      10200,
	poker.Flush:         5108,
	poker.FullHouse:     3744,
	poker.FourOfAKind:   624,
	poker.StraightFlush: 40,
}

// Report summarises a verification pass.
type Report struct {
	Counts  [poker.NumCategories]int
	Classes int // distinct strengths
}

var refSuits = [4]ref.Suit{ref.Club, ref.Diamond, ref.Heart, ref.Spade}

// ReferenceCard converts a card for the independent evaluator, which numbers
// ranks 1 (ace) through 13 (king).
func ReferenceCard(c poker.Card) (ref.Card, error) {
	r := ref.Rank(c.Rank() + 2)
	if c.Rank() == poker.Ace {
		r = 1
	}
	return ref.MakeCard(refSuits[c.Suit()], r)
}

func referenceHand(cards [poker.HandSize]poker.Card) (*[5]ref.Card, error) {
	var out [5]ref.Card
	for i, c := range cards {
		rc, err := ReferenceCard(c)
		if err != nil {
			return nil, err
		}
		out[i] = rc
	}
	return &out, nil
}

// Describe names a hand using the independent evaluator, e.g. "pair of kings".
func Describe(cards [poker.HandSize]poker.Card) (string, error) {
	h, err := referenceHand(cards)
	if err != nil {
		return "", err
	}
	return ref.Describe(h[:])
}

// Verify checks the category distribution and that strength orders hands
// exactly as the independent evaluator does, ties included.
func (t *Table) Verify(ctx context.Context) (Report, error) {
	var report Report
	if t.Len() != NumHands {
		return report, fmt.Errorf("verify: %w: table not loaded", ErrNotFound)
	}

	for _, e := range t.entries {
		report.Counts[e.category]++
	}
	for c, want := range KnownCounts {
		if report.Counts[c] != want {
			return report, fmt.Errorf("verify: %s count %d, want %d", poker.Category(c), report.Counts[c], want)
		}
	}

	scores := make([]int16, NumHands)
	workers := runtime.GOMAXPROCS(0)
	chunk := (NumHands + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, NumHands)
		g.Go(func() error {
			for slot := lo; slot < hi; slot++ {
				if (slot-lo)%65536 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				h, err := referenceHand(t.entries[slot].cards)
				if err != nil {
					return fmt.Errorf("slot %d: %w", slot, err)
				}
				scores[slot] = ref.Eval5(h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("verify: %w", err)
	}

	order := make([]int32, NumHands)
	for i := range order {
		order[i] = int32(i)
	}
	slices.SortFunc(order, func(a, b int32) int {
		return int(t.entries[a].strength) - int(t.entries[b].strength)
	})

	report.Classes = 1
	for i := 1; i < len(order); i++ {
		prev, cur := t.entries[order[i-1]], t.entries[order[i]]
		ps, cs := scores[order[i-1]], scores[order[i]]
		switch {
		case prev.strength == cur.strength && ps != cs:
			return report, fmt.Errorf("verify: %v and %v share strength %d but differ in reference score",
				prev.cards, cur.cards, cur.strength)
		case prev.strength < cur.strength && ps >= cs:
			return report, fmt.Errorf("verify: %v ranks above %v but reference score does not",
				cur.cards, prev.cards)
		}
		if prev.strength != cur.strength {
			report.Classes++
		}
	}
	return report, nil
}
