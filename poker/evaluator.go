package poker

import (
	"fmt"
	"strings"
)

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of hand categories.
const NumCategories = 9

var categoryTags = [NumCategories]string{
	"high_card",
	"one_pair",
	"two_pair",
	"three_of_a_kind",
	"straight",
	"flush",
	"full_house",
	"four_of_a_kind",
	"straight_flush",
}

// categoryEnumPrefix qualifies tags in persisted files.
const categoryEnumPrefix = "HandType."

// String returns the snake case tag, e.g. "full_house".
func (c Category) String() string {
	if int(c) >= NumCategories {
		return "unknown"
	}
	return categoryTags[c]
}

// Title returns a human-readable category name.
func (c Category) Title() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// EnumTag returns the qualified tag used in persisted files, e.g. "HandType.flush".
func (c Category) EnumTag() string {
	return categoryEnumPrefix + c.String()
}

// ParseCategory accepts either "flush" or "HandType.flush".
func ParseCategory(s string) (Category, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(s), categoryEnumPrefix)
	for i, t := range categoryTags {
		if t == tag {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown hand category %q", s)
}

// NoDraw marks an absent draw in FlushDraw and StraightDraw.
const NoDraw = -1

// FlushDraw describes a hand one discard away from a flush.
type FlushDraw struct {
	Discard    int    // evaluation-order position to throw, NoDraw when absent
	Completion HandID // lowest flush reachable by the discard, -1 when absent
}

// Ok reports whether the hand is a potential flush.
func (f FlushDraw) Ok() bool {
	return f.Discard != NoDraw
}

// StraightDraw describes a hand one discard away from a straight.
type StraightDraw struct {
	Discard      int    // evaluation-order position to throw, NoDraw when absent
	Multiplicity int    // completable windows, capped at 2; 0 when absent
	Completion   HandID // straight reachable through the best window, -1 when absent
}

// Ok reports whether the hand is a potential straight.
func (s StraightDraw) Ok() bool {
	return s.Discard != NoDraw
}

var (
	noFlushDraw    = FlushDraw{Discard: NoDraw, Completion: -1}
	noStraightDraw = StraightDraw{Discard: NoDraw, Completion: -1}
)

// Evaluation is the immutable result of classifying five cards.
type Evaluation struct {
	Category     Category
	Cards        [HandSize]Card // evaluation-significant order, defining groups first
	S0           int64          // tie-break ordinal, equal for equivalent hands
	FlushDraw    FlushDraw
	StraightDraw StraightDraw
}

// CategoryBase is 13^5, the S0 weight of a category.
const CategoryBase = 13 * 13 * 13 * 13 * 13

// group is a run of equally ranked cards in the sorted hand.
type group struct {
	start int
	size  int
}

// Evaluate classifies a hand and computes its ordering and draw metadata.
func Evaluate(h Hand) Evaluation {
	cards := h.cards

	var suits [4]int
	var ranks [13]int
	var pairs, triples, quads []group
	maxSuit := 0

	// One pass over the sorted cards: equal ranks are adjacent, so a run ends
	// whenever the next card differs.
	runStart := 0
	for i, c := range cards {
		suits[c.Suit()]++
		ranks[c.Rank()]++
		if suits[c.Suit()] > maxSuit {
			maxSuit = suits[c.Suit()]
		}
		if i == HandSize-1 || cards[i+1].Rank() != c.Rank() {
			g := group{start: runStart, size: i - runStart + 1}
			switch g.size {
			case 2:
				pairs = append(pairs, g)
			case 3:
				triples = append(triples, g)
			case 4:
				quads = append(quads, g)
			}
			runStart = i + 1
		}
	}

	flush := maxSuit == HandSize
	distinct := len(pairs) == 0 && len(triples) == 0 && len(quads) == 0
	wheel := distinct && cards[0].Rank() == Ace && cards[1].Rank() == Five
	straight := distinct && (cards[0].Rank()-cards[4].Rank() == 4 || wheel)

	ev := Evaluation{FlushDraw: noFlushDraw, StraightDraw: noStraightDraw}
	switch {
	case flush && straight:
		ev.Category = StraightFlush
		ev.Cards = straightOrder(cards, wheel)
	case flush:
		ev.Category = Flush
		ev.Cards = cards
	case straight:
		ev.Category = Straight
		ev.Cards = straightOrder(cards, wheel)
	case distinct:
		ev.Category = HighCard
		ev.Cards = cards
	case len(triples) == 1 && len(pairs) == 1:
		ev.Category = FullHouse
		ev.Cards = groupOrder(cards, triples[0], pairs[0])
	case len(pairs) == 1:
		ev.Category = OnePair
		ev.Cards = groupOrder(cards, pairs[0])
	case len(pairs) == 2:
		ev.Category = TwoPair
		ev.Cards = groupOrder(cards, pairs[0], pairs[1])
	case len(triples) == 1:
		ev.Category = ThreeOfAKind
		ev.Cards = groupOrder(cards, triples[0])
	default:
		ev.Category = FourOfAKind
		ev.Cards = groupOrder(cards, quads[0])
	}

	ev.S0 = s0(ev.Category, ev.Cards)

	if ev.Category == HighCard || ev.Category == OnePair {
		ev.FlushDraw = flushDraw(ev.Cards, suits)
		ev.StraightDraw = straightDraw(ev.Cards, ranks)
	}
	return ev
}

// EvaluateCards is a convenience wrapper for unsorted input.
func EvaluateCards(cards ...Card) (Evaluation, error) {
	h, err := NewHand(cards...)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(h), nil
}

func s0(cat Category, cards [HandSize]Card) int64 {
	v := int64(cat)
	for _, c := range cards {
		v = v*13 + int64(c.Rank())
	}
	return v
}

// straightOrder moves the ace behind the five in a wheel so it ranks lowest.
func straightOrder(cards [HandSize]Card, wheel bool) [HandSize]Card {
	if !wheel {
		return cards
	}
	return [HandSize]Card{cards[1], cards[2], cards[3], cards[4], cards[0]}
}

// groupOrder places the given groups first and the remaining kickers after
// them in descending order. Kickers are the full index range minus group members.
func groupOrder(cards [HandSize]Card, groups ...group) [HandSize]Card {
	var out [HandSize]Card
	var used uint8
	n := 0
	for _, g := range groups {
		for i := g.start; i < g.start+g.size; i++ {
			out[n] = cards[i]
			used |= 1 << i
			n++
		}
	}
	for i := range cards {
		if used&(1<<i) == 0 {
			out[n] = cards[i]
			n++
		}
	}
	return out
}

// flushDraw finds the lone off-suit card of a four-flush. The completion uses
// the lowest rank not already held, in the four-card suit.
func flushDraw(cards [HandSize]Card, suits [4]int) FlushDraw {
	suit := -1
	for s, n := range suits {
		if n == HandSize-1 {
			suit = s
		}
	}
	if suit < 0 {
		return noFlushDraw
	}

	var held uint16
	discard := NoDraw
	kept := make([]Card, 0, HandSize)
	for i, c := range cards {
		held |= 1 << c.Rank()
		if int(c.Suit()) != suit {
			discard = i
			continue
		}
		kept = append(kept, c)
	}

	var low uint8
	for low = 0; low < 13; low++ {
		if held&(1<<low) == 0 {
			break
		}
	}
	completion, err := NewHand(append(kept, NewCard(low, uint8(suit)))...)
	if err != nil {
		return noFlushDraw
	}
	return FlushDraw{Discard: discard, Completion: completion.ID()}
}

// straightWindows lists the five ranks of every straight, ace-low first.
var straightWindows = func() [10][5]uint8 {
	var w [10][5]uint8
	w[0] = [5]uint8{Ace, Two, Three, Four, Five}
	for low := uint8(0); low <= 8; low++ {
		for j := uint8(0); j < 5; j++ {
			w[low+1][j] = low + j
		}
	}
	return w
}()

// straightDraw counts the windows completable by discarding exactly one card.
// Three or more windows collapse into multiplicity 2.
func straightDraw(cards [HandSize]Card, ranks [13]int) StraightDraw {
	var completable []int
	for w, window := range straightWindows {
		held := 0
		for _, r := range window {
			if ranks[r] > 0 {
				held++
			}
		}
		if held == HandSize-1 {
			completable = append(completable, w)
		}
	}
	if len(completable) == 0 {
		return noStraightDraw
	}

	var hist [13]int
	for _, w := range completable {
		for _, r := range straightWindows[w] {
			hist[r]++
		}
	}
	for r, n := range ranks {
		hist[r] += n
	}

	best, bestScore, bestHeld := -1, -1, -1
	for _, w := range completable {
		score, held := 0, 0
		for _, r := range straightWindows[w] {
			score += hist[r]
			held += ranks[r]
		}
		if score > bestScore || (score == bestScore && held > bestHeld) {
			best, bestScore, bestHeld = w, score, held
		}
	}

	window := straightWindows[best]
	inWindow := func(r uint8) bool {
		for _, wr := range window {
			if wr == r {
				return true
			}
		}
		return false
	}

	discard := NoDraw
	var seen uint16
	for i, c := range cards {
		if !inWindow(c.Rank()) || seen&(1<<c.Rank()) != 0 {
			discard = i
			break
		}
		seen |= 1 << c.Rank()
	}

	var missing uint8
	for _, r := range window {
		if ranks[r] == 0 {
			missing = r
		}
	}

	kept := make([]Card, 0, HandSize)
	for i, c := range cards {
		if i != discard {
			kept = append(kept, c)
		}
	}
	fill := NewCard(missing, (kept[0].Suit()+1)%4)
	completion, err := NewHand(append(kept, fill)...)
	if err != nil {
		return noStraightDraw
	}

	return StraightDraw{
		Discard:      discard,
		Multiplicity: min(len(completable), 2),
		Completion:   completion.ID(),
	}
}
