// Package bins groups hands into equivalence classes that share candidate
// discard strategies, and tracks how each strategy performs.
package bins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

// Wildcard in a strategy stands for the hand's draw discard, resolved when a
// hand is classified.
const Wildcard = -1

// ErrNoMatchingBin means the configured bins do not cover a hand. It is a
// configuration error, never a runtime condition.
var ErrNoMatchingBin = errors.New("no bin matches hand")

// Strategy is a set of evaluation-order positions to discard.
type Strategy []int

func (s Strategy) String() string {
	if len(s) == 0 {
		return "stand pat"
	}
	parts := make([]string, len(s))
	for i, p := range s {
		if p == Wildcard {
			parts[i] = "draw"
		} else {
			parts[i] = fmt.Sprint(p)
		}
	}
	return "discard " + strings.Join(parts, ",")
}

// Bin is a named class of hands with the same category, best-card rank range
// and draw potential.
type Bin struct {
	Name              string
	Category          poker.Category
	RankFrom          int // inclusive
	RankTo            int // exclusive
	PotentialFlush    bool
	PotentialStraight int // 0, 1 or 2 completable windows
	Strategies        []Strategy
}

// Shape is the part of a hand value bins classify on.
type Shape struct {
	Category          poker.Category
	BestRank          int
	PotentialFlush    bool
	PotentialStraight int
}

// ShapeOf extracts the classification shape of a value. A hand that could
// complete either draw counts as a potential flush only.
func ShapeOf(v ranktable.HandValue) Shape {
	s := Shape{
		Category:       v.Category,
		BestRank:       int(v.BestRank()),
		PotentialFlush: v.FlushDraw.Ok(),
	}
	if v.StraightDraw.Ok() && !s.PotentialFlush {
		s.PotentialStraight = v.StraightDraw.Multiplicity
	}
	return s
}

func (s Shape) String() string {
	return fmt.Sprintf("%s rank=%d flush=%t straight=%d", s.Category, s.BestRank, s.PotentialFlush, s.PotentialStraight)
}

// Covers reports whether the bin's predicate accepts the shape.
func (b Bin) Covers(s Shape) bool {
	return b.Category == s.Category &&
		b.RankFrom <= s.BestRank && s.BestRank < b.RankTo &&
		b.PotentialFlush == s.PotentialFlush &&
		b.PotentialStraight == s.PotentialStraight
}

// Validate checks a single bin definition.
func (b Bin) Validate() error {
	if b.Name == "" {
		return errors.New("bin name is required")
	}
	if strings.ContainsAny(b.Name, ",\n") {
		return fmt.Errorf("bin %q: name cannot contain commas or newlines", b.Name)
	}
	if int(b.Category) >= poker.NumCategories {
		return fmt.Errorf("bin %q: unknown category %d", b.Name, b.Category)
	}
	if b.RankFrom < 0 || b.RankTo > 13 || b.RankFrom >= b.RankTo {
		return fmt.Errorf("bin %q: rank range [%d,%d) must lie within [0,13) and be non-empty", b.Name, b.RankFrom, b.RankTo)
	}
	if b.PotentialStraight < 0 || b.PotentialStraight > 2 {
		return fmt.Errorf("bin %q: straight multiplicity must be 0, 1 or 2", b.Name)
	}
	if b.PotentialFlush && b.PotentialStraight != 0 {
		return fmt.Errorf("bin %q: potential flush bins cannot also require a straight draw", b.Name)
	}
	if len(b.Strategies) == 0 {
		return fmt.Errorf("bin %q: at least one strategy is required", b.Name)
	}
	drawBin := b.PotentialFlush || b.PotentialStraight > 0
	for i, st := range b.Strategies {
		var seen uint8
		wild := 0
		for _, p := range st {
			switch {
			case p == Wildcard:
				wild++
			case p < 0 || p >= poker.HandSize:
				return fmt.Errorf("bin %q strategy %d: position %d out of range", b.Name, i, p)
			case seen&(1<<p) != 0:
				return fmt.Errorf("bin %q strategy %d: position %d repeated", b.Name, i, p)
			default:
				seen |= 1 << p
			}
		}
		if wild > 1 {
			return fmt.Errorf("bin %q strategy %d: at most one wildcard", b.Name, i)
		}
		if wild > 0 && !drawBin {
			return fmt.Errorf("bin %q strategy %d: wildcard needs a potential flush or straight bin", b.Name, i)
		}
	}
	return nil
}

// resolve replaces wildcards with the hand's draw discard.
func (b Bin) resolve(v ranktable.HandValue) []Strategy {
	discard := Wildcard
	switch {
	case b.PotentialStraight > 0:
		discard = v.StraightDraw.Discard
	case b.PotentialFlush:
		discard = v.FlushDraw.Discard
	}

	out := make([]Strategy, len(b.Strategies))
	for i, st := range b.Strategies {
		resolved := make(Strategy, 0, len(st))
		for _, p := range st {
			if p == Wildcard {
				p = discard
			}
			if p < 0 || containsPosition(resolved, p) {
				continue
			}
			resolved = append(resolved, p)
		}
		out[i] = resolved
	}
	return out
}

func containsPosition(st Strategy, p int) bool {
	for _, q := range st {
		if q == p {
			return true
		}
	}
	return false
}

// Match is the result of classifying one hand.
type Match struct {
	Bin        int // index into the set
	Name       string
	Strategies []Strategy // wildcards resolved for this hand
}

// Set is an ordered, immutable collection of bins. It is safe for concurrent use.
type Set struct {
	bins  []Bin
	names map[string]int
}

// NewSet validates and copies the bin definitions.
func NewSet(bins []Bin) (*Set, error) {
	if len(bins) == 0 {
		return nil, errors.New("bin set is empty")
	}
	s := &Set{bins: make([]Bin, len(bins)), names: make(map[string]int, len(bins))}
	for i, b := range bins {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.names[b.Name]; dup {
			return nil, fmt.Errorf("bin %q defined twice", b.Name)
		}
		s.names[b.Name] = i
		b.Strategies = cloneStrategies(b.Strategies)
		s.bins[i] = b
	}
	return s, nil
}

func cloneStrategies(in []Strategy) []Strategy {
	out := make([]Strategy, len(in))
	for i, st := range in {
		out[i] = append(Strategy{}, st...)
	}
	return out
}

// Len returns the number of bins.
func (s *Set) Len() int {
	return len(s.bins)
}

// Bin returns a copy of bin i.
func (s *Set) Bin(i int) Bin {
	b := s.bins[i]
	b.Strategies = cloneStrategies(b.Strategies)
	return b
}

// Bins returns copies of all bins in order.
func (s *Set) Bins() []Bin {
	out := make([]Bin, len(s.bins))
	for i := range s.bins {
		out[i] = s.Bin(i)
	}
	return out
}

// Index finds a bin by name.
func (s *Set) Index(name string) (int, bool) {
	i, ok := s.names[name]
	return i, ok
}

// Classify returns the first bin whose predicate accepts the hand.
func (s *Set) Classify(v ranktable.HandValue) (Match, error) {
	shape := ShapeOf(v)
	for i, b := range s.bins {
		if b.Covers(shape) {
			return Match{Bin: i, Name: b.Name, Strategies: b.resolve(v)}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNoMatchingBin, shape)
}

// Coverage checks that every classification shape has a bin. Draw shapes are
// only possible for high card and one pair hands.
func (s *Set) Coverage() error {
	type draw struct {
		flush    bool
		straight int
	}
	made := []draw{{}}
	drawing := []draw{{}, {flush: true}, {straight: 1}, {straight: 2}}

	for c := poker.HighCard; c <= poker.StraightFlush; c++ {
		draws := made
		if c == poker.HighCard || c == poker.OnePair {
			draws = drawing
		}
		for _, d := range draws {
			for r := 0; r < 13; r++ {
				shape := Shape{Category: c, BestRank: r, PotentialFlush: d.flush, PotentialStraight: d.straight}
				covered := false
				for _, b := range s.bins {
					if b.Covers(shape) {
						covered = true
						break
					}
				}
				if !covered {
					return fmt.Errorf("%w: %s", ErrNoMatchingBin, shape)
				}
			}
		}
	}
	return nil
}

// Default returns the built-in bin set. It covers every shape.
func Default() *Set {
	all := func(name string, c poker.Category, strategies ...Strategy) Bin {
		return Bin{Name: name, Category: c, RankFrom: 0, RankTo: 13, Strategies: strategies}
	}
	flush := func(b Bin) Bin {
		b.PotentialFlush = true
		return b
	}
	straight := func(b Bin, n int) Bin {
		b.PotentialStraight = n
		return b
	}
	ranks := func(b Bin, from, to int) Bin {
		b.RankFrom, b.RankTo = from, to
		return b
	}

	pairDraw := []Strategy{{}, {Wildcard}, {2, 3, 4}}
	pairMade := []Strategy{{}, {4}, {3, 4}, {2, 3, 4}}
	highFlush := []Strategy{{Wildcard}, {1, 2, 3, 4}, {0, 1, 2, 3, 4}}
	highStraight := []Strategy{{Wildcard}, {2, 3, 4}, {1, 2, 3, 4}}

	set, err := NewSet([]Bin{
		all("Straight Flush", poker.StraightFlush, Strategy{}),
		all("Four of a Kind", poker.FourOfAKind, Strategy{}, Strategy{4}),
		all("Full House", poker.FullHouse, Strategy{}),
		all("Flush", poker.Flush, Strategy{}),
		all("Straight", poker.Straight, Strategy{}),
		all("Three of a Kind", poker.ThreeOfAKind, Strategy{}, Strategy{4}, Strategy{3, 4}),
		all("Two Pair", poker.TwoPair, Strategy{}, Strategy{4}),
		flush(all("One Pair Potential Flush", poker.OnePair, pairDraw...)),
		straight(all("One Pair Potential Straight 1", poker.OnePair, pairDraw...), 1),
		straight(all("One Pair Potential Straight 2", poker.OnePair, pairDraw...), 2),
		ranks(all("Low Pair", poker.OnePair, pairMade...), 0, int(poker.Jack)),
		ranks(all("High Pair", poker.OnePair, pairMade...), int(poker.Jack), 13),
		flush(all("High Card Potential Flush", poker.HighCard, highFlush...)),
		straight(all("High Card Potential Straight 1", poker.HighCard, highStraight...), 1),
		straight(all("High Card Potential Straight 2", poker.HighCard, highStraight...), 2),
		ranks(all("Ace High", poker.HighCard, Strategy{1, 2, 3, 4}, Strategy{2, 3, 4}, Strategy{0, 1, 2, 3, 4}), int(poker.Ace), 13),
		ranks(all("High Card", poker.HighCard, Strategy{0, 1, 2, 3, 4}, Strategy{1, 2, 3, 4}, Strategy{2, 3, 4}), 0, int(poker.Ace)),
	})
	if err != nil {
		panic(fmt.Sprintf("default bins: %v", err))
	}
	return set
}
