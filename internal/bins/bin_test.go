package bins

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/ranktable"
	"github.com/lox/drawpoker/poker"
)

// valueOf evaluates a hand without a table; strength does not affect binning.
func valueOf(t *testing.T, s string) ranktable.HandValue {
	t.Helper()
	h, err := poker.ParseHand(s)
	require.NoError(t, err)
	return ranktable.NewValue(h.ID(), poker.Evaluate(h), 1)
}

func TestDefaultCoversEveryShape(t *testing.T) {
	t.Parallel()
	set := Default()
	require.NoError(t, set.Coverage())
	assert.Equal(t, 17, set.Len())
}

func TestClassify(t *testing.T) {
	t.Parallel()
	set := Default()

	tests := []struct {
		name       string
		hand       string
		bin        string
		strategies []Strategy
	}{
		{"royal flush", "AH,KH,QH,JH,10H", "Straight Flush", []Strategy{{}}},
		{"quads", "7S,7H,7D,7C,KS", "Four of a Kind", []Strategy{{}, {4}}},
		{"two pair", "KS,KD,5H,5C,9S", "Two Pair", []Strategy{{}, {4}}},
		{"low pair", "9S,9H,AS,4D,2C", "Low Pair", []Strategy{{}, {4}, {3, 4}, {2, 3, 4}}},
		{"high pair", "KS,KH,9S,4D,2C", "High Pair", []Strategy{{}, {4}, {3, 4}, {2, 3, 4}}},
		{"ace high", "AS,JD,8H,5C,3S", "Ace High", []Strategy{{1, 2, 3, 4}, {2, 3, 4}, {0, 1, 2, 3, 4}}},
		{"king high", "KS,JD,8H,5C,3S", "High Card", []Strategy{{0, 1, 2, 3, 4}, {1, 2, 3, 4}, {2, 3, 4}}},
		{"four flush", "AH,KH,7H,3H,9S", "High Card Potential Flush", []Strategy{{2}, {1, 2, 3, 4}, {0, 1, 2, 3, 4}}},
		{"gutshot", "9S,8H,6D,5C,KS", "High Card Potential Straight 1", []Strategy{{0}, {2, 3, 4}, {1, 2, 3, 4}}},
		{"open ender", "9S,8H,7D,6C,2S", "High Card Potential Straight 2", []Strategy{{4}, {2, 3, 4}, {1, 2, 3, 4}}},
		{"pair with flush draw", "KH,KS,8H,5H,2H", "One Pair Potential Flush", []Strategy{{}, {0}, {2, 3, 4}}},
		{"pair with straight draw", "8S,8H,7D,6C,5S", "One Pair Potential Straight 2", []Strategy{{}, {1}, {2, 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := set.Classify(valueOf(t, tt.hand))
			require.NoError(t, err)
			assert.Equal(t, tt.bin, m.Name)
			assert.Equal(t, tt.strategies, m.Strategies)
			idx, ok := set.Index(tt.bin)
			require.True(t, ok)
			assert.Equal(t, idx, m.Bin)
		})
	}
}

func TestFlushDominatesStraight(t *testing.T) {
	t.Parallel()
	// Four hearts and an open-ended straight draw at once
	v := valueOf(t, "9H,8H,7H,6H,2S")
	require.True(t, v.FlushDraw.Ok())
	require.True(t, v.StraightDraw.Ok())

	shape := ShapeOf(v)
	assert.True(t, shape.PotentialFlush)
	assert.Zero(t, shape.PotentialStraight)

	m, err := Default().Classify(v)
	require.NoError(t, err)
	assert.Equal(t, "High Card Potential Flush", m.Name)
	assert.Equal(t, Strategy{4}, m.Strategies[0])
}

func TestWildcardResolutionDoesNotMutateSet(t *testing.T) {
	t.Parallel()
	set := Default()
	idx, ok := set.Index("High Card Potential Straight 1")
	require.True(t, ok)

	a, err := set.Classify(valueOf(t, "9S,8H,6D,5C,KS"))
	require.NoError(t, err)
	b, err := set.Classify(valueOf(t, "QS,9H,8D,6C,5S"))
	require.NoError(t, err)
	require.Equal(t, idx, a.Bin)
	require.Equal(t, idx, b.Bin)

	assert.Equal(t, Strategy{0}, a.Strategies[0])
	assert.Equal(t, Strategy{0}, b.Strategies[0])
	assert.Equal(t, Strategy{Wildcard}, set.Bin(idx).Strategies[0])

	// Mutating a match or a copy leaves the set untouched
	a.Strategies[0][0] = 3
	copied := set.Bin(idx)
	copied.Strategies[0][0] = 2
	assert.Equal(t, Strategy{Wildcard}, set.Bin(idx).Strategies[0])
}

func TestNoMatchingBin(t *testing.T) {
	t.Parallel()
	set, err := NewSet([]Bin{{Name: "Flushes", Category: poker.Flush, RankFrom: 0, RankTo: 13, Strategies: []Strategy{{}}}})
	require.NoError(t, err)

	_, err = set.Classify(valueOf(t, "KS,KD,5H,5C,9S"))
	assert.ErrorIs(t, err, ErrNoMatchingBin)
	assert.ErrorIs(t, set.Coverage(), ErrNoMatchingBin)
}

func TestBinValidation(t *testing.T) {
	t.Parallel()
	valid := Bin{Name: "ok", Category: poker.HighCard, RankFrom: 0, RankTo: 13, Strategies: []Strategy{{}}}

	tests := []struct {
		name   string
		mutate func(b *Bin)
	}{
		{"empty name", func(b *Bin) { b.Name = "" }},
		{"comma in name", func(b *Bin) { b.Name = "a,b" }},
		{"inverted range", func(b *Bin) { b.RankFrom, b.RankTo = 5, 5 }},
		{"range past ace", func(b *Bin) { b.RankTo = 14 }},
		{"bad multiplicity", func(b *Bin) { b.PotentialStraight = 3 }},
		{"flush and straight", func(b *Bin) { b.PotentialFlush, b.PotentialStraight = true, 1 }},
		{"no strategies", func(b *Bin) { b.Strategies = nil }},
		{"position out of range", func(b *Bin) { b.Strategies = []Strategy{{5}} }},
		{"repeated position", func(b *Bin) { b.Strategies = []Strategy{{1, 1}} }},
		{"wildcard without draw", func(b *Bin) { b.Strategies = []Strategy{{Wildcard}} }},
		{"two wildcards", func(b *Bin) {
			b.PotentialFlush = true
			b.Strategies = []Strategy{{Wildcard, Wildcard}}
		}},
	}
	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := valid
			b.Strategies = cloneStrategies(valid.Strategies)
			tt.mutate(&b)
			assert.Error(t, b.Validate())
		})
	}

	_, err := NewSet([]Bin{valid, valid})
	assert.ErrorContains(t, err, "defined twice")
	_, err = NewSet(nil)
	assert.Error(t, err)
}

func TestSetRoundTrip(t *testing.T) {
	t.Parallel()
	set := Default()

	var buf bytes.Buffer
	require.NoError(t, set.Save(&buf))
	assert.Contains(t, buf.String(), `"__enum__": "HandType.straight_flush"`)

	loaded, err := LoadSet(&buf)
	require.NoError(t, err)
	assert.Equal(t, set.Bins(), loaded.Bins())
}

func TestLoadSetAcceptsLegacyForms(t *testing.T) {
	t.Parallel()
	input := `[
	  {"name": "Straight Flush", "hand_type": {"__enum__": "HandType.straight_flush"},
	   "rank_from": 0, "rank_to": 13, "is_potential_straight": false, "is_potential_flush": false,
	   "_SBin__strategies": [[]], "strategies_hitcount": [0], "index": 0},
	  {"name": "Pair Draw", "hand_type": "one_pair", "rank_from": 0, "rank_to": 13,
	   "is_potential_straight": 2, "is_potential_flush": false, "strategies": [[], [-1], [2, 3, 4]]}
	]`
	set, err := LoadSet(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	sf := set.Bin(0)
	assert.Equal(t, poker.StraightFlush, sf.Category)
	assert.Equal(t, []Strategy{{}}, sf.Strategies)
	assert.Zero(t, sf.PotentialStraight)

	pd := set.Bin(1)
	assert.Equal(t, poker.OnePair, pd.Category)
	assert.Equal(t, 2, pd.PotentialStraight)
	assert.Equal(t, []Strategy{{}, {Wildcard}, {2, 3, 4}}, pd.Strategies)
}

func TestLoadSetErrors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		`not json`,
		`[{"name": "x", "hand_type": "royal", "rank_from": 0, "rank_to": 13, "strategies": [[]]}]`,
		`[{"name": "x", "hand_type": "flush", "rank_from": 0, "rank_to": 13, "is_potential_straight": "two", "strategies": [[]]}]`,
		`[{"name": "x", "hand_type": "flush", "rank_from": 0, "rank_to": 13, "strategies": [[7]]}]`,
		`[]`,
	} {
		_, err := LoadSet(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestStrategyString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "stand pat", Strategy{}.String())
	assert.Equal(t, "discard 2,3,4", Strategy{2, 3, 4}.String())
	assert.Equal(t, "discard draw", Strategy{Wildcard}.String())
}
