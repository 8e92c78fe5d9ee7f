package poker

import (
	"testing"
)

func ranksOf(cards [HandSize]Card) [HandSize]uint8 {
	var out [HandSize]uint8
	for i, c := range cards {
		out[i] = c.Rank()
	}
	return out
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		hand      string
		category  Category
		evalRanks [HandSize]uint8
	}{
		{"royal flush", "AH,KH,QH,JH,10H", StraightFlush, [5]uint8{Ace, King, Queen, Jack, Ten}},
		{"steel wheel", "AD,2D,3D,4D,5D", StraightFlush, [5]uint8{Five, Four, Three, Two, Ace}},
		{"quads", "7S,7H,7D,7C,KS", FourOfAKind, [5]uint8{Seven, Seven, Seven, Seven, King}},
		{"quads low kicker", "2S,KH,KD,KC,KS", FourOfAKind, [5]uint8{King, King, King, King, Two}},
		{"full house", "2C,2D,2H,5S,5C", FullHouse, [5]uint8{Two, Two, Two, Five, Five}},
		{"flush", "KS,10S,7S,4S,2S", Flush, [5]uint8{King, Ten, Seven, Four, Two}},
		{"straight", "9S,8H,7D,6C,5S", Straight, [5]uint8{Nine, Eight, Seven, Six, Five}},
		{"wheel", "AS,2D,3H,4C,5S", Straight, [5]uint8{Five, Four, Three, Two, Ace}},
		{"broadway", "AS,KD,QH,JC,10S", Straight, [5]uint8{Ace, King, Queen, Jack, Ten}},
		{"trips", "QS,QH,QD,9C,3S", ThreeOfAKind, [5]uint8{Queen, Queen, Queen, Nine, Three}},
		{"trips middle", "AS,8H,8D,8C,3S", ThreeOfAKind, [5]uint8{Eight, Eight, Eight, Ace, Three}},
		{"two pair", "KS,KD,5H,5C,9S", TwoPair, [5]uint8{King, King, Five, Five, Nine}},
		{"two pair high kicker", "AS,3D,3H,2C,2S", TwoPair, [5]uint8{Three, Three, Two, Two, Ace}},
		{"one pair", "9S,9H,AS,4D,2C", OnePair, [5]uint8{Nine, Nine, Ace, Four, Two}},
		{"high card", "AS,JD,8H,5C,3S", HighCard, [5]uint8{Ace, Jack, Eight, Five, Three}},
		{"ace king no straight", "AS,KD,3H,4C,5S", HighCard, [5]uint8{Ace, King, Five, Four, Three}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := Evaluate(MustHand(tt.hand))
			if ev.Category != tt.category {
				t.Errorf("Category = %s, want %s", ev.Category, tt.category)
			}
			if got := ranksOf(ev.Cards); got != tt.evalRanks {
				t.Errorf("evaluation order = %v, want %v", got, tt.evalRanks)
			}
		})
	}
}

func TestEvaluateS0(t *testing.T) {
	t.Parallel()
	ev := Evaluate(MustHand("AH,KH,QH,JH,10H"))
	want := int64(StraightFlush)*CategoryBase + 12*13*13*13*13 + 11*13*13*13 + 10*13*13 + 9*13 + 8
	if ev.S0 != want {
		t.Errorf("royal flush S0 = %d, want %d", ev.S0, want)
	}

	// Ordered weakest to strongest
	ladder := []string{
		"7S,5D,4H,3C,2S",
		"AS,KD,QH,JC,9S",
		"2S,2D,3H,4C,5S",
		"AS,AD,KH,QC,JS",
		"3S,3D,2H,2C,4S",
		"AS,AD,KH,KC,QS",
		"2S,2D,2H,3C,4S",
		"AS,2D,3H,4C,5S",
		"2S,3D,4H,5C,6S",
		"AS,KD,QH,JC,10S",
		"7S,5S,4S,3S,2S",
		"2S,2D,2H,3C,3S",
		"2S,2D,2H,2C,3S",
		"AD,2D,3D,4D,5D",
		"AH,KH,QH,JH,10H",
	}
	var prev int64 = -1
	for _, s := range ladder {
		ev := Evaluate(MustHand(s))
		if ev.S0 <= prev {
			t.Errorf("%s S0 %d not above previous %d", s, ev.S0, prev)
		}
		prev = ev.S0
	}
}

func TestEvaluateEquivalentHandsShareS0(t *testing.T) {
	t.Parallel()
	a := Evaluate(MustHand("KS,KD,5H,5C,9S"))
	b := Evaluate(MustHand("KH,KC,5S,5D,9C"))
	if a.S0 != b.S0 {
		t.Errorf("Equivalent hands differ: %d vs %d", a.S0, b.S0)
	}
}

func TestCategoryTags(t *testing.T) {
	t.Parallel()
	for c := HighCard; c <= StraightFlush; c++ {
		parsed, err := ParseCategory(c.String())
		if err != nil || parsed != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), parsed, err)
		}
		parsed, err = ParseCategory(c.EnumTag())
		if err != nil || parsed != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.EnumTag(), parsed, err)
		}
	}
	if FullHouse.EnumTag() != "HandType.full_house" {
		t.Errorf("Unexpected tag %s", FullHouse.EnumTag())
	}
	if _, err := ParseCategory("royal_flush"); err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestFlushDraw(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		hand       string
		discard    int
		completion string
	}{
		{"high card", "AH,KH,7H,3H,9S", 2, "AH,KH,7H,3H,2H"},
		{"pair off suit", "KH,KS,8H,5H,2H", 0, "KH,8H,5H,3H,2H"},
		{"low card off suit", "QD,JD,8D,6D,2C", 4, "QD,JD,8D,6D,3D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := Evaluate(MustHand(tt.hand))
			if !ev.FlushDraw.Ok() {
				t.Fatalf("Expected flush draw for %s", tt.hand)
			}
			if ev.FlushDraw.Discard != tt.discard {
				t.Errorf("Discard = %d, want %d", ev.FlushDraw.Discard, tt.discard)
			}
			if want := MustHand(tt.completion).ID(); ev.FlushDraw.Completion != want {
				got, _ := HandFromID(ev.FlushDraw.Completion)
				t.Errorf("Completion = %s, want %s", got, tt.completion)
			}
			done, err := HandFromID(ev.FlushDraw.Completion)
			if err != nil {
				t.Fatalf("HandFromID: %v", err)
			}
			if cat := Evaluate(done).Category; cat != Flush && cat != StraightFlush {
				t.Errorf("Completion is %s, not a flush", cat)
			}
		})
	}
}

func TestStraightDraw(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		hand         string
		discard      int
		multiplicity int
		completion   string
	}{
		{"open ended", "9S,8H,7D,6C,2S", 4, 2, "9S,8H,7D,6C,5C"},
		{"gutshot", "9S,8H,6D,5C,KS", 0, 1, "9S,8H,7C,6D,5C"},
		{"ace low", "AS,2D,3H,4C,9S", 1, 1, "AS,5C,4C,3H,2D"},
		{"pair", "8S,8H,7D,6C,5S", 1, 2, "8S,7D,6C,5S,4C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := Evaluate(MustHand(tt.hand))
			if !ev.StraightDraw.Ok() {
				t.Fatalf("Expected straight draw for %s", tt.hand)
			}
			if ev.StraightDraw.Discard != tt.discard {
				t.Errorf("Discard = %d, want %d", ev.StraightDraw.Discard, tt.discard)
			}
			if ev.StraightDraw.Multiplicity != tt.multiplicity {
				t.Errorf("Multiplicity = %d, want %d", ev.StraightDraw.Multiplicity, tt.multiplicity)
			}
			if want := MustHand(tt.completion).ID(); ev.StraightDraw.Completion != want {
				got, _ := HandFromID(ev.StraightDraw.Completion)
				t.Errorf("Completion = %s, want %s", got, tt.completion)
			}
			done, _ := HandFromID(ev.StraightDraw.Completion)
			if cat := Evaluate(done).Category; cat != Straight && cat != StraightFlush {
				t.Errorf("Completion is %s, not a straight", cat)
			}
		})
	}
}

func TestNoDrawsOutsideWeakCategories(t *testing.T) {
	t.Parallel()
	for _, s := range []string{
		"KH,KS,5H,5D,2H", // two pair with four hearts
		"9S,9H,9D,6C,5S", // trips
		"9H,8H,7H,6H,5H",
		"AS,JD,8H,5C,3S", // no draw at all
	} {
		ev := Evaluate(MustHand(s))
		if ev.FlushDraw.Ok() || ev.StraightDraw.Ok() {
			t.Errorf("%s: unexpected draw %+v %+v", s, ev.FlushDraw, ev.StraightDraw)
		}
		if ev.FlushDraw.Completion != -1 || ev.StraightDraw.Completion != -1 || ev.StraightDraw.Multiplicity != 0 {
			t.Errorf("%s: absent draws should carry sentinels", s)
		}
	}
}

// TestCategoryCounts walks all 2,598,960 hands.
func TestCategoryCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping exhaustive enumeration in short mode")
	}
	t.Parallel()

	want := [NumCategories]int{
		HighCard:      1302540,
		OnePair:       1098240,
		TwoPair:       123552,
		ThreeOfAKind:  54912,
		Straight:      10200,
		Flush:         5108,
		FullHouse:     3744,
		FourOfAKind:   624,
		StraightFlush: 40,
	}

	var got [NumCategories]int
	total := 0
	for a := 0; a < NumCards; a++ {
		for b := a + 1; b < NumCards; b++ {
			for c := b + 1; c < NumCards; c++ {
				for d := c + 1; d < NumCards; d++ {
					for e := d + 1; e < NumCards; e++ {
						h, err := NewHand(Card(a), Card(b), Card(c), Card(d), Card(e))
						if err != nil {
							t.Fatalf("NewHand: %v", err)
						}
						got[Evaluate(h).Category]++
						total++
					}
				}
			}
		}
	}

	if total != 2598960 {
		t.Errorf("Expected 2598960 hands, got %d", total)
	}
	for c := range want {
		if got[c] != want[c] {
			t.Errorf("%s: got %d, want %d", Category(c), got[c], want[c])
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	h := MustHand("9S,8H,7D,6C,2S")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Evaluate(h)
	}
}
