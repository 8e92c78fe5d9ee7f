package poker

import (
	"errors"
	"testing"
)

func TestNewHandSortsDescending(t *testing.T) {
	t.Parallel()
	h := MustHand("2C,AS,10H,KD,AH")
	want := "AS,AH,KD,10H,2C"
	if h.String() != want {
		t.Errorf("Expected %s, got %s", want, h.String())
	}
	ranks := h.RankOnly()
	if ranks != [HandSize]uint8{Ace, Ace, King, Ten, Two} {
		t.Errorf("Unexpected ranks %v", ranks)
	}
	if !h.Contains(NewCard(Ten, Hearts)) || h.Contains(NewCard(Ten, Spades)) {
		t.Error("Contains returned wrong result")
	}
	if h.Set().Count() != HandSize {
		t.Errorf("Expected set of 5, got %d", h.Set().Count())
	}
}

func TestNewHandValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"too few", "AS,KS,QS,JS"},
		{"too many", "AS,KS,QS,JS,10S,9S"},
		{"duplicate", "AS,AS,QS,JS,10S"},
		{"bad token", "AS,KS,QS,JS,1S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseHand(tt.input); err == nil {
				t.Errorf("ParseHand(%q) expected error", tt.input)
			}
		})
	}
	if _, err := NewHand(0, 1, 2, 3, 52); err == nil {
		t.Error("Expected out of range card error")
	}
}

func TestHandIDRoundTrip(t *testing.T) {
	t.Parallel()
	hands := []string{
		"AH,KH,QH,JH,10H",
		"2C,3C,4C,5C,7D",
		"AS,AH,AD,AC,KS",
		"9S,8H,7D,6C,2S",
	}
	for _, s := range hands {
		h := MustHand(s)
		id := h.ID()
		if id < 0 || id >= MaxHandID {
			t.Fatalf("%s: id %d out of range", s, id)
		}
		back, err := HandFromID(id)
		if err != nil {
			t.Fatalf("%s: HandFromID(%d): %v", s, id, err)
		}
		if back != h {
			t.Errorf("%s: round trip produced %s", s, back)
		}
	}
}

func TestHandIDEncoding(t *testing.T) {
	t.Parallel()
	h, err := HandFromIndices(51, 50, 49, 48, 47)
	if err != nil {
		t.Fatalf("HandFromIndices: %v", err)
	}
	// Sorted by (rank, suit): AS(51) KS(50) QS(49) JS(48) 10S(47)
	var want HandID
	for _, idx := range []int{51, 50, 49, 48, 47} {
		want = want*NumCards + HandID(idx)
	}
	if h.ID() != want {
		t.Errorf("Expected id %d, got %d", want, h.ID())
	}
}

func TestHandFromIDRejectsNonCanonical(t *testing.T) {
	t.Parallel()
	for _, id := range []HandID{-1, 0, MaxHandID, 1} {
		_, err := HandFromID(id)
		if !errors.Is(err, ErrInvalidHandID) {
			t.Errorf("HandFromID(%d) expected ErrInvalidHandID, got %v", id, err)
		}
	}

	// Ascending order encodes the same cards but is not canonical
	var ascending HandID
	for _, idx := range []int{0, 1, 2, 3, 4} {
		ascending = ascending*NumCards + HandID(idx)
	}
	if _, err := HandFromID(ascending); !errors.Is(err, ErrInvalidHandID) {
		t.Errorf("Expected non-canonical id to be rejected, got %v", err)
	}
}

func TestHandReplace(t *testing.T) {
	t.Parallel()
	h := MustHand("AS,KD,9H,4C,2C")
	deck, err := NewOrderedDeck(MustParseCards("AH,AD"))
	if err != nil {
		t.Fatalf("NewOrderedDeck: %v", err)
	}

	out, err := h.Replace(MustParseCards("4C,2C"), deck)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if out.String() != "AS,AH,AD,KD,9H" {
		t.Errorf("Unexpected hand after draw: %s", out)
	}
	if h.String() != "AS,KD,9H,4C,2C" {
		t.Errorf("Receiver was modified: %s", h)
	}

	if _, err := h.Replace(MustParseCards("QS"), deck); err == nil {
		t.Error("Expected error discarding a card not in hand")
	}
	if _, err := h.Replace(MustParseCards("AS"), deck); !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("Expected ErrDeckExhausted, got %v", err)
	}
}

func TestHandFromSet(t *testing.T) {
	t.Parallel()
	want := MustHand("AS,KD,9C,4H,2C")
	h, err := HandFromSet(want.Set())
	if err != nil {
		t.Fatalf("HandFromSet failed: %v", err)
	}
	if h != want {
		t.Errorf("Expected %s, got %s", want, h)
	}
	if _, err := HandFromSet(NewCardSet(MustParseCards("AS,KD,9C,4H")...)); err == nil {
		t.Error("Expected error for a four card set")
	}
}
