package poker

import (
	"errors"
	"fmt"
	"strings"
)

// HandSize is the number of cards in a draw poker hand.
const HandSize = 5

// HandID is the base-52 positional encoding of the five canonically sorted cards.
type HandID int64

// MaxHandID is the exclusive upper bound of the hand id encoding.
const MaxHandID HandID = 52 * 52 * 52 * 52 * 52

// ErrInvalidHandID is returned for ids outside the encoding or not in canonical order.
var ErrInvalidHandID = errors.New("invalid hand id")

// Hand holds exactly five distinct cards sorted descending by (rank, suit).
type Hand struct {
	cards [HandSize]Card
}

// NewHand builds a canonical hand from five distinct cards in any order.
func NewHand(cards ...Card) (Hand, error) {
	if len(cards) != HandSize {
		return Hand{}, fmt.Errorf("hand needs %d cards, got %d", HandSize, len(cards))
	}
	var h Hand
	for i, c := range cards {
		if c >= NumCards {
			return Hand{}, fmt.Errorf("card %d out of range: %d", i, c)
		}
		h.cards[i] = c
	}
	if NewCardSet(cards...).Count() != HandSize {
		return Hand{}, errors.New("hand contains duplicate cards")
	}
	h.sort()
	return h, nil
}

// MustHand parses a hand and panics on error (for tests)
func MustHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse hand '%s': %v", s, err))
	}
	return h
}

// ParseHand parses a delimited string such as "AH,KH,QH,JH,10H".
func ParseHand(s string) (Hand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Hand{}, err
	}
	return NewHand(cards...)
}

// HandFromIndices builds a hand from dense card indices.
func HandFromIndices(indices ...int) (Hand, error) {
	cards := make([]Card, 0, len(indices))
	for _, idx := range indices {
		c, err := CardFromIndex(idx)
		if err != nil {
			return Hand{}, err
		}
		cards = append(cards, c)
	}
	return NewHand(cards...)
}

// HandFromID decodes a canonical hand id.
func HandFromID(id HandID) (Hand, error) {
	if id < 0 || id >= MaxHandID {
		return Hand{}, fmt.Errorf("%w: %d out of range", ErrInvalidHandID, id)
	}
	var h Hand
	rem := id
	div := MaxHandID / NumCards
	for i := range h.cards {
		h.cards[i] = Card(rem / div)
		rem %= div
		div /= NumCards
	}
	for i := 1; i < HandSize; i++ {
		if h.cards[i-1].order() <= h.cards[i].order() {
			return Hand{}, fmt.Errorf("%w: %d is not canonical", ErrInvalidHandID, id)
		}
	}
	return h, nil
}

// HandFromSet builds a hand from a set holding exactly five cards.
func HandFromSet(s CardSet) (Hand, error) {
	if s.Count() != HandSize {
		return Hand{}, fmt.Errorf("hand needs %d cards, set has %d", HandSize, s.Count())
	}
	cards := make([]Card, 0, HandSize)
	for c := Card(0); c < NumCards; c++ {
		if s.Has(c) {
			cards = append(cards, c)
		}
	}
	return NewHand(cards...)
}

// DealHand deals five cards from the deck.
func DealHand(d *Deck) (Hand, error) {
	cards, err := d.Deal(HandSize)
	if err != nil {
		return Hand{}, err
	}
	return NewHand(cards...)
}

// Cards returns the sorted cards.
func (h Hand) Cards() [HandSize]Card {
	return h.cards
}

// Card returns the card at sorted position i.
func (h Hand) Card(i int) Card {
	return h.cards[i]
}

// ID returns the base-52 encoding of the sorted cards.
func (h Hand) ID() HandID {
	var id HandID
	for _, c := range h.cards {
		id = id*NumCards + HandID(c)
	}
	return id
}

// RankOnly returns the ranks of the sorted cards.
func (h Hand) RankOnly() [HandSize]uint8 {
	var ranks [HandSize]uint8
	for i, c := range h.cards {
		ranks[i] = c.Rank()
	}
	return ranks
}

// Set returns the hand as a card set.
func (h Hand) Set() CardSet {
	return NewCardSet(h.cards[:]...)
}

// Contains reports whether c is in the hand.
func (h Hand) Contains(c Card) bool {
	for _, hc := range h.cards {
		if hc == c {
			return true
		}
	}
	return false
}

// Replace discards the given cards, draws replacements from the deck in order
// and returns the re-sorted hand. The receiver is left untouched.
func (h Hand) Replace(discard []Card, d *Deck) (Hand, error) {
	out := h
	for _, c := range discard {
		slot := -1
		for i, hc := range out.cards {
			if hc == c {
				slot = i
				break
			}
		}
		if slot < 0 {
			return Hand{}, fmt.Errorf("discard %s not in hand %s", c, h)
		}
		drawn, err := d.DealOne()
		if err != nil {
			return Hand{}, err
		}
		out.cards[slot] = drawn
	}
	out.sort()
	return out, nil
}

// String returns the comma separated card tokens.
func (h Hand) String() string {
	parts := make([]string, HandSize)
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func (h *Hand) sort() {
	sortDescending(h.cards[:])
}

// sortDescending is an insertion sort by (rank, suit), fast for five cards.
func sortDescending(cards []Card) {
	for i := 1; i < len(cards); i++ {
		c := cards[i]
		j := i - 1
		for j >= 0 && cards[j].order() < c.order() {
			cards[j+1] = cards[j]
			j--
		}
		cards[j+1] = c
	}
}
