package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a dense card index: suit*13 + rank.
// Ranks run 0-12 (deuce through ace) and suits 0-3 (clubs, diamonds, hearts, spades).
type Card uint8

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

// NumCards is the size of a standard deck.
const NumCards = 52

var (
	rankTokens = [13]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	suitTokens = "CDHS"
)

// NewCard creates a card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(suit*13 + rank)
}

// CardFromIndex converts a dense index (0-51) into a card.
func CardFromIndex(idx int) (Card, error) {
	if idx < 0 || idx >= NumCards {
		return 0, fmt.Errorf("card index %d out of range", idx)
	}
	return Card(idx), nil
}

// Rank returns the rank of the card (0-12)
func (c Card) Rank() uint8 {
	return uint8(c) % 13
}

// Suit returns the suit of the card (0-3)
func (c Card) Suit() uint8 {
	return uint8(c) / 13
}

// Index returns the dense index of the card (0-51).
func (c Card) Index() int {
	return int(c)
}

// order is the (rank, suit) sort key used for canonical hand ordering.
func (c Card) order() uint8 {
	return c.Rank()*4 + c.Suit()
}

// SortKey returns rank*4+suit, the key hands are sorted by.
func (c Card) SortKey() int {
	return int(c.order())
}

// CardFromSortKey is the inverse of SortKey.
func CardFromSortKey(k int) Card {
	return NewCard(uint8(k/4), uint8(k%4))
}

// String returns the persisted token form, e.g. "AS" or "10H".
func (c Card) String() string {
	if c >= NumCards {
		return "??"
	}
	return rankTokens[c.Rank()] + string(suitTokens[c.Suit()])
}

// Compact returns the two character token used by game servers, e.g. "TH".
func (c Card) Compact() string {
	if c >= NumCards {
		return "??"
	}
	return strings.Replace(c.String(), "10", "T", 1)
}

// ParseCard parses a card token. Accepts "10H", "TH", "th", "AS" and "as".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 3 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	rankPart, suitPart := s[:len(s)-1], s[len(s)-1]

	var rank uint8
	switch rankPart {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "10", "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return 0, fmt.Errorf("invalid rank: %q", rankPart)
	}

	suit := strings.IndexByte(suitTokens, suitPart)
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", suitPart)
	}

	return NewCard(rank, uint8(suit)), nil
}

// ParseCards parses a list of tokens separated by commas and/or whitespace.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for i, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// CardSet is a bitset of cards, one bit per dense index.
type CardSet uint64

// NewCardSet creates a set from multiple cards
func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s.Add(c)
	}
	return s
}

// Add adds a card to the set
func (s *CardSet) Add(c Card) {
	*s |= 1 << c
}

// Has checks if the set contains a specific card
func (s CardSet) Has(c Card) bool {
	return s&(1<<c) != 0
}

// Count returns the number of cards in the set
func (s CardSet) Count() int {
	return bits.OnesCount64(uint64(s))
}
