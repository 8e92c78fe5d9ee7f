package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
// The 52 card deck always covers supported player counts, so callers treat it as a bug.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck
type Deck struct {
	cards [NumCards]Card // Fixed size array
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	d.Shuffle()
	return d
}

// NewOrderedDeck creates a deck that deals the given cards in order.
// Used by tests and replay tooling.
func NewOrderedDeck(cards []Card) (*Deck, error) {
	if len(cards) > NumCards {
		return nil, fmt.Errorf("ordered deck has %d cards", len(cards))
	}
	d := &Deck{next: NumCards - len(cards)}
	if NewCardSet(cards...).Count() != len(cards) {
		return nil, errors.New("ordered deck contains duplicate cards")
	}
	copy(d.cards[d.next:], cards)
	return d, nil
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("deal %d with %d remaining: %w", n, d.CardsRemaining(), ErrDeckExhausted)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() (Card, error) {
	if d.next >= len(d.cards) {
		return 0, ErrDeckExhausted
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// Clone returns an independent copy sharing no state with d.
// The clone keeps the remaining order but has no RNG of its own.
func (d *Deck) Clone() *Deck {
	c := *d
	c.rng = nil
	return &c
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
