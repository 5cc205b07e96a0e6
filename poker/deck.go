package poker

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted is returned when more than 52 cards are drawn from a
// single deck. A full hand draws at most 9 cards, so hitting this means
// the deck state is corrupted and the hand must be aborted.
var ErrDeckExhausted = errors.New("poker: deck exhausted")

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is an ordered set of all 52 cards with a draw cursor.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck returns an unshuffled deck containing each (rank, suit) pair
// exactly once, in canonical suit-then-rank order.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for s := Clubs; s <= Spades; s++ {
		for r := MinRank; r <= MaxRank; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck in place using the supplied random source and
// resets the draw cursor. The source is injected so hands are reproducible
// under a fixed seed.
func (d *Deck) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.next = 0
}

// Draw returns the next card and advances the cursor.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// Remaining reports how many cards are left to draw.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
