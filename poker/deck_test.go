package poker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_HoldsAll52DistinctCards(t *testing.T) {
	deck := NewDeck()

	seen := make(map[Card]bool)
	for i := 0; i < DeckSize; i++ {
		c, err := deck.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "card %s drawn twice", c)
		seen[c] = true
		assert.GreaterOrEqual(t, c.Rank, MinRank)
		assert.LessOrEqual(t, c.Rank, MaxRank)
	}
	assert.Len(t, seen, DeckSize)
}

func TestDeck_ShuffleDrawsEachCardOnce(t *testing.T) {
	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewSource(42)))

	seen := make(map[Card]bool)
	for i := 0; i < DeckSize; i++ {
		c, err := deck.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "card %s drawn twice after shuffle", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestDeck_DrawPast52Fails(t *testing.T) {
	deck := NewDeck()
	for i := 0; i < DeckSize; i++ {
		_, err := deck.Draw()
		require.NoError(t, err)
	}

	_, err := deck.Draw()
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 0, deck.Remaining())
}

func TestDeck_ShuffleIsReproducibleUnderFixedSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))

	for i := 0; i < DeckSize; i++ {
		ca, err := a.Draw()
		require.NoError(t, err)
		cb, err := b.Draw()
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestDeck_ShuffleResetsCursor(t *testing.T) {
	deck := NewDeck()
	for i := 0; i < 10; i++ {
		_, err := deck.Draw()
		require.NoError(t, err)
	}
	deck.Shuffle(rand.New(rand.NewSource(1)))
	assert.Equal(t, DeckSize, deck.Remaining())
}

func TestCard_String(t *testing.T) {
	assert.Equal(t, "A♠", Card{Rank: 14, Suit: Spades}.String())
	assert.Equal(t, "K♥", Card{Rank: 13, Suit: Hearts}.String())
	assert.Equal(t, "Q♦", Card{Rank: 12, Suit: Diamonds}.String())
	assert.Equal(t, "J♣", Card{Rank: 11, Suit: Clubs}.String())
	assert.Equal(t, "10♠", Card{Rank: 10, Suit: Spades}.String())
	assert.Equal(t, "2♣", Card{Rank: 2, Suit: Clubs}.String())
}
