package poker

import "fmt"

// Suit identifies one of the four card suits.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank bounds. Aces are always high (14); the wheel straight is handled
// by the evaluator.
const (
	MinRank = 2
	MaxRank = 14
)

// Card is an immutable (rank, suit) value. Rank is 2..14 with 14 = Ace.
type Card struct {
	Rank int
	Suit Suit
}

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// RankString returns the display form of the card's rank.
func (c Card) RankString() string {
	switch c.Rank {
	case 14:
		return "A"
	case 13:
		return "K"
	case 12:
		return "Q"
	case 11:
		return "J"
	default:
		return fmt.Sprintf("%d", c.Rank)
	}
}

func (c Card) String() string {
	return c.RankString() + c.Suit.String()
}
