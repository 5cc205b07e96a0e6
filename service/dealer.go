package service

import (
	"math/rand"

	"pokerroom/models"
	"pokerroom/poker"
)

// Dealer strength thresholds per tier. These are hand-tuned values
// carried over from the source system; do not re-derive them.
const (
	lowTierRaisePercent = 35   // low tier raises this % of the time, hand-blind
	midTierThreshold    = 0.58 // mid tier raises on decent hands
	highTierVsRaise     = 0.70 // high tier needs a strong hand to re-raise aggression
	highTierVsCheck     = 0.55 // high tier presses moderate hands after a check
	broadwayBothMinRank = 10
	broadwayHighMinRank = 13
)

// dealerDecideRaise returns the dealer's raise amount for the current
// street, always the active buy-in or nothing. The low tier ignores its
// cards entirely; the mid tier plays its hole-card strength; the high
// tier additionally reacts to player aggression.
func dealerDecideRaise(hole []poker.Card, tier models.BuyInTier, playerRaised bool, rng *rand.Rand) int64 {
	raiseAmount := tier.BuyIn()

	if tier == models.TierLow {
		if rng.Intn(100) < lowTierRaisePercent {
			return raiseAmount
		}
		return 0
	}

	strength := holeStrength(hole)

	if tier == models.TierMid {
		if strength >= midTierThreshold {
			return raiseAmount
		}
		return 0
	}

	// High tier
	if playerRaised {
		if strength >= highTierVsRaise {
			return raiseAmount
		}
		return 0
	}
	if strength >= highTierVsCheck {
		return raiseAmount
	}
	return 0
}

// holeStrength is a rough pre-flop strength heuristic in [0, 1]: base
// from the high card, bonuses for pocket pairs, suitedness, connectors
// and broadway holdings.
func holeStrength(hole []poker.Card) float64 {
	if len(hole) != 2 {
		return 0.0
	}
	a, b := hole[0], hole[1]

	high, low := a.Rank, b.Rank
	if low > high {
		high, low = low, high
	}
	pair := a.Rank == b.Rank
	suited := a.Suit == b.Suit
	gap := high - low

	s := float64(high-2) / 12.0 * 0.45

	if pair {
		s += 0.40
	}
	if suited {
		s += 0.07
	}
	if gap == 1 {
		s += 0.05
	}
	if gap == 0 {
		s += 0.08
	}
	if high >= broadwayHighMinRank && low >= broadwayBothMinRank {
		s += 0.10
	}

	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s
}
