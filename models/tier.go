package models

import "fmt"

// BuyInTier is one of the three stake levels selected before a hand. The
// tier fixes the buy-in amount, the payout multiplier and how tightly the
// dealer plays. The amounts and multipliers are hand-tuned constants and
// are not derived from anything.
type BuyInTier string

const (
	TierLow  BuyInTier = "low"
	TierMid  BuyInTier = "mid"
	TierHigh BuyInTier = "high"
)

// BuyIn returns the tier's stake in coins.
func (t BuyInTier) BuyIn() int64 {
	switch t {
	case TierLow:
		return 5
	case TierMid:
		return 50
	case TierHigh:
		return 500
	default:
		return 0
	}
}

// Multiplier returns the tier's payout multiplier applied to the player's
// contribution on a winning showdown.
func (t BuyInTier) Multiplier() int64 {
	switch t {
	case TierLow:
		return 2
	case TierMid:
		return 3
	case TierHigh:
		return 5
	default:
		return 0
	}
}

// Valid reports whether t is one of the three known tiers.
func (t BuyInTier) Valid() bool {
	return t == TierLow || t == TierMid || t == TierHigh
}

// TierForBuyIn maps a raw buy-in amount back to its tier.
func TierForBuyIn(amount int64) (BuyInTier, error) {
	switch amount {
	case 5:
		return TierLow, nil
	case 50:
		return TierMid, nil
	case 500:
		return TierHigh, nil
	default:
		return "", fmt.Errorf("no buy-in tier for amount %d", amount)
	}
}
