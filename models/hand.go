package models

import (
	"time"

	"pokerroom/poker"
)

// HandResult is the showdown outcome from the player's point of view.
type HandResult string

const (
	HandResultWin  HandResult = "win"
	HandResultLoss HandResult = "loss"
	HandResultTie  HandResult = "tie"
)

// Hand is the persisted record of a settled hand, written once at
// showdown. In-flight hands live only in memory.
type Hand struct {
	ID                 string     `db:"id"`
	UserID             string     `db:"user_id"`
	Tier               BuyInTier  `db:"tier"`
	BuyIn              int64      `db:"buy_in"`
	PotTotal           int64      `db:"pot_total"`
	PlayerContribution int64      `db:"player_contribution"`
	Result             HandResult `db:"result"`
	Payout             int64      `db:"payout"`
	PlayerCategory     string     `db:"player_category"`
	DealerCategory     string     `db:"dealer_category"`
	CreatedAt          time.Time  `db:"created_at"`
}

// LegalActions tells the caller which engine operations are currently
// valid, so it never has to guess and trip an invalid-state error.
type LegalActions struct {
	CanCheck  bool
	CanRaise  bool
	CanReveal bool
}

// HandView is the renderable state returned when a hand starts.
type HandView struct {
	HandID             string
	Street             Street
	PlayerHole         []poker.Card
	Community          []poker.Card // revealed cards only
	PotTotal           int64
	PlayerContribution int64
	PayoutIfWin        int64
	Balance            int64
	Legal              LegalActions
}

// Settlement describes the showdown outcome; present on the river's
// StreetOutcome only.
type Settlement struct {
	Result         HandResult
	PlayerCategory poker.Category
	DealerCategory poker.Category
	DealerHole     []poker.Card
	Community      []poker.Card
	Payout         int64
	NewBalance     int64
}

// StreetOutcome is returned by check/raise: what the dealer did and
// where the hand stands afterwards.
type StreetOutcome struct {
	Street             Street
	PlayerRaised       bool
	PlayerAmount       int64
	DealerRaise        int64
	PotTotal           int64
	PlayerContribution int64
	PayoutIfWin        int64
	Balance            int64
	Legal              LegalActions
	Settlement         *Settlement
}

// RevealOutcome is returned by RevealNext: the newly opened street.
type RevealOutcome struct {
	Street        Street
	Community     []poker.Card // all revealed cards, in deal order
	RevealedCount int
	Legal         LegalActions
}
