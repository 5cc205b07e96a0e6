package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeBuyIn      TransactionType = "buy_in"
	TransactionTypeRaise      TransactionType = "raise"
	TransactionTypeCall       TransactionType = "call"
	TransactionTypePayout     TransactionType = "payout"
	TransactionTypeTieRefund  TransactionType = "tie_refund"
	TransactionTypeFreeCoins  TransactionType = "free_coins"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              string          `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
