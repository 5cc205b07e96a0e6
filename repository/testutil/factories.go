package testutil

import (
	"time"

	"pokerroom/models"

	"github.com/google/uuid"
)

// CreateTestHistory creates a test balance history entry
func CreateTestHistory(userID string, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   100,
		BalanceAfter:    95,
		ChangeAmount:    -5,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestHistoryWithAmounts creates a test balance history with specific amounts
func CreateTestHistoryWithAmounts(userID string, before, after, change int64, transactionType models.TransactionType) *models.BalanceHistory {
	history := CreateTestHistory(userID, transactionType)
	history.BalanceBefore = before
	history.BalanceAfter = after
	history.ChangeAmount = change
	return history
}

// CreateTestHand creates a settled hand record with default values
func CreateTestHand(userID string, result models.HandResult) *models.Hand {
	return &models.Hand{
		ID:                 uuid.New().String(),
		UserID:             userID,
		Tier:               models.TierLow,
		BuyIn:              5,
		PotTotal:           10,
		PlayerContribution: 5,
		Result:             result,
		Payout:             10,
		PlayerCategory:     "One Pair",
		DealerCategory:     "High Card",
		CreatedAt:          time.Now(),
	}
}
