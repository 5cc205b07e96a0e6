package repository

import (
	"context"
	"fmt"

	"pokerroom/database"
	"pokerroom/models"
)

// HandRepository implements the HandRepository interface
type HandRepository struct {
	q queryable
}

// NewHandRepository creates a new hand repository
func NewHandRepository(db *database.DB) *HandRepository {
	return &HandRepository{q: db.Pool}
}

// newHandRepositoryWithTx creates a new hand repository with a transaction
func newHandRepositoryWithTx(tx queryable) *HandRepository {
	return &HandRepository{q: tx}
}

// Create persists a settled hand
func (r *HandRepository) Create(ctx context.Context, hand *models.Hand) error {
	query := `
		INSERT INTO hands
		(id, user_id, tier, buy_in, pot_total, player_contribution, result, payout, player_category, dealer_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		hand.ID,
		hand.UserID,
		hand.Tier,
		hand.BuyIn,
		hand.PotTotal,
		hand.PlayerContribution,
		hand.Result,
		hand.Payout,
		hand.PlayerCategory,
		hand.DealerCategory,
	).Scan(&hand.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create hand %s: %w", hand.ID, err)
	}
	return nil
}

// GetByUser returns the most recent hands for a user
func (r *HandRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.Hand, error) {
	query := `
		SELECT id, user_id, tier, buy_in, pot_total, player_contribution, result, payout, player_category, dealer_category, created_at
		FROM hands
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get hands for user %s: %w", userID, err)
	}
	defer rows.Close()

	var hands []*models.Hand
	for rows.Next() {
		var hand models.Hand
		err := rows.Scan(
			&hand.ID,
			&hand.UserID,
			&hand.Tier,
			&hand.BuyIn,
			&hand.PotTotal,
			&hand.PlayerContribution,
			&hand.Result,
			&hand.Payout,
			&hand.PlayerCategory,
			&hand.DealerCategory,
			&hand.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hand: %w", err)
		}
		hands = append(hands, &hand)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hands: %w", err)
	}
	return hands, nil
}

// DeleteByUser removes all hand records for a user
func (r *HandRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM hands WHERE user_id = $1`

	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete hands for user %s: %w", userID, err)
	}
	return nil
}
