package repository

import (
	"context"
	"fmt"
	"time"

	"pokerroom/database"
	"pokerroom/models"
	"pokerroom/service"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `user_id, balance, next_grant_at, grant_available, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.UserID,
		&account.Balance,
		&account.NextGrantAt,
		&account.GrantAvailable,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByUserID retrieves an account by user ID, or nil if none exists
func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %s: %w", userID, err)
	}
	return account, nil
}

// Create creates a new account with the initial balance and first grant deadline
func (r *AccountRepository) Create(ctx context.Context, userID string, initialBalance int64, nextGrantAt time.Time) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, balance, next_grant_at, grant_available)
		VALUES ($1, $2, $3, FALSE)
		RETURNING ` + accountColumns + `
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, initialBalance, nextGrantAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for user %s: %w", userID, err)
	}
	return account, nil
}

// AddBalance adds to an account's balance atomically
func (r *AccountRepository) AddBalance(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %s not found", userID)
	}
	return nil
}

// DeductBalance deducts from an account's balance atomically, failing if
// the balance cannot cover the amount
func (r *AccountRepository) DeductBalance(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrInsufficientFunds
	}
	return nil
}

// SetBalance overwrites an account's balance
func (r *AccountRepository) SetBalance(ctx context.Context, userID string, balance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, balance, userID)
	if err != nil {
		return fmt.Errorf("failed to set balance for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %s not found", userID)
	}
	return nil
}

// MarkGrantAvailable flips grant_available to true only if it is still
// false and the deadline has passed. The conditional update makes the
// flip race-free across concurrent callers.
func (r *AccountRepository) MarkGrantAvailable(ctx context.Context, userID string, now time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET grant_available = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND grant_available = FALSE AND next_grant_at <= $2
	`

	result, err := r.q.Exec(ctx, query, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark grant available for user %s: %w", userID, err)
	}
	return result.RowsAffected() == 1, nil
}

// ClaimGrant atomically consumes an available grant. Returns the updated
// account, or nil if no grant was available when the update ran.
func (r *AccountRepository) ClaimGrant(ctx context.Context, userID string, amount int64, nextGrantAt time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1,
		    grant_available = FALSE,
		    next_grant_at = $2,
		    updated_at = NOW()
		WHERE user_id = $3 AND grant_available = TRUE
		RETURNING ` + accountColumns + `
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, amount, nextGrantAt, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim grant for user %s: %w", userID, err)
	}
	return account, nil
}

// Delete removes the account entirely
func (r *AccountRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM accounts WHERE user_id = $1`

	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete account for user %s: %w", userID, err)
	}
	return nil
}
