package service

import (
	"context"
	"time"

	"pokerroom/events"
	"pokerroom/models"
)

// AccountRepository defines the interface for per-user economy state.
// All balance mutations are atomic conditional updates so that concurrent
// callers (multiple devices on one account) never lose updates.
type AccountRepository interface {
	// GetByUserID retrieves an account, or nil if the user has none yet
	GetByUserID(ctx context.Context, userID string) (*models.Account, error)

	// Create creates a new account with the initial balance and first
	// grant deadline
	Create(ctx context.Context, userID string, initialBalance int64, nextGrantAt time.Time) (*models.Account, error)

	// AddBalance adds to an account's balance atomically
	AddBalance(ctx context.Context, userID string, amount int64) error

	// DeductBalance deducts from an account's balance atomically,
	// returning ErrInsufficientFunds if the balance cannot cover it
	DeductBalance(ctx context.Context, userID string, amount int64) error

	// SetBalance overwrites an account's balance
	SetBalance(ctx context.Context, userID string, balance int64) error

	// MarkGrantAvailable flips grant_available to true only if it is
	// currently false and the deadline has passed. Returns whether the
	// flip happened.
	MarkGrantAvailable(ctx context.Context, userID string, now time.Time) (bool, error)

	// ClaimGrant atomically consumes an available grant: adds amount to
	// the balance, clears availability and sets the next deadline.
	// Returns the updated account, or nil if no grant was available.
	ClaimGrant(ctx context.Context, userID string, amount int64, nextGrantAt time.Time) (*models.Account, error)

	// Delete removes the account entirely (account/data wipe)
	Delete(ctx context.Context, userID string) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.BalanceHistory, error)

	// DeleteByUser removes a user's history (account/data wipe)
	DeleteByUser(ctx context.Context, userID string) error
}

// HandRepository defines the interface for settled hand records
type HandRepository interface {
	// Create persists a settled hand
	Create(ctx context.Context, hand *models.Hand) error

	// GetByUser returns recent hands for a user
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.Hand, error)

	// DeleteByUser removes a user's hand records (account/data wipe)
	DeleteByUser(ctx context.Context, userID string) error
}

// EconomyService defines the interface for the persistent coin economy
type EconomyService interface {
	// GetOrCreateAccount retrieves an account, initializing it with the
	// starting balance on first access
	GetOrCreateAccount(ctx context.Context, userID string) (*models.Account, error)

	// GetBalance returns the user's current balance
	GetBalance(ctx context.Context, userID string) (int64, error)

	// SetBalance overwrites the balance, clamped at zero
	SetBalance(ctx context.Context, userID string, balance int64) error

	// CanClaimFreeCoins lazily recomputes and reports grant availability
	CanClaimFreeCoins(ctx context.Context, userID string) (bool, error)

	// ClaimFreeCoins claims the free-coin grant if available. Returns
	// whether coins were granted.
	ClaimFreeCoins(ctx context.Context, userID string) (bool, error)

	// NextGrantAt returns when the pending grant becomes (or became)
	// available, for countdown display
	NextGrantAt(ctx context.Context, userID string) (time.Time, error)

	// ClearUserData wipes all economy and hand state for the user
	ClearUserData(ctx context.Context, userID string) error
}

// EngineService defines the public betting automaton operations. A user
// has at most one active hand; mutating calls on the same hand must be
// serialized by the caller.
type EngineService interface {
	// StartHand buys into a new hand at the given tier
	StartHand(ctx context.Context, userID string, tier models.BuyInTier) (*models.HandView, error)

	// PlayerCheck checks the current street; the dealer may still raise
	// and the player auto-calls
	PlayerCheck(ctx context.Context, userID string) (*models.StreetOutcome, error)

	// PlayerRaise raises the current street by amount; the dealer may
	// re-raise once and the player auto-calls
	PlayerRaise(ctx context.Context, userID string, amount int64) (*models.StreetOutcome, error)

	// RevealNext reveals the next batch of community cards and reopens
	// betting
	RevealNext(ctx context.Context, userID string) (*models.RevealOutcome, error)

	// ActiveHand returns the current hand view, or nil when no hand is
	// in progress
	ActiveHand(ctx context.Context, userID string) (*models.HandView, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	HandRepository() HandRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
