package service

import (
	"context"
	"fmt"
	"time"

	"pokerroom/events"
	"pokerroom/models"

	log "github.com/sirupsen/logrus"
)

// EconomyConfig holds the tuned economy constants.
type EconomyConfig struct {
	InitialBalance    int64
	FreeCoinsAmount   int64
	FreeCoinsInterval time.Duration
}

type economyService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	cfg        EconomyConfig
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, clock Clock, cfg EconomyConfig) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		clock:      clock,
		cfg:        cfg,
	}
}

// GetOrCreateAccount retrieves an existing account or initializes a new
// one with the starting balance. On creation the first grant timer starts
// immediately; the user must wait the full interval for the first free
// coins.
func (s *economyService) GetOrCreateAccount(ctx context.Context, userID string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := s.ensureAccount(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// ensureAccount is the shared first-access path; it must run inside an
// open unit of work.
func (s *economyService) ensureAccount(ctx context.Context, uow UnitOfWork, userID string) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	nextGrantAt := s.clock.Now().Add(s.cfg.FreeCoinsInterval)
	account, err = uow.AccountRepository().Create(ctx, userID, s.cfg.InitialBalance, nextGrantAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    s.cfg.InitialBalance,
		ChangeAmount:    s.cfg.InitialBalance,
		TransactionType: models.TransactionTypeInitial,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"balance": s.cfg.InitialBalance,
	}).Info("Initialized new account")

	return account, nil
}

func (s *economyService) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := s.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// SetBalance overwrites the balance, clamping negative values to zero.
func (s *economyService) SetBalance(ctx context.Context, userID string, balance int64) error {
	if balance < 0 {
		balance = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := s.ensureAccount(ctx, uow, userID)
	if err != nil {
		return err
	}

	if err := uow.AccountRepository().SetBalance(ctx, userID, balance); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    balance,
		ChangeAmount:    balance - account.Balance,
		TransactionType: models.TransactionTypeAdjustment,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CanClaimFreeCoins lazily recomputes grant availability from the clock
// and the stored deadline. When the deadline has passed the flag flips to
// true; the next interval is NOT started while an unclaimed grant is
// pending, so the flag only reverts through a claim.
func (s *economyService) CanClaimFreeCoins(ctx context.Context, userID string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := s.ensureAccount(ctx, uow, userID)
	if err != nil {
		return false, err
	}

	available := account.GrantAvailable
	if !available {
		now := s.clock.Now()
		if !now.Before(account.NextGrantAt) {
			flipped, err := uow.AccountRepository().MarkGrantAvailable(ctx, userID, now)
			if err != nil {
				return false, fmt.Errorf("failed to mark grant available: %w", err)
			}
			// A concurrent caller may have flipped (or claimed) first;
			// either way the row now holds the truth.
			if !flipped {
				fresh, err := uow.AccountRepository().GetByUserID(ctx, userID)
				if err != nil {
					return false, fmt.Errorf("failed to re-read account: %w", err)
				}
				if fresh != nil {
					available = fresh.GrantAvailable
				}
			} else {
				available = true
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return available, nil
}

// ClaimFreeCoins claims the grant if available. The claim itself is a
// compare-and-swap on grant_available, so two devices claiming at once
// grant only once.
func (s *economyService) ClaimFreeCoins(ctx context.Context, userID string) (bool, error) {
	available, err := s.CanClaimFreeCoins(ctx, userID)
	if err != nil {
		return false, err
	}
	if !available {
		return false, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	now := s.clock.Now()
	account, err := uow.AccountRepository().ClaimGrant(ctx, userID, s.cfg.FreeCoinsAmount, now.Add(s.cfg.FreeCoinsInterval))
	if err != nil {
		return false, fmt.Errorf("failed to claim grant: %w", err)
	}
	if account == nil {
		// Lost the race to another claimer
		return false, nil
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   account.Balance - s.cfg.FreeCoinsAmount,
		BalanceAfter:    account.Balance,
		ChangeAmount:    s.cfg.FreeCoinsAmount,
		TransactionType: models.TransactionTypeFreeCoins,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return false, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.FreeCoinsClaimedEvent{
		UserID:     userID,
		Amount:     s.cfg.FreeCoinsAmount,
		NewBalance: account.Balance,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"amount":  s.cfg.FreeCoinsAmount,
		"balance": account.Balance,
	}).Info("Free coins claimed")

	return true, nil
}

func (s *economyService) NextGrantAt(ctx context.Context, userID string) (time.Time, error) {
	account, err := s.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return account.NextGrantAt, nil
}

// ClearUserData resets all persisted state for the user; the next access
// re-initializes the account.
func (s *economyService) ClearUserData(ctx context.Context, userID string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.HandRepository().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete hands: %w", err)
	}
	if err := uow.BalanceHistoryRepository().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete balance history: %w", err)
	}
	if err := uow.AccountRepository().Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("userID", userID).Info("Cleared all user data")
	return nil
}
