package service

import (
	"context"
	"testing"
	"time"

	"pokerroom/events"
	"pokerroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testEconomyConfig = EconomyConfig{
	InitialBalance:    100,
	FreeCoinsAmount:   10,
	FreeCoinsInterval: 150 * time.Minute,
}

func setupEconomyMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockBalanceHistoryRepository, *MockHandRepository, *recordingPublisher) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockHandRepo := new(MockHandRepository)
	publisher := &recordingPublisher{}

	mockUoW.SetRepositories(mockAccountRepo, mockHistoryRepo, mockHandRepo, publisher)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockAccountRepo, mockHistoryRepo, mockHandRepo, publisher
}

func TestEconomyService_GetOrCreateAccount_FirstAccess(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockHistoryRepo, _, publisher := setupEconomyMocks()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: now}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	expectedGrantAt := now.Add(150 * time.Minute)
	created := &models.Account{
		UserID:      "user-1",
		Balance:     100,
		NextGrantAt: expectedGrantAt,
	}

	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, "user-1", int64(100), expectedGrantAt).Return(created, nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == "user-1" &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 100 &&
			h.ChangeAmount == 100 &&
			h.TransactionType == models.TransactionTypeInitial
	})).Return(nil)

	account, err := svc.GetOrCreateAccount(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance)
	assert.Equal(t, expectedGrantAt, account.NextGrantAt)

	// Initial balance emits both a balance change and a user created event
	var types []events.EventType
	for _, ev := range publisher.published {
		types = append(types, ev.Type())
	}
	assert.Contains(t, types, events.EventTypeBalanceChange)
	assert.Contains(t, types, events.EventTypeUserCreated)

	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestEconomyService_GetOrCreateAccount_Existing(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _, _, _ := setupEconomyMocks()

	clock := &MockClock{NowTime: time.Now()}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	existing := &models.Account{UserID: "user-1", Balance: 55}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)

	account, err := svc.GetOrCreateAccount(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(55), account.Balance)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_CanClaimFreeCoins_BeforeDeadline(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _, _, _ := setupEconomyMocks()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: now}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{
		UserID:         "user-1",
		Balance:        100,
		NextGrantAt:    now.Add(time.Hour),
		GrantAvailable: false,
	}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)

	available, err := svc.CanClaimFreeCoins(ctx, "user-1")

	assert.NoError(t, err)
	assert.False(t, available)
	mockAccountRepo.AssertNotCalled(t, "MarkGrantAvailable", mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_CanClaimFreeCoins_AfterDeadline(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _, _, _ := setupEconomyMocks()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: now}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{
		UserID:         "user-1",
		Balance:        100,
		NextGrantAt:    now.Add(-time.Minute),
		GrantAvailable: false,
	}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)
	mockAccountRepo.On("MarkGrantAvailable", ctx, "user-1", now).Return(true, nil)

	available, err := svc.CanClaimFreeCoins(ctx, "user-1")

	assert.NoError(t, err)
	assert.True(t, available)
	mockAccountRepo.AssertExpectations(t)
}

func TestEconomyService_ClaimFreeCoins_StartsNextTimerFromClaim(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockHistoryRepo, _, publisher := setupEconomyMocks()

	// Grant became available hours ago; the claim happens late. The next
	// deadline runs from the claim, not from when the grant matured.
	claimTime := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: claimTime}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{
		UserID:         "user-1",
		Balance:        100,
		NextGrantAt:    claimTime.Add(-6 * time.Hour),
		GrantAvailable: true,
	}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)

	expectedNextGrant := claimTime.Add(150 * time.Minute)
	claimed := &models.Account{
		UserID:      "user-1",
		Balance:     110,
		NextGrantAt: expectedNextGrant,
	}
	mockAccountRepo.On("ClaimGrant", ctx, "user-1", int64(10), expectedNextGrant).Return(claimed, nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == "user-1" &&
			h.BalanceBefore == 100 &&
			h.BalanceAfter == 110 &&
			h.ChangeAmount == 10 &&
			h.TransactionType == models.TransactionTypeFreeCoins
	})).Return(nil)

	granted, err := svc.ClaimFreeCoins(ctx, "user-1")

	assert.NoError(t, err)
	assert.True(t, granted)

	var claimedEvents int
	for _, ev := range publisher.published {
		if ev.Type() == events.EventTypeFreeCoinsClaimed {
			claimedEvents++
		}
	}
	assert.Equal(t, 1, claimedEvents)

	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestEconomyService_ClaimFreeCoins_NotAvailable(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _, _, _ := setupEconomyMocks()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: now}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{
		UserID:         "user-1",
		Balance:        100,
		NextGrantAt:    now.Add(2 * time.Hour),
		GrantAvailable: false,
	}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)

	granted, err := svc.ClaimFreeCoins(ctx, "user-1")

	assert.NoError(t, err)
	assert.False(t, granted)
	mockAccountRepo.AssertNotCalled(t, "ClaimGrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_ClaimFreeCoins_LostRace(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, _, _, _ := setupEconomyMocks()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{NowTime: now}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{
		UserID:         "user-1",
		Balance:        100,
		NextGrantAt:    now.Add(-time.Minute),
		GrantAvailable: true,
	}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)
	mockAccountRepo.On("ClaimGrant", ctx, "user-1", int64(10), now.Add(150*time.Minute)).Return(nil, nil)

	granted, err := svc.ClaimFreeCoins(ctx, "user-1")

	assert.NoError(t, err)
	assert.False(t, granted)
}

func TestEconomyService_SetBalance_ClampsNegative(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockHistoryRepo, _, _ := setupEconomyMocks()

	clock := &MockClock{NowTime: time.Now()}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	account := &models.Account{UserID: "user-1", Balance: 40}
	mockAccountRepo.On("GetByUserID", ctx, "user-1").Return(account, nil)
	mockAccountRepo.On("SetBalance", ctx, "user-1", int64(0)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.BalanceAfter == 0 &&
			h.ChangeAmount == -40 &&
			h.TransactionType == models.TransactionTypeAdjustment
	})).Return(nil)

	err := svc.SetBalance(ctx, "user-1", -25)

	assert.NoError(t, err)
	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

// Drives the full claim lifecycle against a stateful account store: the
// grant opens when the deadline passes, stays open until claimed, and a
// claim restarts the full interval from the claim time.
func TestEconomyService_ClaimLifecycle(t *testing.T) {
	ctx := context.Background()

	accounts := newFakeAccountRepo()
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockHandRepo := new(MockHandRepository)
	publisher := &recordingPublisher{}

	mockUoW := new(MockUnitOfWork)
	mockUoW.SetRepositories(accounts, mockHistoryRepo, mockHandRepo, publisher)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	mockHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

	clock := &MockClock{NowTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	// First access initializes the account and starts the timer.
	available, err := svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, available)

	// Still locked one minute short of the deadline.
	clock.Advance(testEconomyConfig.FreeCoinsInterval - time.Minute)
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, available)

	// Deadline passes; the grant opens and stays open until claimed.
	clock.Advance(2 * time.Minute)
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.True(t, available)

	clock.Advance(3 * time.Hour)
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.True(t, available)

	granted, err := svc.ClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.True(t, granted)

	balance, err := svc.GetBalance(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, testEconomyConfig.InitialBalance+testEconomyConfig.FreeCoinsAmount, balance)

	// The claim closed the grant and restarted the full interval from the
	// claim time, not from when the grant matured.
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, available)

	granted, err = svc.ClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, granted)

	clock.Advance(testEconomyConfig.FreeCoinsInterval / 2)
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, available)

	// A full interval after the claim it reopens.
	clock.Advance(testEconomyConfig.FreeCoinsInterval / 2)
	available, err = svc.CanClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.True(t, available)

	granted, err = svc.ClaimFreeCoins(ctx, "user-1")
	assert.NoError(t, err)
	assert.True(t, granted)

	balance, err = svc.GetBalance(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, testEconomyConfig.InitialBalance+2*testEconomyConfig.FreeCoinsAmount, balance)

	var claimedEvents int
	for _, ev := range publisher.published {
		if ev.Type() == events.EventTypeFreeCoinsClaimed {
			claimedEvents++
		}
	}
	assert.Equal(t, 2, claimedEvents)
}

func TestEconomyService_ClearUserData(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockHistoryRepo, mockHandRepo, _ := setupEconomyMocks()

	clock := &MockClock{NowTime: time.Now()}
	svc := NewEconomyService(mockFactory, clock, testEconomyConfig)

	mockHandRepo.On("DeleteByUser", ctx, "user-1").Return(nil)
	mockHistoryRepo.On("DeleteByUser", ctx, "user-1").Return(nil)
	mockAccountRepo.On("Delete", ctx, "user-1").Return(nil)

	err := svc.ClearUserData(ctx, "user-1")

	assert.NoError(t, err)
	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
	mockHandRepo.AssertExpectations(t)
}
