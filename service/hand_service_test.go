package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"pokerroom/models"
	"pokerroom/poker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupEngine wires an engine over mocked repositories with a fixed
// account balance and permissive balance mutations.
func setupEngine(t *testing.T, seed int64, balance int64) (EngineService, *MockAccountRepository, *MockHandRepository) {
	t.Helper()

	mockFactory, _, mockAccountRepo, mockHistoryRepo, mockHandRepo, _ := setupEconomyMocks()

	account := &models.Account{
		UserID:      "user-1",
		Balance:     balance,
		NextGrantAt: time.Now().Add(time.Hour),
	}
	mockAccountRepo.On("GetByUserID", mock.Anything, "user-1").Return(account, nil)
	mockAccountRepo.On("DeductBalance", mock.Anything, "user-1", mock.AnythingOfType("int64")).Return(nil)
	mockAccountRepo.On("AddBalance", mock.Anything, "user-1", mock.AnythingOfType("int64")).Return(nil)
	mockHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	mockHandRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	clock := &MockClock{NowTime: time.Now()}
	economy := NewEconomyService(mockFactory, clock, testEconomyConfig)
	engine := NewEngineService(mockFactory, economy, rand.New(rand.NewSource(seed)))

	return engine, mockAccountRepo, mockHandRepo
}

func assertPotBalanced(t *testing.T, potTotal, playerContribution int64) {
	t.Helper()
	assert.Equal(t, 2*playerContribution, potTotal, "pot must stay exactly matched")
}

func TestHandService_StartHand(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 42, 100)

	view, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.NotEmpty(t, view.HandID)
	assert.Equal(t, models.StreetPreFlop, view.Street)
	assert.Len(t, view.PlayerHole, 2)
	assert.Empty(t, view.Community)
	assert.Equal(t, int64(10), view.PotTotal)
	assert.Equal(t, int64(5), view.PlayerContribution)
	assert.Equal(t, int64(10), view.PayoutIfWin)
	assert.Equal(t, int64(95), view.Balance)
	assert.True(t, view.Legal.CanCheck)
	assert.True(t, view.Legal.CanRaise)
	assert.False(t, view.Legal.CanReveal)
}

func TestHandService_StartHand_InvalidTier(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 42, 100)

	_, err := engine.StartHand(ctx, "user-1", models.BuyInTier("bogus"))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHandService_StartHand_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	// Starting low tier needs twice the buy-in to cover a dealer raise
	engine, _, _ := setupEngine(t, 42, 9)

	_, err := engine.StartHand(ctx, "user-1", models.TierLow)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing was reserved, so a later start with funds would not see a
	// stale in-progress hand
	view, err := engine.ActiveHand(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestHandService_StartHand_AlreadyInProgress(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 42, 1000)

	_, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)

	_, err = engine.StartHand(ctx, "user-1", models.TierLow)
	assert.ErrorIs(t, err, ErrHandInProgress)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHandService_NoActiveHand(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 42, 100)

	_, err := engine.PlayerCheck(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoActiveHand)

	_, err = engine.PlayerRaise(ctx, "user-1", 5)
	assert.ErrorIs(t, err, ErrNoActiveHand)

	_, err = engine.RevealNext(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoActiveHand)

	view, err := engine.ActiveHand(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestHandService_StreetSequencing(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 7, 10000)

	_, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)

	// Cannot reveal while betting is open
	_, err = engine.RevealNext(ctx, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	outcome, err := engine.PlayerCheck(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StreetPreFlop, outcome.Street)
	assert.True(t, outcome.Legal.CanReveal)
	assertPotBalanced(t, outcome.PotTotal, outcome.PlayerContribution)

	// Cannot bet twice on the same street
	_, err = engine.PlayerCheck(ctx, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = engine.PlayerRaise(ctx, "user-1", 5)
	assert.ErrorIs(t, err, ErrInvalidState)

	reveal, err := engine.RevealNext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StreetFlop, reveal.Street)
	assert.Equal(t, 3, reveal.RevealedCount)
	assert.Len(t, reveal.Community, 3)
	assert.True(t, reveal.Legal.CanCheck)
	assert.True(t, reveal.Legal.CanRaise)
}

func TestHandService_FullHandToShowdown(t *testing.T) {
	ctx := context.Background()
	engine, _, mockHandRepo := setupEngine(t, 99, 100000)

	view, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)
	assertPotBalanced(t, view.PotTotal, view.PlayerContribution)

	streets := []models.Street{models.StreetFlop, models.StreetTurn, models.StreetRiver}
	counts := []int{3, 4, 5}

	// Pre-flop betting
	outcome, err := engine.PlayerCheck(ctx, "user-1")
	require.NoError(t, err)
	assertPotBalanced(t, outcome.PotTotal, outcome.PlayerContribution)

	for i, street := range streets {
		reveal, err := engine.RevealNext(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, street, reveal.Street)
		assert.Equal(t, counts[i], reveal.RevealedCount)

		outcome, err = engine.PlayerCheck(ctx, "user-1")
		require.NoError(t, err)
		assertPotBalanced(t, outcome.PotTotal, outcome.PlayerContribution)
	}

	require.NotNil(t, outcome.Settlement)
	assert.Equal(t, models.StreetShowdown, outcome.Street)

	settlement := outcome.Settlement
	assert.Len(t, settlement.DealerHole, 2)
	assert.Len(t, settlement.Community, 5)

	switch settlement.Result {
	case models.HandResultWin:
		// Low tier pays pot x2 / 2
		assert.Equal(t, outcome.PotTotal, settlement.Payout)
	case models.HandResultTie:
		assert.Equal(t, outcome.PlayerContribution, settlement.Payout)
	case models.HandResultLoss:
		assert.Zero(t, settlement.Payout)
	default:
		t.Fatalf("unexpected result %q", settlement.Result)
	}

	mockHandRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(h *models.Hand) bool {
		return h.UserID == "user-1" &&
			h.Tier == models.TierLow &&
			h.Result == settlement.Result &&
			h.Payout == settlement.Payout &&
			h.PotTotal == outcome.PotTotal
	}))

	// The hand is over; a new one can start
	active, err := engine.ActiveHand(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = engine.StartHand(ctx, "user-1", models.TierMid)
	require.NoError(t, err)
}

func TestHandService_PlayerRaise(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 3, 100000)

	_, err := engine.StartHand(ctx, "user-1", models.TierMid)
	require.NoError(t, err)

	outcome, err := engine.PlayerRaise(ctx, "user-1", 20)
	require.NoError(t, err)

	assert.True(t, outcome.PlayerRaised)
	assert.Equal(t, int64(20), outcome.PlayerAmount)
	assertPotBalanced(t, outcome.PotTotal, outcome.PlayerContribution)

	// Pot holds the matched buy-in, the matched raise and any matched
	// dealer raise the player auto-called
	expected := 2*50 + 2*20 + 2*outcome.DealerRaise
	assert.Equal(t, expected, outcome.PotTotal)
}

func TestHandService_PlayerRaise_Validation(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t, 3, 1000)

	_, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)

	_, err = engine.PlayerRaise(ctx, "user-1", 0)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = engine.PlayerRaise(ctx, "user-1", -5)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = engine.PlayerRaise(ctx, "user-1", 100000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func countCalls(m *MockAccountRepository, method string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// A failed river settlement must not leave the hand bettable: no more
// streets can open, no more coins move, and the next check retries the
// settlement until it commits.
func TestHandService_SettlementRetryAfterFailure(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockAccountRepo, mockHistoryRepo, mockHandRepo, _ := setupEconomyMocks()

	account := &models.Account{
		UserID:      "user-1",
		Balance:     100000,
		NextGrantAt: time.Now().Add(time.Hour),
	}
	mockAccountRepo.On("GetByUserID", mock.Anything, "user-1").Return(account, nil)
	mockAccountRepo.On("DeductBalance", mock.Anything, "user-1", mock.AnythingOfType("int64")).Return(nil)
	mockAccountRepo.On("AddBalance", mock.Anything, "user-1", mock.AnythingOfType("int64")).Return(nil)
	mockHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	// First persistence attempt fails; the retry succeeds
	mockHandRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	mockHandRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	clock := &MockClock{NowTime: time.Now()}
	economy := NewEconomyService(mockFactory, clock, testEconomyConfig)
	engine := NewEngineService(mockFactory, economy, rand.New(rand.NewSource(99)))

	_, err := engine.StartHand(ctx, "user-1", models.TierLow)
	require.NoError(t, err)

	_, err = engine.PlayerCheck(ctx, "user-1")
	require.NoError(t, err)
	for _, street := range []models.Street{models.StreetFlop, models.StreetTurn} {
		reveal, err := engine.RevealNext(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, street, reveal.Street)
		_, err = engine.PlayerCheck(ctx, "user-1")
		require.NoError(t, err)
	}
	_, err = engine.RevealNext(ctx, "user-1")
	require.NoError(t, err)

	// River betting closes but the settlement fails to persist
	_, err = engine.PlayerCheck(ctx, "user-1")
	require.Error(t, err)

	// The hand is stuck at the river; there is no street left to open
	_, err = engine.RevealNext(ctx, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	view, err := engine.ActiveHand(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.True(t, view.Legal.CanCheck)
	assert.False(t, view.Legal.CanRaise)
	assert.False(t, view.Legal.CanReveal)

	deductions := countCalls(mockAccountRepo, "DeductBalance")

	// Checking again retries the settlement without betting anything
	outcome, err := engine.PlayerCheck(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, outcome.Settlement)
	assert.Equal(t, models.StreetShowdown, outcome.Street)
	assertPotBalanced(t, outcome.PotTotal, outcome.PlayerContribution)
	assert.Equal(t, deductions, countCalls(mockAccountRepo, "DeductBalance"),
		"retrying a settlement must not deduct coins")

	active, err := engine.ActiveHand(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

// A tie refunds the player's contribution exactly; the tier multiplier
// never applies. Forced by a board that plays for both seats.
func TestHandService_TieRefundsContributionExactly(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockAccountRepo, mockHistoryRepo, mockHandRepo, _ := setupEconomyMocks()

	account := &models.Account{
		UserID:      "user-1",
		Balance:     70,
		NextGrantAt: time.Now().Add(time.Hour),
	}
	mockAccountRepo.On("GetByUserID", mock.Anything, "user-1").Return(account, nil)
	mockAccountRepo.On("AddBalance", mock.Anything, "user-1", int64(15)).Return(nil)
	mockHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeTieRefund && h.ChangeAmount == 15
	})).Return(nil)
	mockHandRepo.On("Create", mock.Anything, mock.MatchedBy(func(h *models.Hand) bool {
		return h.Result == models.HandResultTie && h.Payout == 15
	})).Return(nil)

	clock := &MockClock{NowTime: time.Now()}
	economy := NewEconomyService(mockFactory, clock, testEconomyConfig)
	svc := NewEngineService(mockFactory, economy, rand.New(rand.NewSource(1))).(*handService)

	// Royal flush on the board; neither hole can improve on it
	sess := &handSession{
		id:         "hand-tie",
		userID:     "user-1",
		tier:       models.TierLow,
		street:     models.StreetRiver,
		playerHole: hole(2, poker.Hearts, 7, poker.Diamonds),
		dealerHole: hole(3, poker.Clubs, 8, poker.Diamonds),
		community: []poker.Card{
			{Rank: 14, Suit: poker.Spades},
			{Rank: 13, Suit: poker.Spades},
			{Rank: 12, Suit: poker.Spades},
			{Rank: 11, Suit: poker.Spades},
			{Rank: 10, Suit: poker.Spades},
		},
		revealed:           5,
		potTotal:           30,
		playerContribution: 15,
	}

	settlement, err := svc.settle(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, models.HandResultTie, settlement.Result)
	assert.Equal(t, poker.StraightFlush, settlement.PlayerCategory)
	assert.Equal(t, poker.StraightFlush, settlement.DealerCategory)
	// A win at this pot would pay 30 (pot x 2 / 2); the tie pays back
	// only the 15 the player put in
	assert.Equal(t, int64(15), settlement.Payout)
	assert.Equal(t, int64(85), settlement.NewBalance)

	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
	mockHandRepo.AssertExpectations(t)
}

// The dealer reacts to a check and to a raise with different strength
// bars: on the high tier the bar against a check (0.55) sits below the
// bar against a raise (0.70), so the dealer presses passive players
// more often than it re-raises aggressive ones. Same seed means same
// deal, so each pair of hands differs only in the player's action.
func TestHandService_DealerPressesChecksMoreThanRaises(t *testing.T) {
	ctx := context.Background()

	checkRaises, raiseRaises := 0, 0
	for seed := int64(0); seed < 200; seed++ {
		engine, _, _ := setupEngine(t, seed, 1000000)
		_, err := engine.StartHand(ctx, "user-1", models.TierHigh)
		require.NoError(t, err)
		checked, err := engine.PlayerCheck(ctx, "user-1")
		require.NoError(t, err)
		if checked.DealerRaise > 0 {
			checkRaises++
		}

		engine, _, _ = setupEngine(t, seed, 1000000)
		_, err = engine.StartHand(ctx, "user-1", models.TierHigh)
		require.NoError(t, err)
		raised, err := engine.PlayerRaise(ctx, "user-1", 100)
		require.NoError(t, err)
		if raised.DealerRaise > 0 {
			raiseRaises++
			// Any holding strong enough to re-raise also presses a check
			assert.Positive(t, checked.DealerRaise)
		}
	}

	assert.Positive(t, checkRaises)
	assert.Greater(t, checkRaises, raiseRaises)
}

func TestHandService_SeededHandsAreReproducible(t *testing.T) {
	ctx := context.Background()

	deal := func() *models.HandView {
		engine, _, _ := setupEngine(t, 1234, 1000)
		view, err := engine.StartHand(ctx, "user-1", models.TierLow)
		require.NoError(t, err)
		return view
	}

	first := deal()
	second := deal()
	assert.Equal(t, first.PlayerHole, second.PlayerHole)
}
