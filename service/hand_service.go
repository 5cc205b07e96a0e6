package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"pokerroom/events"
	"pokerroom/models"
	"pokerroom/poker"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// handSession is the transient state of one in-flight hand. Community
// cards are pre-dealt at start and revealed progressively, never redealt.
type handSession struct {
	mu sync.Mutex

	id     string
	userID string
	tier   models.BuyInTier

	street      models.Street
	awaitingBet bool
	revealed    int // 0, 3, 4 or 5

	// settlePending is set when river betting finished but the
	// settlement transaction failed. The next betting action retries
	// settlement only; no further coins move until it commits.
	settlePending bool

	potTotal           int64
	playerContribution int64

	playerHole []poker.Card
	dealerHole []poker.Card
	community  []poker.Card
}

type handService struct {
	uowFactory UnitOfWorkFactory
	economy    EconomyService

	rngMu sync.Mutex
	rng   *rand.Rand

	sessionsMu sync.RWMutex
	sessions   map[string]*handSession
}

// NewEngineService creates the betting automaton. The random source is
// injected so whole hands are reproducible under a fixed seed.
func NewEngineService(uowFactory UnitOfWorkFactory, economy EconomyService, rng *rand.Rand) EngineService {
	return &handService{
		uowFactory: uowFactory,
		economy:    economy,
		rng:        rng,
		sessions:   make(map[string]*handSession),
	}
}

// StartHand buys into a new hand. The buy-in goes straight into the pot
// and is matched by the dealer, so the pot opens at twice the buy-in.
func (s *handService) StartHand(ctx context.Context, userID string, tier models.BuyInTier) (*models.HandView, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown buy-in tier %q: %w", tier, ErrInvalidState)
	}
	buyIn := tier.BuyIn()

	account, err := s.economy.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.Balance < 2*buyIn {
		return nil, fmt.Errorf("%w: need %d coins to buy in for %d", ErrInsufficientFunds, 2*buyIn, buyIn)
	}

	s.sessionsMu.Lock()
	if _, ok := s.sessions[userID]; ok {
		s.sessionsMu.Unlock()
		return nil, ErrHandInProgress
	}
	// Reserve the slot before any I/O so concurrent starts cannot both
	// pass the check.
	sess := &handSession{
		id:          uuid.New().String(),
		userID:      userID,
		tier:        tier,
		street:      models.StreetPreFlop,
		awaitingBet: true,
		potTotal:    2 * buyIn,
	}
	sess.playerContribution = buyIn
	s.sessions[userID] = sess
	s.sessionsMu.Unlock()

	if err := s.deal(sess); err != nil {
		s.dropSession(userID)
		return nil, err
	}

	if err := s.applyContribution(ctx, sess, buyIn, models.TransactionTypeBuyIn, map[string]any{
		"hand_id": sess.id,
		"tier":    string(tier),
	}); err != nil {
		s.dropSession(userID)
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"handID": sess.id,
		"tier":   tier,
		"buyIn":  buyIn,
	}).Info("Hand started")

	return s.view(sess, account.Balance-buyIn), nil
}

// deal shuffles a fresh deck and deals hole cards alternately, then all
// five community cards up front.
func (s *handService) deal(sess *handSession) error {
	deck := poker.NewDeck()

	s.rngMu.Lock()
	deck.Shuffle(s.rng)
	s.rngMu.Unlock()

	draw := func(dst *[]poker.Card) error {
		c, err := deck.Draw()
		if err != nil {
			return fmt.Errorf("dealing hand %s: %w", sess.id, err)
		}
		*dst = append(*dst, c)
		return nil
	}

	for i := 0; i < 2; i++ {
		if err := draw(&sess.playerHole); err != nil {
			return err
		}
		if err := draw(&sess.dealerHole); err != nil {
			return err
		}
	}
	for i := 0; i < 5; i++ {
		if err := draw(&sess.community); err != nil {
			return err
		}
	}
	return nil
}

// PlayerCheck resolves the current street with no player raise. The
// dealer may still raise; there is no folding, so the player auto-calls
// any dealer raise immediately.
func (s *handService) PlayerCheck(ctx context.Context, userID string) (*models.StreetOutcome, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.settlePending {
		return s.retrySettle(ctx, sess)
	}
	if !sess.awaitingBet {
		return nil, fmt.Errorf("street %s already settled: %w", sess.street, ErrInvalidState)
	}

	balance, err := s.economy.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	dealerRaise := s.decideDealerRaise(sess, false)
	// The dealer never raises more than the player can afford to call.
	if dealerRaise > balance {
		dealerRaise = 0
	}

	if dealerRaise > 0 {
		if err := s.applyContribution(ctx, sess, dealerRaise, models.TransactionTypeCall, map[string]any{
			"hand_id":      sess.id,
			"street":       string(sess.street),
			"dealer_raise": dealerRaise,
		}); err != nil {
			return nil, err
		}
		sess.potTotal += 2 * dealerRaise
		sess.playerContribution += dealerRaise
		balance -= dealerRaise
	}

	return s.finishStreet(ctx, sess, false, 0, dealerRaise, balance)
}

// PlayerRaise raises the current street by amount. The dealer auto-calls
// and may add one further matched raise, which the player auto-calls.
func (s *handService) PlayerRaise(ctx context.Context, userID string, amount int64) (*models.StreetOutcome, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.settlePending {
		return s.retrySettle(ctx, sess)
	}
	if !sess.awaitingBet {
		return nil, fmt.Errorf("street %s already settled: %w", sess.street, ErrInvalidState)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("raise amount must be positive: %w", ErrInvalidState)
	}

	balance, err := s.economy.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, fmt.Errorf("%w: raise %d exceeds balance %d", ErrInsufficientFunds, amount, balance)
	}

	if err := s.applyContribution(ctx, sess, amount, models.TransactionTypeRaise, map[string]any{
		"hand_id": sess.id,
		"street":  string(sess.street),
	}); err != nil {
		return nil, err
	}
	sess.potTotal += 2 * amount
	sess.playerContribution += amount
	balance -= amount

	dealerRaise := s.decideDealerRaise(sess, true)
	// One extra dealer raise per street at most, and only if the player
	// can cover the call; otherwise the dealer just calls.
	if dealerRaise > balance {
		dealerRaise = 0
	}
	if dealerRaise > 0 {
		if err := s.applyContribution(ctx, sess, dealerRaise, models.TransactionTypeCall, map[string]any{
			"hand_id":      sess.id,
			"street":       string(sess.street),
			"dealer_raise": dealerRaise,
		}); err != nil {
			return nil, err
		}
		sess.potTotal += 2 * dealerRaise
		sess.playerContribution += dealerRaise
		balance -= dealerRaise
	}

	return s.finishStreet(ctx, sess, true, amount, dealerRaise, balance)
}

// RevealNext opens the next batch of community cards (flop, turn or
// river) and reopens betting on the new street.
func (s *handService) RevealNext(ctx context.Context, userID string) (*models.RevealOutcome, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.awaitingBet {
		return nil, fmt.Errorf("betting on %s not settled: %w", sess.street, ErrInvalidState)
	}
	if sess.street == models.StreetRiver || sess.street == models.StreetShowdown {
		return nil, fmt.Errorf("no further streets after %s: %w", sess.street, ErrInvalidState)
	}

	sess.street = sess.street.Next()
	sess.revealed = sess.street.RevealedCount()
	sess.awaitingBet = true

	return &models.RevealOutcome{
		Street:        sess.street,
		Community:     append([]poker.Card(nil), sess.community[:sess.revealed]...),
		RevealedCount: sess.revealed,
		Legal:         models.LegalActions{CanCheck: true, CanRaise: true},
	}, nil
}

// ActiveHand returns the renderable state of the user's hand in progress,
// or nil when there is none.
func (s *handService) ActiveHand(ctx context.Context, userID string) (*models.HandView, error) {
	s.sessionsMu.RLock()
	sess, ok := s.sessions[userID]
	s.sessionsMu.RUnlock()
	if !ok {
		return nil, nil
	}

	balance, err := s.economy.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess, balance), nil
}

func (s *handService) session(userID string) (*handSession, error) {
	s.sessionsMu.RLock()
	sess, ok := s.sessions[userID]
	s.sessionsMu.RUnlock()
	if !ok {
		return nil, ErrNoActiveHand
	}
	return sess, nil
}

func (s *handService) dropSession(userID string) {
	s.sessionsMu.Lock()
	delete(s.sessions, userID)
	s.sessionsMu.Unlock()
}

func (s *handService) decideDealerRaise(sess *handSession, playerRaised bool) int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return dealerDecideRaise(sess.dealerHole, sess.tier, playerRaised, s.rng)
}

// applyContribution deducts the player's matched stake for this street
// and records the balance change. The dealer's matching contribution is
// virtual; only the player's coins are tracked.
func (s *handService) applyContribution(ctx context.Context, sess *handSession, amount int64, txType models.TransactionType, metadata map[string]any) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserID(ctx, sess.userID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return fmt.Errorf("account %s not found", sess.userID)
	}

	if err := uow.AccountRepository().DeductBalance(ctx, sess.userID, amount); err != nil {
		return err
	}

	history := &models.BalanceHistory{
		UserID:              sess.userID,
		BalanceBefore:       account.Balance,
		BalanceAfter:        account.Balance - amount,
		ChangeAmount:        -amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// finishStreet closes betting on the current street. On the river the
// hand settles immediately; otherwise the caller must reveal the next
// street before betting again.
func (s *handService) finishStreet(ctx context.Context, sess *handSession, playerRaised bool, playerAmount, dealerRaise, balance int64) (*models.StreetOutcome, error) {
	sess.awaitingBet = false

	outcome := &models.StreetOutcome{
		Street:             sess.street,
		PlayerRaised:       playerRaised,
		PlayerAmount:       playerAmount,
		DealerRaise:        dealerRaise,
		PotTotal:           sess.potTotal,
		PlayerContribution: sess.playerContribution,
		PayoutIfWin:        s.payoutIfWin(sess),
		Balance:            balance,
	}

	if sess.street != models.StreetRiver {
		outcome.Legal = models.LegalActions{CanReveal: true}
		return outcome, nil
	}

	settlement, err := s.settle(ctx, sess)
	if err != nil {
		sess.settlePending = true
		return nil, err
	}
	outcome.Street = models.StreetShowdown
	outcome.Balance = settlement.NewBalance
	outcome.Settlement = settlement
	return outcome, nil
}

// retrySettle re-runs a river settlement that previously failed to
// commit. The pot is already fully funded, so the retry moves no coins
// until the settlement transaction itself succeeds.
func (s *handService) retrySettle(ctx context.Context, sess *handSession) (*models.StreetOutcome, error) {
	settlement, err := s.settle(ctx, sess)
	if err != nil {
		return nil, err
	}
	sess.settlePending = false
	return &models.StreetOutcome{
		Street:             models.StreetShowdown,
		PotTotal:           sess.potTotal,
		PlayerContribution: sess.playerContribution,
		PayoutIfWin:        s.payoutIfWin(sess),
		Balance:            settlement.NewBalance,
		Settlement:         settlement,
	}, nil
}

// settle runs the showdown: both seven-card hands are evaluated, the
// payout (win), refund (tie) or nothing (loss) is credited, and the hand
// record is written. Coins were deducted as they were bet, so settlement
// only ever adds.
func (s *handService) settle(ctx context.Context, sess *handSession) (*models.Settlement, error) {
	playerValue, err := poker.BestOfSeven(append(append([]poker.Card(nil), sess.playerHole...), sess.community...))
	if err != nil {
		return nil, fmt.Errorf("evaluating player hand: %w", err)
	}
	dealerValue, err := poker.BestOfSeven(append(append([]poker.Card(nil), sess.dealerHole...), sess.community...))
	if err != nil {
		return nil, fmt.Errorf("evaluating dealer hand: %w", err)
	}

	var result models.HandResult
	var payout int64
	var txType models.TransactionType
	switch {
	case playerValue.Beats(dealerValue):
		result = models.HandResultWin
		payout = s.payoutIfWin(sess)
		txType = models.TransactionTypePayout
	case dealerValue.Beats(playerValue):
		result = models.HandResultLoss
	default:
		// Ties refund the player's contribution exactly; the payout
		// multiplier never applies to a tie.
		result = models.HandResultTie
		payout = sess.playerContribution
		txType = models.TransactionTypeTieRefund
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUserID(ctx, sess.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s not found", sess.userID)
	}
	newBalance := account.Balance

	if payout > 0 {
		if err := uow.AccountRepository().AddBalance(ctx, sess.userID, payout); err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
		newBalance += payout

		history := &models.BalanceHistory{
			UserID:          sess.userID,
			BalanceBefore:   account.Balance,
			BalanceAfter:    newBalance,
			ChangeAmount:    payout,
			TransactionType: txType,
			TransactionMetadata: map[string]any{
				"hand_id": sess.id,
				"result":  string(result),
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, err
		}
	}

	hand := &models.Hand{
		ID:                 sess.id,
		UserID:             sess.userID,
		Tier:               sess.tier,
		BuyIn:              sess.tier.BuyIn(),
		PotTotal:           sess.potTotal,
		PlayerContribution: sess.playerContribution,
		Result:             result,
		Payout:             payout,
		PlayerCategory:     playerValue.Category.String(),
		DealerCategory:     dealerValue.Category.String(),
	}
	if err := uow.HandRepository().Create(ctx, hand); err != nil {
		return nil, fmt.Errorf("failed to record hand: %w", err)
	}

	uow.EventBus().Publish(events.HandSettledEvent{
		UserID:     sess.userID,
		HandID:     sess.id,
		Tier:       sess.tier,
		Result:     result,
		PotTotal:   sess.potTotal,
		Payout:     payout,
		NewBalance: newBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.street = models.StreetShowdown
	sess.revealed = len(sess.community)
	s.dropSession(sess.userID)

	log.WithFields(log.Fields{
		"userID": sess.userID,
		"handID": sess.id,
		"result": result,
		"payout": payout,
	}).Info("Hand settled")

	return &models.Settlement{
		Result:         result,
		PlayerCategory: playerValue.Category,
		DealerCategory: dealerValue.Category,
		DealerHole:     append([]poker.Card(nil), sess.dealerHole...),
		Community:      append([]poker.Card(nil), sess.community...),
		Payout:         payout,
		NewBalance:     newBalance,
	}, nil
}

// payoutIfWin is derived from the pot: the pot stays exactly balanced
// (every bet is matched), so pot × multiplier / 2 equals the player's
// contribution × multiplier.
func (s *handService) payoutIfWin(sess *handSession) int64 {
	return sess.potTotal * sess.tier.Multiplier() / 2
}

func (s *handService) view(sess *handSession, balance int64) *models.HandView {
	legal := models.LegalActions{}
	switch {
	case sess.settlePending:
		// A check retries the stuck settlement.
		legal.CanCheck = true
	case sess.awaitingBet:
		legal.CanCheck = true
		legal.CanRaise = true
	case sess.street != models.StreetRiver && sess.street != models.StreetShowdown:
		legal.CanReveal = true
	}

	return &models.HandView{
		HandID:             sess.id,
		Street:             sess.street,
		PlayerHole:         append([]poker.Card(nil), sess.playerHole...),
		Community:          append([]poker.Card(nil), sess.community[:sess.revealed]...),
		PotTotal:           sess.potTotal,
		PlayerContribution: sess.playerContribution,
		PayoutIfWin:        s.payoutIfWin(sess),
		Balance:            balance,
		Legal:              legal,
	}
}
