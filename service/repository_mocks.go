package service

import (
	"context"
	"time"

	"pokerroom/events"
	"pokerroom/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, userID string, initialBalance int64, nextGrantAt time.Time) (*models.Account, error) {
	args := m.Called(ctx, userID, initialBalance, nextGrantAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, userID string, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, userID string, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, userID string, balance int64) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockAccountRepository) MarkGrantAvailable(ctx context.Context, userID string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ClaimGrant(ctx context.Context, userID string, amount int64, nextGrantAt time.Time) (*models.Account, error) {
	args := m.Called(ctx, userID, amount, nextGrantAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

func (m *MockBalanceHistoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockHandRepository is a mock implementation of HandRepository
type MockHandRepository struct {
	mock.Mock
}

func (m *MockHandRepository) Create(ctx context.Context, hand *models.Hand) error {
	args := m.Called(ctx, hand)
	return args.Error(0)
}

func (m *MockHandRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.Hand, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Hand), args.Error(1)
}

func (m *MockHandRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// recordingPublisher collects published events without expectations,
// for tests that only care about what ended up on the bus.
type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// fakeAccountRepo keeps account rows in memory with the same
// conditional-update semantics the Postgres repository has, for tests
// that drive multi-step state through the service layer.
type fakeAccountRepo struct {
	accounts map[string]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountRepo) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	account, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, userID string, initialBalance int64, nextGrantAt time.Time) (*models.Account, error) {
	account := &models.Account{
		UserID:      userID,
		Balance:     initialBalance,
		NextGrantAt: nextGrantAt,
	}
	f.accounts[userID] = account
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) AddBalance(ctx context.Context, userID string, amount int64) error {
	f.accounts[userID].Balance += amount
	return nil
}

func (f *fakeAccountRepo) DeductBalance(ctx context.Context, userID string, amount int64) error {
	account := f.accounts[userID]
	if account.Balance < amount {
		return ErrInsufficientFunds
	}
	account.Balance -= amount
	return nil
}

func (f *fakeAccountRepo) SetBalance(ctx context.Context, userID string, balance int64) error {
	f.accounts[userID].Balance = balance
	return nil
}

func (f *fakeAccountRepo) MarkGrantAvailable(ctx context.Context, userID string, now time.Time) (bool, error) {
	account := f.accounts[userID]
	if account.GrantAvailable || now.Before(account.NextGrantAt) {
		return false, nil
	}
	account.GrantAvailable = true
	return true, nil
}

func (f *fakeAccountRepo) ClaimGrant(ctx context.Context, userID string, amount int64, nextGrantAt time.Time) (*models.Account, error) {
	account := f.accounts[userID]
	if !account.GrantAvailable {
		return nil, nil
	}
	account.GrantAvailable = false
	account.Balance += amount
	account.NextGrantAt = nextGrantAt
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, userID string) error {
	delete(f.accounts, userID)
	return nil
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// getters return whatever SetRepositories installed rather than going
// through expectations.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo AccountRepository
	historyRepo BalanceHistoryRepository
	handRepo    HandRepository
	publisher   EventPublisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, history BalanceHistoryRepository, hands HandRepository, publisher EventPublisher) {
	m.accountRepo = accounts
	m.historyRepo = history
	m.handRepo = hands
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) HandRepository() HandRepository {
	return m.handRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockClock is a controllable Clock for time-dependent tests
type MockClock struct {
	NowTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.NowTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.NowTime = c.NowTime.Add(d)
}
