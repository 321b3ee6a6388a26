package service

import (
	"context"
	"time"

	"raffler/events"
	"raffler/models"

	"github.com/stretchr/testify/mock"
)

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Get(ctx context.Context) (*models.RaffleState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleState), args.Error(1)
}

func (m *MockRaffleRepository) GetForUpdate(ctx context.Context) (*models.RaffleState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleState), args.Error(1)
}

func (m *MockRaffleRepository) Update(ctx context.Context, state *models.RaffleState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockEntrantRepository is a mock implementation of EntrantRepository
type MockEntrantRepository struct {
	mock.Mock
}

func (m *MockEntrantRepository) Append(ctx context.Context, entrant *models.Entrant) error {
	args := m.Called(ctx, entrant)
	return args.Error(0)
}

func (m *MockEntrantRepository) CountByRound(ctx context.Context, roundNumber int64) (int, error) {
	args := m.Called(ctx, roundNumber)
	return args.Int(0), args.Error(1)
}

func (m *MockEntrantRepository) GetByPosition(ctx context.Context, roundNumber int64, position int) (*models.Entrant, error) {
	args := m.Called(ctx, roundNumber, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entrant), args.Error(1)
}

func (m *MockEntrantRepository) ListByRound(ctx context.Context, roundNumber int64) ([]*models.Entrant, error) {
	args := m.Called(ctx, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entrant), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerRepository) CreateAccountIfAbsent(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockLedgerRepository) Credit(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockLedgerRepository) Debit(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockLedgerRepository) RecordEntry(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockRandomnessRequestRepository is a mock implementation of RandomnessRequestRepository
type MockRandomnessRequestRepository struct {
	mock.Mock
}

func (m *MockRandomnessRequestRepository) Create(ctx context.Context, request *models.RandomnessRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRandomnessRequestRepository) Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RandomnessRequest), args.Error(1)
}

func (m *MockRandomnessRequestRepository) MarkFulfilled(ctx context.Context, requestID string, fulfilledValue string, winnerID string) error {
	args := m.Called(ctx, requestID, fulfilledValue, winnerID)
	return args.Error(0)
}

// MockRandomnessOracle is a mock implementation of RandomnessOracle
type MockRandomnessOracle struct {
	mock.Mock
}

func (m *MockRandomnessOracle) RequestRandomness(ctx context.Context, spec models.RandomnessSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories; Begin/Commit/Rollback go through testify
// expectations.
type MockUnitOfWork struct {
	mock.Mock
	raffleRepo  RaffleRepository
	entrantRepo EntrantRepository
	ledgerRepo  LedgerRepository
	requestRepo RandomnessRequestRepository
	eventBus    EventPublisher
}

// SetRepositories configures the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	raffleRepo RaffleRepository,
	entrantRepo EntrantRepository,
	ledgerRepo LedgerRepository,
	requestRepo RandomnessRequestRepository,
	eventBus EventPublisher,
) {
	m.raffleRepo = raffleRepo
	m.entrantRepo = entrantRepo
	m.ledgerRepo = ledgerRepo
	m.requestRepo = requestRepo
	m.eventBus = eventBus
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

func (m *MockUnitOfWork) RaffleRepository() RaffleRepository {
	return m.raffleRepo
}

func (m *MockUnitOfWork) EntrantRepository() EntrantRepository {
	return m.entrantRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) RandomnessRequestRepository() RandomnessRequestRepository {
	return m.requestRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockRaffleService is a mock implementation of RaffleService
type MockRaffleService struct {
	mock.Mock
}

func (m *MockRaffleService) Enter(ctx context.Context, participantID string, amount int64) (*models.Entrant, error) {
	args := m.Called(ctx, participantID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entrant), args.Error(1)
}

func (m *MockRaffleService) CheckEligibility(ctx context.Context) (*models.EligibilityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EligibilityReport), args.Error(1)
}

func (m *MockRaffleService) PerformDraw(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRaffleService) FulfillRandomness(ctx context.Context, requestID string, randomValues []uint64) (*models.RoundResult, error) {
	args := m.Called(ctx, requestID, randomValues)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundResult), args.Error(1)
}

func (m *MockRaffleService) GetState(ctx context.Context) (*models.RaffleState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleState), args.Error(1)
}

func (m *MockRaffleService) GetEntrant(ctx context.Context, index int) (*models.Entrant, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entrant), args.Error(1)
}

func (m *MockRaffleService) EntrantCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRaffleService) EntranceFee() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockRaffleService) RoundInterval() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockRaffleService) OracleSpec() models.RandomnessSpec {
	args := m.Called()
	return args.Get(0).(models.RandomnessSpec)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Deposit(ctx context.Context, accountID string, amount int64) (*models.Account, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
