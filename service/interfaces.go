package service

import (
	"context"
	"time"

	"raffler/events"
	"raffler/models"
)

// RaffleRepository defines the interface for the single-row raffle state
type RaffleRepository interface {
	// Get retrieves the current raffle state
	Get(ctx context.Context) (*models.RaffleState, error)

	// GetForUpdate retrieves the current raffle state with a row lock held
	// for the rest of the transaction
	GetForUpdate(ctx context.Context) (*models.RaffleState, error)

	// Update persists the raffle state
	Update(ctx context.Context, state *models.RaffleState) error
}

// EntrantRepository defines the interface for entrant slot data access
type EntrantRepository interface {
	// Append records a new entrant at the next position of its round
	Append(ctx context.Context, entrant *models.Entrant) error

	// CountByRound returns the number of slots taken in a round
	CountByRound(ctx context.Context, roundNumber int64) (int, error)

	// GetByPosition retrieves the entrant at a position within a round,
	// or nil if the slot does not exist
	GetByPosition(ctx context.Context, roundNumber int64, position int) (*models.Entrant, error)

	// ListByRound returns all entrants of a round in insertion order
	ListByRound(ctx context.Context, roundNumber int64) ([]*models.Entrant, error)
}

// LedgerRepository defines the interface for account balances and transfers
type LedgerRepository interface {
	// GetAccount retrieves an account by id, or nil if it does not exist
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// CreateAccountIfAbsent creates an account with a zero balance if it
	// does not already exist
	CreateAccountIfAbsent(ctx context.Context, accountID string) error

	// Credit adds to an account's balance atomically
	Credit(ctx context.Context, accountID string, amount int64) error

	// Debit deducts from an account's balance atomically, failing with
	// models.ErrInsufficientFunds if the balance is too low
	Debit(ctx context.Context, accountID string, amount int64) error

	// RecordEntry appends a ledger entry
	RecordEntry(ctx context.Context, entry *models.LedgerEntry) error

	// GetEntries returns the most recent ledger entries for an account
	GetEntries(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)
}

// RandomnessRequestRepository defines the interface for the pending-request table
type RandomnessRequestRepository interface {
	// Create records a newly submitted oracle request
	Create(ctx context.Context, request *models.RandomnessRequest) error

	// Get retrieves a request by its id, or nil if unknown
	Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error)

	// MarkFulfilled transitions a request from pending to fulfilled, failing
	// with models.ErrUnknownRequest if it is not pending
	MarkFulfilled(ctx context.Context, requestID string, fulfilledValue string, winnerID string) error
}

// RandomnessOracle defines the interface to the external randomness service.
// Requests are asynchronous: the oracle later invokes the raffle's
// FulfillRandomness callback with the returned request id.
type RandomnessOracle interface {
	// RequestRandomness submits a request and returns the oracle's request id
	RequestRandomness(ctx context.Context, spec models.RandomnessSpec) (string, error)
}

// RaffleService defines the interface for the raffle state machine
type RaffleService interface {
	// Enter records a paid entry for a participant while the raffle is open
	Enter(ctx context.Context, participantID string, amount int64) (*models.Entrant, error)

	// CheckEligibility evaluates the draw preconditions without side effects
	CheckEligibility(ctx context.Context) (*models.EligibilityReport, error)

	// PerformDraw re-validates eligibility, closes entries and submits a
	// randomness request; returns the oracle request id
	PerformDraw(ctx context.Context) (string, error)

	// FulfillRandomness resolves the round for the given oracle request:
	// picks the winner, pays out the pool and opens the next round
	FulfillRandomness(ctx context.Context, requestID string, randomValues []uint64) (*models.RoundResult, error)

	// GetState returns the current raffle state
	GetState(ctx context.Context) (*models.RaffleState, error)

	// GetEntrant returns the entrant at a slot index of the current round
	GetEntrant(ctx context.Context, index int) (*models.Entrant, error)

	// EntrantCount returns the number of slots taken in the current round
	EntrantCount(ctx context.Context) (int, error)

	// EntranceFee returns the fixed minimum payment per entry
	EntranceFee() int64

	// RoundInterval returns the fixed minimum time between rounds
	RoundInterval() time.Duration

	// OracleSpec returns the fixed oracle request parameters
	OracleSpec() models.RandomnessSpec
}

// LedgerService defines the interface for account funding and queries
type LedgerService interface {
	// Deposit credits an account, creating it if necessary
	Deposit(ctx context.Context, accountID string, amount int64) (*models.Account, error)

	// GetAccount retrieves an account by id
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
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
	RaffleRepository() RaffleRepository
	EntrantRepository() EntrantRepository
	LedgerRepository() LedgerRepository
	RandomnessRequestRepository() RandomnessRequestRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
