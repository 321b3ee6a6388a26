package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"raffler/config"
	"raffler/events"
	"raffler/metrics"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

type raffleService struct {
	uowFactory UnitOfWorkFactory
	oracle     RandomnessOracle

	// Immutable post-construction
	entranceFee int64
	interval    time.Duration
	oracleSpec  models.RandomnessSpec
}

// NewRaffleService creates a new raffle service
func NewRaffleService(uowFactory UnitOfWorkFactory, oracle RandomnessOracle, cfg *config.Config) RaffleService {
	return &raffleService{
		uowFactory:  uowFactory,
		oracle:      oracle,
		entranceFee: cfg.EntranceFee,
		interval:    cfg.RoundInterval,
		oracleSpec: models.RandomnessSpec{
			SubscriptionID:    cfg.OracleSubscriptionID,
			PriorityClass:     cfg.OraclePriorityClass,
			ConfirmationDepth: cfg.OracleConfirmationDepth,
			CallbackBudget:    cfg.OracleCallbackBudget,
			NumValues:         models.NumRandomValues,
		},
	}
}

// Enter records a paid entry for a participant while the raffle is open.
// The fee moves from the participant's account into the pool and the
// participant takes the next slot of the current round.
func (s *raffleService) Enter(ctx context.Context, participantID string, amount int64) (*models.Entrant, error) {
	if participantID == "" {
		return nil, fmt.Errorf("participant id cannot be empty")
	}
	if amount < s.entranceFee {
		return nil, fmt.Errorf("%w: paid %d, fee is %d", models.ErrInsufficientPayment, amount, s.entranceFee)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}
	if !state.IsOpen() {
		return nil, fmt.Errorf("%w: phase is %s", models.ErrNotOpen, state.Phase)
	}

	account, err := uow.LedgerRepository().GetAccount(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, participantID)
	}

	pool, err := uow.LedgerRepository().GetAccount(ctx, models.PoolAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account: %w", err)
	}

	// Move the payment into the pool
	if err := uow.LedgerRepository().Debit(ctx, participantID, amount); err != nil {
		return nil, fmt.Errorf("failed to collect entry payment: %w", err)
	}
	if err := uow.LedgerRepository().Credit(ctx, models.PoolAccountID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit pool: %w", err)
	}

	entrant := &models.Entrant{
		RoundNumber:   state.RoundNumber,
		ParticipantID: participantID,
		AmountPaid:    amount,
	}
	if err := uow.EntrantRepository().Append(ctx, entrant); err != nil {
		return nil, fmt.Errorf("failed to record entrant: %w", err)
	}

	metadata := map[string]any{
		"round_number": state.RoundNumber,
		"position":     entrant.Position,
	}
	err = recordTransfer(ctx, uow, transfer{
		from:     account,
		to:       pool,
		amount:   amount,
		fromType: models.TransactionTypeEntryFeeOut,
		toType:   models.TransactionTypeEntryFeeIn,
		metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.EntrantJoinedEvent{
		ParticipantID: participantID,
		RoundNumber:   state.RoundNumber,
		Position:      entrant.Position,
		AmountPaid:    amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.EntriesTotal.Inc()
	log.WithFields(log.Fields{
		"participant": participantID,
		"round":       state.RoundNumber,
		"position":    entrant.Position,
		"amount":      amount,
	}).Info("Entrant joined")

	return entrant, nil
}

// CheckEligibility evaluates the draw preconditions without side effects.
// The result is advisory only; PerformDraw re-derives it under the state lock.
func (s *raffleService) CheckEligibility(ctx context.Context) (*models.EligibilityReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}

	report, err := s.evaluate(ctx, uow, state)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// evaluate derives the eligibility report for the given state
func (s *raffleService) evaluate(ctx context.Context, uow UnitOfWork, state *models.RaffleState) (*models.EligibilityReport, error) {
	count, err := uow.EntrantRepository().CountByRound(ctx, state.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to count entrants: %w", err)
	}

	pool, err := uow.LedgerRepository().GetAccount(ctx, models.PoolAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account: %w", err)
	}
	var poolBalance int64
	if pool != nil {
		poolBalance = pool.Balance
	}

	now := time.Now()
	report := &models.EligibilityReport{
		Phase:          state.Phase,
		EntrantCount:   count,
		PoolBalance:    poolBalance,
		TimeSinceReset: now.Sub(state.LastResetAt),
		Interval:       s.interval,
		CheckedAt:      now,
	}
	report.Eligible = state.IsOpen() &&
		state.IntervalElapsed(s.interval, now) &&
		count > 0 &&
		poolBalance > 0

	return report, nil
}

// PerformDraw closes entries and submits a randomness request. Anyone may
// invoke it; eligibility is re-derived under the state row lock, so a stale
// or speculative caller fails loudly with the current diagnostics. The phase
// flip and the request submission commit atomically: if the transaction does
// not commit, the submitted request id is never recorded and its callback is
// rejected as unknown.
func (s *raffleService) PerformDraw(ctx context.Context) (string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().GetForUpdate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get raffle state: %w", err)
	}

	report, err := s.evaluate(ctx, uow, state)
	if err != nil {
		return "", err
	}
	if !report.Eligible {
		metrics.TriggerMisfiresTotal.Inc()
		return "", &models.TriggerNotEligibleError{Report: *report}
	}

	requestID, err := s.oracle.RequestRandomness(ctx, s.oracleSpec)
	if err != nil {
		return "", fmt.Errorf("failed to submit randomness request: %w", err)
	}

	state.Phase = models.RafflePhaseResolving
	state.PendingRequestID = &requestID
	if err := uow.RaffleRepository().Update(ctx, state); err != nil {
		return "", fmt.Errorf("failed to update raffle state: %w", err)
	}

	request := &models.RandomnessRequest{
		RequestID:         requestID,
		RoundNumber:       state.RoundNumber,
		ConfirmationDepth: s.oracleSpec.ConfirmationDepth,
		CallbackBudget:    s.oracleSpec.CallbackBudget,
		NumValues:         s.oracleSpec.NumValues,
	}
	if err := uow.RandomnessRequestRepository().Create(ctx, request); err != nil {
		return "", fmt.Errorf("failed to record randomness request: %w", err)
	}

	uow.EventBus().Publish(events.SelectionRequestedEvent{
		RequestID:    requestID,
		RoundNumber:  state.RoundNumber,
		EntrantCount: report.EntrantCount,
		PoolBalance:  report.PoolBalance,
	})

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.DrawsTotal.Inc()
	log.WithFields(log.Fields{
		"request_id": requestID,
		"round":      state.RoundNumber,
		"entrants":   report.EntrantCount,
		"pool":       report.PoolBalance,
	}).Info("Selection requested")

	return requestID, nil
}

// FulfillRandomness resolves the round for the given oracle request. Only
// the outstanding request id is honored; a stale, foreign or replayed id
// leaves all state untouched. The winner index is the first random value
// reduced modulo the entrant count. A failed payout aborts the entire
// resolution: the transaction rolls back and the raffle stays RESOLVING.
func (s *raffleService) FulfillRandomness(ctx context.Context, requestID string, randomValues []uint64) (*models.RoundResult, error) {
	if len(randomValues) == 0 {
		return nil, fmt.Errorf("randomness callback carried no values")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}
	if !state.IsResolving() || state.PendingRequestID == nil || *state.PendingRequestID != requestID {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownRequest, requestID)
	}

	entrants, err := uow.EntrantRepository().ListByRound(ctx, state.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrants: %w", err)
	}
	if len(entrants) == 0 {
		return nil, fmt.Errorf("round %d is resolving with no entrants", state.RoundNumber)
	}

	winnerIndex := int(randomValues[0] % uint64(len(entrants)))
	winner := entrants[winnerIndex]

	pool, err := uow.LedgerRepository().GetAccount(ctx, models.PoolAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account: %w", err)
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, models.PoolAccountID)
	}
	payout := pool.Balance

	// Consume the request before touching anything else so a replay can
	// never get past this point
	fulfilledValue := strconv.FormatUint(randomValues[0], 10)
	if err := uow.RandomnessRequestRepository().MarkFulfilled(ctx, requestID, fulfilledValue, winner.ParticipantID); err != nil {
		return nil, err
	}

	resolvedRound := state.RoundNumber
	entrantCount := len(entrants)
	now := time.Now()

	// Open the next round: advancing the round number clears the entrant
	// set, and the baseline restarts the interval clock
	state.Phase = models.RafflePhaseOpen
	state.RoundNumber = resolvedRound + 1
	state.LastResetAt = now
	state.PendingRequestID = nil
	state.LastWinnerID = &winner.ParticipantID
	state.LastPayout = &payout
	state.LastResolvedAt = &now
	if err := uow.RaffleRepository().Update(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to update raffle state: %w", err)
	}

	winnerAccount, err := uow.LedgerRepository().GetAccount(ctx, winner.ParticipantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner account: %w", err)
	}
	if winnerAccount == nil {
		return nil, fmt.Errorf("%w: winner %s has no ledger account", models.ErrTransferFailed, winner.ParticipantID)
	}

	if err := uow.LedgerRepository().Debit(ctx, models.PoolAccountID, payout); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}
	if err := uow.LedgerRepository().Credit(ctx, winner.ParticipantID, payout); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	metadata := map[string]any{
		"round_number": resolvedRound,
		"request_id":   requestID,
		"winner_index": winnerIndex,
	}
	err = recordTransfer(ctx, uow, transfer{
		from:     pool,
		to:       winnerAccount,
		amount:   payout,
		fromType: models.TransactionTypePayoutOut,
		toType:   models.TransactionTypePayoutIn,
		metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WinnerSelectedEvent{
		ParticipantID: winner.ParticipantID,
		RoundNumber:   resolvedRound,
		RequestID:     requestID,
		Payout:        payout,
		EntrantCount:  entrantCount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.FulfillmentsTotal.Inc()
	metrics.PayoutUnitsTotal.Add(float64(payout))
	log.WithFields(log.Fields{
		"winner":     winner.ParticipantID,
		"round":      resolvedRound,
		"request_id": requestID,
		"payout":     payout,
		"entrants":   entrantCount,
	}).Info("Winner selected")

	return &models.RoundResult{
		RoundNumber:  resolvedRound,
		RequestID:    requestID,
		WinnerID:     winner.ParticipantID,
		WinnerIndex:  winnerIndex,
		EntrantCount: entrantCount,
		Payout:       payout,
	}, nil
}

// GetState returns the current raffle state
func (s *raffleService) GetState(ctx context.Context) (*models.RaffleState, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}

	return state, nil
}

// GetEntrant returns the entrant at a slot index of the current round
func (s *raffleService) GetEntrant(ctx context.Context, index int) (*models.Entrant, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: index %d", models.ErrIndexOutOfRange, index)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}

	entrant, err := uow.EntrantRepository().GetByPosition(ctx, state.RoundNumber, index)
	if err != nil {
		return nil, fmt.Errorf("failed to get entrant: %w", err)
	}
	if entrant == nil {
		return nil, fmt.Errorf("%w: index %d of round %d", models.ErrIndexOutOfRange, index, state.RoundNumber)
	}

	return entrant, nil
}

// EntrantCount returns the number of slots taken in the current round
func (s *raffleService) EntrantCount(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RaffleRepository().Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get raffle state: %w", err)
	}

	count, err := uow.EntrantRepository().CountByRound(ctx, state.RoundNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to count entrants: %w", err)
	}

	return count, nil
}

// EntranceFee returns the fixed minimum payment per entry
func (s *raffleService) EntranceFee() int64 {
	return s.entranceFee
}

// RoundInterval returns the fixed minimum time between rounds
func (s *raffleService) RoundInterval() time.Duration {
	return s.interval
}

// OracleSpec returns the fixed oracle request parameters
func (s *raffleService) OracleSpec() models.RandomnessSpec {
	return s.oracleSpec
}
