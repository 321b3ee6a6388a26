package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"
)

// RaffleRepository implements the service.RaffleRepository interface over
// the single raffle_state row
type RaffleRepository struct {
	q queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *database.DB) *RaffleRepository {
	return &RaffleRepository{q: db.Pool}
}

// newRaffleRepositoryWithTx creates a new raffle repository with a transaction
func newRaffleRepositoryWithTx(tx queryable) *RaffleRepository {
	return &RaffleRepository{q: tx}
}

const raffleStateColumns = `
	round_number,
	phase,
	last_reset_at,
	pending_request_id,
	last_winner_id,
	last_payout,
	last_resolved_at,
	updated_at
`

// Get retrieves the current raffle state
func (r *RaffleRepository) Get(ctx context.Context) (*models.RaffleState, error) {
	return r.get(ctx, false)
}

// GetForUpdate retrieves the current raffle state and locks the row for the
// remainder of the transaction. Every mutating raffle operation goes through
// this lock, which serializes entries, draws and callbacks.
func (r *RaffleRepository) GetForUpdate(ctx context.Context) (*models.RaffleState, error) {
	return r.get(ctx, true)
}

func (r *RaffleRepository) get(ctx context.Context, forUpdate bool) (*models.RaffleState, error) {
	query := `SELECT ` + raffleStateColumns + ` FROM raffle_state WHERE id = 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var state models.RaffleState
	err := r.q.QueryRow(ctx, query).Scan(
		&state.RoundNumber,
		&state.Phase,
		&state.LastResetAt,
		&state.PendingRequestID,
		&state.LastWinnerID,
		&state.LastPayout,
		&state.LastResolvedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle state: %w", err)
	}

	return &state, nil
}

// Update persists the raffle state
func (r *RaffleRepository) Update(ctx context.Context, state *models.RaffleState) error {
	query := `
		UPDATE raffle_state
		SET round_number = $1,
		    phase = $2,
		    last_reset_at = $3,
		    pending_request_id = $4,
		    last_winner_id = $5,
		    last_payout = $6,
		    last_resolved_at = $7,
		    updated_at = NOW()
		WHERE id = 1
	`

	result, err := r.q.Exec(ctx, query,
		state.RoundNumber,
		state.Phase,
		state.LastResetAt,
		state.PendingRequestID,
		state.LastWinnerID,
		state.LastPayout,
		state.LastResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update raffle state: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("raffle state row not found")
	}

	return nil
}
