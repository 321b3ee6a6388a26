package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// EntrantRepository implements the service.EntrantRepository interface
type EntrantRepository struct {
	q queryable
}

// NewEntrantRepository creates a new entrant repository
func NewEntrantRepository(db *database.DB) *EntrantRepository {
	return &EntrantRepository{q: db.Pool}
}

// newEntrantRepositoryWithTx creates a new entrant repository with a transaction
func newEntrantRepositoryWithTx(tx queryable) *EntrantRepository {
	return &EntrantRepository{q: tx}
}

// Append records a new entrant at the next free position of its round.
// Positions assign insertion order; callers hold the raffle state row lock,
// so two appends never race for the same position.
func (r *EntrantRepository) Append(ctx context.Context, entrant *models.Entrant) error {
	query := `
		INSERT INTO entrants (round_number, position, participant_id, amount_paid)
		SELECT $1, COALESCE(MAX(position) + 1, 0), $2, $3
		FROM entrants
		WHERE round_number = $1
		RETURNING id, position, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entrant.RoundNumber,
		entrant.ParticipantID,
		entrant.AmountPaid,
	).Scan(&entrant.ID, &entrant.Position, &entrant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append entrant for round %d: %w", entrant.RoundNumber, err)
	}

	return nil
}

// CountByRound returns the number of slots taken in a round
func (r *EntrantRepository) CountByRound(ctx context.Context, roundNumber int64) (int, error) {
	query := `SELECT COUNT(*) FROM entrants WHERE round_number = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, roundNumber).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entrants for round %d: %w", roundNumber, err)
	}

	return count, nil
}

// GetByPosition retrieves the entrant at a position within a round
func (r *EntrantRepository) GetByPosition(ctx context.Context, roundNumber int64, position int) (*models.Entrant, error) {
	query := `
		SELECT id, round_number, position, participant_id, amount_paid, created_at
		FROM entrants
		WHERE round_number = $1 AND position = $2
	`

	var entrant models.Entrant
	err := r.q.QueryRow(ctx, query, roundNumber, position).Scan(
		&entrant.ID,
		&entrant.RoundNumber,
		&entrant.Position,
		&entrant.ParticipantID,
		&entrant.AmountPaid,
		&entrant.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entrant at position %d of round %d: %w", position, roundNumber, err)
	}

	return &entrant, nil
}

// ListByRound returns all entrants of a round in insertion order
func (r *EntrantRepository) ListByRound(ctx context.Context, roundNumber int64) ([]*models.Entrant, error) {
	query := `
		SELECT id, round_number, position, participant_id, amount_paid, created_at
		FROM entrants
		WHERE round_number = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrants for round %d: %w", roundNumber, err)
	}
	defer rows.Close()

	var entrants []*models.Entrant
	for rows.Next() {
		var entrant models.Entrant
		err := rows.Scan(
			&entrant.ID,
			&entrant.RoundNumber,
			&entrant.Position,
			&entrant.ParticipantID,
			&entrant.AmountPaid,
			&entrant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entrant: %w", err)
		}
		entrants = append(entrants, &entrant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entrants: %w", err)
	}

	return entrants, nil
}
