package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// RandomnessRequestRepository implements the service.RandomnessRequestRepository interface
type RandomnessRequestRepository struct {
	q queryable
}

// NewRandomnessRequestRepository creates a new randomness request repository
func NewRandomnessRequestRepository(db *database.DB) *RandomnessRequestRepository {
	return &RandomnessRequestRepository{q: db.Pool}
}

// newRandomnessRequestRepositoryWithTx creates a new randomness request repository with a transaction
func newRandomnessRequestRepositoryWithTx(tx queryable) *RandomnessRequestRepository {
	return &RandomnessRequestRepository{q: tx}
}

// Create records a newly submitted oracle request
func (r *RandomnessRequestRepository) Create(ctx context.Context, request *models.RandomnessRequest) error {
	query := `
		INSERT INTO randomness_requests
		(request_id, round_number, confirmation_depth, callback_budget, num_values, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.RequestID,
		request.RoundNumber,
		request.ConfirmationDepth,
		request.CallbackBudget,
		request.NumValues,
		models.RandomnessRequestStatusPending,
	).Scan(&request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create randomness request %s: %w", request.RequestID, err)
	}

	request.Status = models.RandomnessRequestStatusPending
	return nil
}

// Get retrieves a request by its id
func (r *RandomnessRequestRepository) Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	query := `
		SELECT request_id, round_number, confirmation_depth, callback_budget, num_values,
		       status, fulfilled_value, winner_id, created_at, fulfilled_at
		FROM randomness_requests
		WHERE request_id = $1
	`

	var request models.RandomnessRequest
	err := r.q.QueryRow(ctx, query, requestID).Scan(
		&request.RequestID,
		&request.RoundNumber,
		&request.ConfirmationDepth,
		&request.CallbackBudget,
		&request.NumValues,
		&request.Status,
		&request.FulfilledValue,
		&request.WinnerID,
		&request.CreatedAt,
		&request.FulfilledAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get randomness request %s: %w", requestID, err)
	}

	return &request, nil
}

// MarkFulfilled transitions a request from pending to fulfilled. A request
// that is missing or already consumed yields models.ErrUnknownRequest, so a
// replayed callback can never resolve a round twice.
func (r *RandomnessRequestRepository) MarkFulfilled(ctx context.Context, requestID string, fulfilledValue string, winnerID string) error {
	query := `
		UPDATE randomness_requests
		SET status = $1, fulfilled_value = $2, winner_id = $3, fulfilled_at = NOW()
		WHERE request_id = $4 AND status = $5
	`

	result, err := r.q.Exec(ctx, query,
		models.RandomnessRequestStatusFulfilled,
		fulfilledValue,
		winnerID,
		requestID,
		models.RandomnessRequestStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark randomness request %s fulfilled: %w", requestID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownRequest, requestID)
	}

	return nil
}
