package models

import (
	"time"
)

// RafflePhase represents the lifecycle phase of the raffle
type RafflePhase string

const (
	RafflePhaseOpen      RafflePhase = "open"
	RafflePhaseResolving RafflePhase = "resolving"
)

// RaffleState represents the current round of the raffle. Exactly one row of
// this state exists; completed rounds survive as history in the entrants,
// ledger and randomness request tables.
type RaffleState struct {
	RoundNumber      int64       `db:"round_number"`
	Phase            RafflePhase `db:"phase"`
	LastResetAt      time.Time   `db:"last_reset_at"`
	PendingRequestID *string     `db:"pending_request_id"`
	LastWinnerID     *string     `db:"last_winner_id"`
	LastPayout       *int64      `db:"last_payout"`
	LastResolvedAt   *time.Time  `db:"last_resolved_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// IsOpen checks if the raffle is accepting entries
func (s *RaffleState) IsOpen() bool {
	return s.Phase == RafflePhaseOpen
}

// IsResolving checks if the raffle is awaiting a randomness callback
func (s *RaffleState) IsResolving() bool {
	return s.Phase == RafflePhaseResolving
}

// IntervalElapsed checks if more than the configured round interval has
// passed since the timing baseline. The comparison is strict.
func (s *RaffleState) IntervalElapsed(interval time.Duration, now time.Time) bool {
	return now.Sub(s.LastResetAt) > interval
}

// EligibilityReport captures the state of every draw precondition at the
// moment it was evaluated
type EligibilityReport struct {
	Eligible       bool          `json:"eligible"`
	Phase          RafflePhase   `json:"phase"`
	EntrantCount   int           `json:"entrant_count"`
	PoolBalance    int64         `json:"pool_balance"`
	TimeSinceReset time.Duration `json:"time_since_reset"`
	Interval       time.Duration `json:"interval"`
	CheckedAt      time.Time     `json:"checked_at"`
}

// RoundResult represents the outcome of a completed round
type RoundResult struct {
	RoundNumber  int64  `json:"round_number"`
	RequestID    string `json:"request_id"`
	WinnerID     string `json:"winner_id"`
	WinnerIndex  int    `json:"winner_index"`
	EntrantCount int    `json:"entrant_count"`
	Payout       int64  `json:"payout"`
}
