package models

import (
	"time"
)

// NumRandomValues is the number of random values requested per round.
const NumRandomValues = 1

// RandomnessRequestStatus represents the status of an oracle request
type RandomnessRequestStatus string

const (
	RandomnessRequestStatusPending   RandomnessRequestStatus = "pending"
	RandomnessRequestStatusFulfilled RandomnessRequestStatus = "fulfilled"
)

// RandomnessSpec holds the fixed, construction-time oracle request parameters
type RandomnessSpec struct {
	SubscriptionID    string `json:"subscription_id"`
	PriorityClass     string `json:"priority_class"`
	ConfirmationDepth int    `json:"confirmation_depth"`
	CallbackBudget    int64  `json:"callback_budget"`
	NumValues         int    `json:"num_values"`
}

// RandomnessRequest represents one outstanding or completed oracle request.
// The callback handler only honors the request id recorded here while it is
// still pending; anything else is stale or foreign.
type RandomnessRequest struct {
	RequestID         string                  `db:"request_id"`
	RoundNumber       int64                   `db:"round_number"`
	ConfirmationDepth int                     `db:"confirmation_depth"`
	CallbackBudget    int64                   `db:"callback_budget"`
	NumValues         int                     `db:"num_values"`
	Status            RandomnessRequestStatus `db:"status"`
	FulfilledValue    *string                 `db:"fulfilled_value"`
	WinnerID          *string                 `db:"winner_id"`
	CreatedAt         time.Time               `db:"created_at"`
	FulfilledAt       *time.Time              `db:"fulfilled_at"`
}
