package models

import (
	"time"
)

// Entrant represents one paid slot in a raffle round. The same participant
// may hold multiple slots; each entry buys a separate chance.
type Entrant struct {
	ID            int64     `db:"id"`
	RoundNumber   int64     `db:"round_number"`
	Position      int       `db:"position"` // zero-based insertion order within the round
	ParticipantID string    `db:"participant_id"`
	AmountPaid    int64     `db:"amount_paid"`
	CreatedAt     time.Time `db:"created_at"`
}
