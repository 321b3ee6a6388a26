// Package oracle provides randomness sources for the raffle.
package oracle

import (
	"context"

	"raffler/models"
)

// Fulfiller receives randomness callbacks. The raffle service implements
// this; the oracle invokes it once per request.
type Fulfiller interface {
	FulfillRandomness(ctx context.Context, requestID string, randomValues []uint64) (*models.RoundResult, error)
}
