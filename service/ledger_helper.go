package service

import (
	"context"
	"fmt"

	"raffler/events"
	"raffler/models"
)

// transfer describes a completed two-sided balance movement to be logged.
// The balances on from/to are the values read before the movement.
type transfer struct {
	from     *models.Account
	to       *models.Account
	amount   int64
	fromType models.TransactionType
	toType   models.TransactionType
	metadata map[string]any
}

// recordTransfer records ledger entries for both sides of a transfer and
// emits balance change events. This is the single entry point for logging
// balance changes in the system.
func recordTransfer(ctx context.Context, uow UnitOfWork, t transfer) error {
	entries := []*models.LedgerEntry{
		{
			AccountID:       t.from.ID,
			BalanceBefore:   t.from.Balance,
			BalanceAfter:    t.from.Balance - t.amount,
			ChangeAmount:    -t.amount,
			TransactionType: t.fromType,
			Metadata:        t.metadata,
		},
		{
			AccountID:       t.to.ID,
			BalanceBefore:   t.to.Balance,
			BalanceAfter:    t.to.Balance + t.amount,
			ChangeAmount:    t.amount,
			TransactionType: t.toType,
			Metadata:        t.metadata,
		},
	}

	for _, entry := range entries {
		if err := uow.LedgerRepository().RecordEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to record ledger entry: %w", err)
		}

		// Flushed to the main bus only after the transaction commits
		uow.EventBus().Publish(events.BalanceChangeEvent{
			AccountID:       entry.AccountID,
			OldBalance:      entry.BalanceBefore,
			NewBalance:      entry.BalanceAfter,
			TransactionType: entry.TransactionType,
			ChangeAmount:    entry.ChangeAmount,
		})
	}

	return nil
}
