package service

import (
	"context"
	"fmt"

	"raffler/events"
	"raffler/models"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// Deposit credits an account, creating it if necessary
func (s *ledgerService) Deposit(ctx context.Context, accountID string, amount int64) (*models.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id cannot be empty")
	}
	if accountID == models.PoolAccountID {
		return nil, fmt.Errorf("cannot deposit directly into the pool account")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.LedgerRepository().CreateAccountIfAbsent(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to ensure account exists: %w", err)
	}

	account, err := uow.LedgerRepository().GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.LedgerRepository().Credit(ctx, accountID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}

	entry := &models.LedgerEntry{
		AccountID:       accountID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    account.Balance + amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeDeposit,
	}
	if err := uow.LedgerRepository().RecordEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       accountID,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		TransactionType: models.TransactionTypeDeposit,
		ChangeAmount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Balance = entry.BalanceAfter
	return account, nil
}

// GetAccount retrieves an account by id
func (s *ledgerService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.LedgerRepository().GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}

	return account, nil
}
