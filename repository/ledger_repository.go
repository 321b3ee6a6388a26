package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the service.LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// GetAccount retrieves an account by id
func (r *LedgerRepository) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	query := `
		SELECT id, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return &account, nil
}

// CreateAccountIfAbsent creates an account with a zero balance if it does
// not already exist
func (r *LedgerRepository) CreateAccountIfAbsent(ctx context.Context, accountID string) error {
	query := `
		INSERT INTO accounts (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to create account %s: %w", accountID, err)
	}

	return nil
}

// Credit adds to an account's balance atomically
func (r *LedgerRepository) Credit(ctx context.Context, accountID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to credit account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}

	return nil
}

// Debit deducts from an account's balance atomically, failing if the
// balance is too low
func (r *LedgerRepository) Debit(ctx context.Context, accountID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		account, err := r.GetAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check account %s: %w", accountID, err)
		}
		if account == nil {
			return fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("%w: account %s has %d, need %d", models.ErrInsufficientFunds, accountID, account.Balance, amount)
	}

	return nil
}

// RecordEntry appends a ledger entry
func (r *LedgerRepository) RecordEntry(ctx context.Context, entry *models.LedgerEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry metadata: %w", err)
	}
	if entry.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	query := `
		INSERT INTO ledger_entries
		(account_id, balance_before, balance_after, change_amount, transaction_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.TransactionType,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for account %s: %w", entry.AccountID, err)
	}

	return nil
}

// GetEntries returns the most recent ledger entries for an account
func (r *LedgerRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, account_id, balance_before, balance_after, change_amount, transaction_type, metadata, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ledger entry metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
