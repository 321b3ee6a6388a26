package models

import (
	"time"
)

// PoolAccountID is the ledger account holding the raffle pool.
const PoolAccountID = "pool"

// Account represents a ledger account with a balance
type Account struct {
	ID        string    `db:"id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeEntryFeeIn  TransactionType = "entry_fee_in"
	TransactionTypeEntryFeeOut TransactionType = "entry_fee_out"
	TransactionTypePayoutIn    TransactionType = "payout_in"
	TransactionTypePayoutOut   TransactionType = "payout_out"
)

// LedgerEntry represents a historical balance change on an account
type LedgerEntry struct {
	ID              int64           `db:"id"`
	AccountID       string          `db:"account_id"`
	BalanceBefore   int64           `db:"balance_before"`
	BalanceAfter    int64           `db:"balance_after"`
	ChangeAmount    int64           `db:"change_amount"`
	TransactionType TransactionType `db:"transaction_type"`
	Metadata        map[string]any  `db:"metadata"`
	CreatedAt       time.Time       `db:"created_at"`
}
