package repository

import (
	"context"
	"testing"

	"raffler/models"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_Accounts(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("pool account is seeded", func(t *testing.T) {
		pool, err := repo.GetAccount(ctx, models.PoolAccountID)
		require.NoError(t, err)
		require.NotNil(t, pool)
		assert.Equal(t, int64(0), pool.Balance)
	})

	t.Run("unknown account is nil", func(t *testing.T) {
		account, err := repo.GetAccount(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create if absent is idempotent", func(t *testing.T) {
		require.NoError(t, repo.CreateAccountIfAbsent(ctx, "alice"))
		require.NoError(t, repo.Credit(ctx, "alice", 500))

		// Second create must not reset the balance
		require.NoError(t, repo.CreateAccountIfAbsent(ctx, "alice"))

		account, err := repo.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(500), account.Balance)
	})
}

func TestLedgerRepository_CreditDebit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccountIfAbsent(ctx, "alice"))
	require.NoError(t, repo.Credit(ctx, "alice", 300))

	t.Run("debit within balance", func(t *testing.T) {
		require.NoError(t, repo.Debit(ctx, "alice", 100))

		account, err := repo.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(200), account.Balance)
	})

	t.Run("debit beyond balance", func(t *testing.T) {
		err := repo.Debit(ctx, "alice", 1000)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		// Balance untouched
		account, err := repo.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(200), account.Balance)
	})

	t.Run("debit unknown account", func(t *testing.T) {
		err := repo.Debit(ctx, "ghost", 100)
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
	})

	t.Run("credit unknown account", func(t *testing.T) {
		err := repo.Credit(ctx, "ghost", 100)
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		assert.Error(t, repo.Credit(ctx, "alice", 0))
		assert.Error(t, repo.Debit(ctx, "alice", -5))
	})
}

func TestLedgerRepository_Entries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccountIfAbsent(ctx, "alice"))

	entry := &models.LedgerEntry{
		AccountID:       "alice",
		BalanceBefore:   0,
		BalanceAfter:    500,
		ChangeAmount:    500,
		TransactionType: models.TransactionTypeDeposit,
		Metadata:        map[string]any{"round_number": float64(3)},
	}
	require.NoError(t, repo.RecordEntry(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	second := &models.LedgerEntry{
		AccountID:       "alice",
		BalanceBefore:   500,
		BalanceAfter:    400,
		ChangeAmount:    -100,
		TransactionType: models.TransactionTypeEntryFeeOut,
	}
	require.NoError(t, repo.RecordEntry(ctx, second))

	entries, err := repo.GetEntries(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first
	assert.Equal(t, models.TransactionTypeEntryFeeOut, entries[0].TransactionType)
	assert.Equal(t, models.TransactionTypeDeposit, entries[1].TransactionType)
	assert.Equal(t, float64(3), entries[1].Metadata["round_number"])

	limited, err := repo.GetEntries(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
