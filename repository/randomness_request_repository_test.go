package repository

import (
	"context"
	"testing"

	"raffler/models"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomnessRequestRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRandomnessRequestRepository(testDB.DB)
	ctx := context.Background()

	request := testutil.CreateTestRequest("req-1", 0)
	require.NoError(t, repo.Create(ctx, request))
	assert.Equal(t, models.RandomnessRequestStatusPending, request.Status)
	assert.False(t, request.CreatedAt.IsZero())

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestRequest("req-1", 0))
		assert.Error(t, err)
	})
}

func TestRandomnessRequestRepository_Get(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRandomnessRequestRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown id is nil", func(t *testing.T) {
		request, err := repo.Get(ctx, "req-missing")
		require.NoError(t, err)
		assert.Nil(t, request)
	})

	t.Run("existing request", func(t *testing.T) {
		created := testutil.CreateTestRequest("req-2", 4)
		require.NoError(t, repo.Create(ctx, created))

		request, err := repo.Get(ctx, "req-2")
		require.NoError(t, err)
		require.NotNil(t, request)
		assert.Equal(t, int64(4), request.RoundNumber)
		assert.Equal(t, models.RandomnessRequestStatusPending, request.Status)
		assert.Nil(t, request.FulfilledValue)
		assert.Nil(t, request.WinnerID)
		assert.Nil(t, request.FulfilledAt)
	})
}

func TestRandomnessRequestRepository_MarkFulfilled(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRandomnessRequestRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestRequest("req-3", 7)))

	t.Run("pending request", func(t *testing.T) {
		err := repo.MarkFulfilled(ctx, "req-3", "42", "alice")
		require.NoError(t, err)

		request, err := repo.Get(ctx, "req-3")
		require.NoError(t, err)
		assert.Equal(t, models.RandomnessRequestStatusFulfilled, request.Status)
		require.NotNil(t, request.FulfilledValue)
		assert.Equal(t, "42", *request.FulfilledValue)
		require.NotNil(t, request.WinnerID)
		assert.Equal(t, "alice", *request.WinnerID)
		require.NotNil(t, request.FulfilledAt)
	})

	t.Run("replay rejected", func(t *testing.T) {
		err := repo.MarkFulfilled(ctx, "req-3", "42", "alice")
		assert.ErrorIs(t, err, models.ErrUnknownRequest)
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		err := repo.MarkFulfilled(ctx, "req-never", "1", "bob")
		assert.ErrorIs(t, err, models.ErrUnknownRequest)
	})
}
