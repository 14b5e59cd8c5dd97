//go:build integration

package db_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haeli05/4626/internal/types"
	"github.com/haeli05/4626/internal/vault"
)

func TestAsyncOperation(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	pending := vault.AsyncOperation{
		ID:        2,
		User:      gofakeit.UUID(),
		Amount:    sdkmath.NewInt(int64(gofakeit.Uint32())),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Kind:      types.OperationDeposit,
	}

	t.Run("upsert and get", func(t *testing.T) {
		// slot 1 was completed: only its id survives
		require.NoError(t, testDB.UpsertAsyncOperation(ctx, 1, vault.AsyncOperation{}))
		require.NoError(t, testDB.UpsertAsyncOperation(ctx, 2, pending))

		ops, err := testDB.GetAsyncOperations(ctx)
		require.NoError(t, err)
		require.Len(t, ops, 2)

		assert.False(t, ops[0].Pending())
		assert.True(t, ops[0].Amount.IsZero())

		assert.Equal(t, pending, ops[1])
		assert.True(t, ops[1].Pending())
	})

	t.Run("completion zeroes the slot", func(t *testing.T) {
		require.NoError(t, testDB.UpsertAsyncOperation(ctx, 2, vault.AsyncOperation{}))

		ops, err := testDB.GetAsyncOperations(ctx)
		require.NoError(t, err)
		require.Len(t, ops, 2)
		assert.False(t, ops[1].Pending())
	})
}
