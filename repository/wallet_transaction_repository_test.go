package repository

import (
	"context"
	"testing"

	"arena-ledger/domain/entities"
	"arena-ledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletTransactionRepository_InsertPending(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletTransactionRepository(testDB.DB)
	ctx := context.Background()

	entry := testutil.CreateTestTransaction("alice", "MATCH-1", 100)
	inserted, err := repo.InsertPending(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, entities.TransactionStatusPending, entry.Status)

	duplicate := testutil.CreateTestTransaction("bob", "MATCH-1", 999)
	inserted, err = repo.InsertPending(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, inserted)

	require.NoError(t, repo.Complete(ctx, entry.ID, 0, 100))
	assert.Error(t, repo.Complete(ctx, entry.ID, 0, 100), "completing twice must fail")

	stored, err := repo.GetByReference(ctx, "MATCH-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "alice", stored.AccountID)
	assert.Equal(t, entities.TransactionStatusCompleted, stored.Status)
	assert.Equal(t, int64(100), stored.BalanceAfter)
	assert.Equal(t, true, stored.Metadata["test"])
	assert.NoError(t, stored.Validate())

	missing, err := repo.GetByReference(ctx, "MATCH-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWalletTransactionRepository_SumCompleted(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWalletTransactionRepository(testDB.DB)
	ctx := context.Background()

	credit := testutil.CreateTestTransaction("alice", "DEP-1", 300)
	_, err := repo.InsertPending(ctx, credit)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, credit.ID, 0, 300))

	debit := testutil.CreateTestTransaction("alice", "FEE-1", 50)
	debit.Type = entities.TransactionTypeDebit
	_, err = repo.InsertPending(ctx, debit)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, debit.ID, 300, 250))

	// Pending entries never count
	_, err = repo.InsertPending(ctx, testutil.CreateTestTransaction("alice", "DEP-2", 1000))
	require.NoError(t, err)

	coin := testutil.CreateTestTransaction("alice", "REF-1", 40)
	coin.Currency = entities.CurrencyCoin
	_, err = repo.InsertPending(ctx, coin)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, coin.ID, 0, 40))

	cash, err := repo.SumCompleted(ctx, "alice", entities.CurrencyCash)
	require.NoError(t, err)
	assert.Equal(t, int64(250), cash)

	coins, err := repo.SumCompleted(ctx, "alice", entities.CurrencyCoin)
	require.NoError(t, err)
	assert.Equal(t, int64(40), coins)

	none, err := repo.SumCompleted(ctx, "nobody", entities.CurrencyCash)
	require.NoError(t, err)
	assert.Zero(t, none)

	history, err := repo.ListByAccount(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "REF-1", history[0].Reference)
	assert.Equal(t, "DEP-2", history[1].Reference)
}

func TestHouseWalletRepository_Adjust(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewHouseWalletRepository(testDB.DB)
	ctx := context.Background()

	balance, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{}, *balance)

	before, after, err := repo.Adjust(ctx, entities.CurrencyCash, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)
	assert.Equal(t, int64(200), after)

	balance, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Cash: 200}, *balance)
}
