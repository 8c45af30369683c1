package repository

import (
	"context"
	"testing"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReferralRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedUser(t, testDB.DB, "R", 0, 0)
	testutil.SeedUser(t, testDB.DB, "U1", 0, 0)
	testutil.SeedUser(t, testDB.DB, "U2", 0, 0)

	first := &entities.Referral{ReferrerID: "R", ReferredUserID: "U1", ReferralCode: "CODE"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.True(t, first.IsRewardPending())

	require.NoError(t, repo.Create(ctx, &entities.Referral{ReferrerID: "R", ReferredUserID: "U2", ReferralCode: "CODE"}))
	assert.Error(t, repo.Create(ctx, &entities.Referral{ReferrerID: "R", ReferredUserID: "U1", ReferralCode: "CODE"}),
		"a user is referred at most once")

	listed, err := repo.ListByReferrer(ctx, "R")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	depositAt := time.Now().UTC().Truncate(time.Microsecond)
	marked, err := repo.MarkRewarded(ctx, first.ID, 100, depositAt)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.MarkRewarded(ctx, first.ID, 100, depositAt)
	require.NoError(t, err)
	assert.False(t, marked)

	stored, err := repo.GetByReferredUserForUpdate(ctx, "U1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.RewardGiven)
	assert.Equal(t, int64(100), stored.RewardAmount)
	require.NotNil(t, stored.FirstDepositAt)
	assert.True(t, depositAt.Equal(*stored.FirstDepositAt))

	none, err := repo.GetByReferredUser(ctx, "R")
	require.NoError(t, err)
	assert.Nil(t, none)
}
