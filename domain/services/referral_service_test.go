package services

import (
	"context"
	"testing"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupReferralServiceMocks() (
	*testhelpers.MockUserRepository,
	*testhelpers.MockReferralRepository,
	*testhelpers.MockWalletService,
	*testhelpers.MockEventPublisher,
) {
	return new(testhelpers.MockUserRepository),
		new(testhelpers.MockReferralRepository),
		new(testhelpers.MockWalletService),
		new(testhelpers.MockEventPublisher)
}

func stringPtr(s string) *string {
	return &s
}

func referredUser(id, referrerID string) *entities.User {
	return &entities.User{ID: id, ReferredBy: stringPtr(referrerID)}
}

func TestReferralService_ProcessFirstDeposit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
	service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)

	userRepo.On("GetByID", ctx, "U").Return(referredUser("U", "R"), nil)
	referralRepo.On("GetByReferredUserForUpdate", ctx, "U").Return(&entities.Referral{
		ID:             3,
		ReferrerID:     "R",
		ReferredUserID: "U",
		ReferralCode:   "ABCD1234",
	}, nil)
	wallet.On("Credit", ctx, mock.MatchedBy(func(req interfaces.LedgerRequest) bool {
		return req.AccountID == "R" && req.Amount == 100 &&
			req.Currency == entities.CurrencyCoin && req.Reference == "REF-R-3"
	})).Return(&interfaces.LedgerEntryResult{}, nil).Once()
	wallet.On("Credit", ctx, mock.MatchedBy(func(req interfaces.LedgerRequest) bool {
		return req.AccountID == "U" && req.Amount == 50 &&
			req.Currency == entities.CurrencyCoin && req.Reference == "REFEREE-U-3"
	})).Return(&interfaces.LedgerEntryResult{}, nil).Once()
	referralRepo.On("MarkRewarded", ctx, int64(3), int64(100), mock.AnythingOfType("time.Time")).Return(true, nil)
	userRepo.On("MarkFirstDeposit", ctx, "U").Return(false, nil)
	publisher.On("Publish", mock.AnythingOfType("events.ReferralRewardedEvent")).Return(nil)

	result, err := service.ProcessFirstDeposit(ctx, "U")

	require.NoError(t, err)
	assert.True(t, result.Rewarded)
	assert.False(t, result.AlreadySettled)
	assert.Equal(t, int64(100), result.ReferrerReward)
	assert.Equal(t, int64(50), result.RefereeReward)
	assert.True(t, result.Referral.RewardGiven)
	assert.WithinDuration(t, time.Now(), *result.Referral.FirstDepositAt, time.Minute)

	wallet.AssertExpectations(t)
	referralRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReferralService_ProcessFirstDeposit_NoReward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupMocks     func(*testhelpers.MockUserRepository, *testhelpers.MockReferralRepository)
		alreadySettled bool
		wantCode       entities.ErrorCode
	}{
		{
			name: "already rewarded",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByID", mock.Anything, "U").Return(referredUser("U", "R"), nil)
				referralRepo.On("GetByReferredUserForUpdate", mock.Anything, "U").
					Return(&entities.Referral{ID: 3, ReferrerID: "R", ReferredUserID: "U", RewardGiven: true}, nil)
			},
			alreadySettled: true,
		},
		{
			name: "user without referrer",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByID", mock.Anything, "U").Return(&entities.User{ID: "U"}, nil)
			},
		},
		{
			name: "referrer without referral record",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByID", mock.Anything, "U").Return(referredUser("U", "R"), nil)
				referralRepo.On("GetByReferredUserForUpdate", mock.Anything, "U").Return(nil, nil)
			},
		},
		{
			name: "unknown user",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByID", mock.Anything, "U").Return(nil, nil)
			},
			wantCode: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
			tt.setupMocks(userRepo, referralRepo)
			service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)

			result, err := service.ProcessFirstDeposit(context.Background(), "U")

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, entities.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.False(t, result.Rewarded)
				assert.Equal(t, tt.alreadySettled, result.AlreadySettled)
			}
			wallet.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
			referralRepo.AssertNotCalled(t, "MarkRewarded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestReferralService_ProcessFirstDeposit_LostRaceAborts(t *testing.T) {
	t.Parallel()

	userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
	service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 0)

	userRepo.On("GetByID", mock.Anything, "U").Return(referredUser("U", "R"), nil)
	referralRepo.On("GetByReferredUserForUpdate", mock.Anything, "U").
		Return(&entities.Referral{ID: 3, ReferrerID: "R", ReferredUserID: "U"}, nil)
	wallet.On("Credit", mock.Anything, mock.Anything).Return(&interfaces.LedgerEntryResult{}, nil).Once()
	referralRepo.On("MarkRewarded", mock.Anything, int64(3), int64(100), mock.Anything).Return(false, nil)

	_, err := service.ProcessFirstDeposit(context.Background(), "U")

	assert.True(t, entities.IsSettlementError(err, entities.ErrTransactionAborted))
	wallet.AssertNumberOfCalls(t, "Credit", 1)
}

func TestReferralService_ProcessFirstDeposit_RefereeCreditFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
	service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)

	userRepo.On("GetByID", ctx, "U").Return(referredUser("U", "R"), nil)
	referralRepo.On("GetByReferredUserForUpdate", ctx, "U").
		Return(&entities.Referral{ID: 3, ReferrerID: "R", ReferredUserID: "U"}, nil)
	wallet.On("Credit", ctx, mock.MatchedBy(func(req interfaces.LedgerRequest) bool {
		return req.AccountID == "R"
	})).Return(&interfaces.LedgerEntryResult{}, nil).Once()
	storeErr := entities.NewSettlementError(entities.ErrStoreUnavailable, "connection reset")
	wallet.On("Credit", ctx, mock.MatchedBy(func(req interfaces.LedgerRequest) bool {
		return req.AccountID == "U"
	})).Return(nil, storeErr).Once()

	result, err := service.ProcessFirstDeposit(ctx, "U")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, storeErr)
	referralRepo.AssertNotCalled(t, "MarkRewarded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "MarkFirstDeposit", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
	wallet.AssertExpectations(t)
}

func TestReferralService_ApplyReferralCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		userID     string
		code       string
		setupMocks func(*testhelpers.MockUserRepository, *testhelpers.MockReferralRepository)
		wantCode   entities.ErrorCode
	}{
		{
			name:   "links new user",
			userID: "U",
			code:   "abcd1234",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByReferralCode", mock.Anything, "ABCD1234").Return(&entities.User{ID: "R"}, nil)
				userRepo.On("EnsureExists", mock.Anything, "U").Return(nil)
				userRepo.On("GetByIDForUpdate", mock.Anything, "U").Return(&entities.User{ID: "U"}, nil)
				userRepo.On("SetReferredBy", mock.Anything, "U", "R").Return(true, nil)
				referralRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entities.Referral) bool {
					return r.ReferrerID == "R" && r.ReferredUserID == "U" && r.ReferralCode == "ABCD1234"
				})).Return(nil)
			},
		},
		{
			name:   "unknown code",
			userID: "U",
			code:   "NOPE0000",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByReferralCode", mock.Anything, "NOPE0000").Return(nil, nil)
			},
			wantCode: entities.ErrNotFound,
		},
		{
			name:   "own code",
			userID: "R",
			code:   "ABCD1234",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByReferralCode", mock.Anything, "ABCD1234").Return(&entities.User{ID: "R"}, nil)
			},
			wantCode: entities.ErrInvalidInput,
		},
		{
			name:   "already referred",
			userID: "U",
			code:   "ABCD1234",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByReferralCode", mock.Anything, "ABCD1234").Return(&entities.User{ID: "R"}, nil)
				userRepo.On("EnsureExists", mock.Anything, "U").Return(nil)
				userRepo.On("GetByIDForUpdate", mock.Anything, "U").Return(referredUser("U", "X"), nil)
			},
			wantCode: entities.ErrInvalidInput,
		},
		{
			name:   "after first deposit",
			userID: "U",
			code:   "ABCD1234",
			setupMocks: func(userRepo *testhelpers.MockUserRepository, referralRepo *testhelpers.MockReferralRepository) {
				userRepo.On("GetByReferralCode", mock.Anything, "ABCD1234").Return(&entities.User{ID: "R"}, nil)
				userRepo.On("EnsureExists", mock.Anything, "U").Return(nil)
				userRepo.On("GetByIDForUpdate", mock.Anything, "U").
					Return(&entities.User{ID: "U", HasMadeFirstDeposit: true}, nil)
			},
			wantCode: entities.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
			tt.setupMocks(userRepo, referralRepo)
			service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)

			referral, err := service.ApplyReferralCode(context.Background(), tt.userID, tt.code)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, entities.CodeOf(err))
				referralRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "R", referral.ReferrerID)
			referralRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_GetReferralCode(t *testing.T) {
	t.Parallel()

	t.Run("returns existing code", func(t *testing.T) {
		t.Parallel()

		userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
		service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)
		userRepo.On("EnsureExists", mock.Anything, "U").Return(nil)
		userRepo.On("GetByIDForUpdate", mock.Anything, "U").
			Return(&entities.User{ID: "U", ReferralCode: stringPtr("KEEPME01")}, nil)

		code, err := service.GetReferralCode(context.Background(), "U")

		require.NoError(t, err)
		assert.Equal(t, "KEEPME01", code)
		userRepo.AssertNotCalled(t, "AssignReferralCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("assigns a code on first use", func(t *testing.T) {
		t.Parallel()

		userRepo, referralRepo, wallet, publisher := setupReferralServiceMocks()
		service := NewReferralService(userRepo, referralRepo, wallet, publisher, 100, 50)
		userRepo.On("EnsureExists", mock.Anything, "U").Return(nil)
		userRepo.On("GetByIDForUpdate", mock.Anything, "U").Return(&entities.User{ID: "U"}, nil)
		userRepo.On("AssignReferralCode", mock.Anything, "U", mock.AnythingOfType("string")).Return(nil)

		code, err := service.GetReferralCode(context.Background(), "U")

		require.NoError(t, err)
		assert.Len(t, code, referralCodeLength)
		assert.Regexp(t, "^[0-9A-F]+$", code)
	})
}
