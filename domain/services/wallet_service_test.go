package services

import (
	"context"
	"errors"
	"testing"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"
	"arena-ledger/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupWalletServiceMocks() (
	*testhelpers.MockUserRepository,
	*testhelpers.MockWalletTransactionRepository,
	*testhelpers.MockHouseWalletRepository,
	*testhelpers.MockEventPublisher,
) {
	return new(testhelpers.MockUserRepository),
		new(testhelpers.MockWalletTransactionRepository),
		new(testhelpers.MockHouseWalletRepository),
		new(testhelpers.MockEventPublisher)
}

func creditRequest(accountID string, amount int64, reference string) interfaces.LedgerRequest {
	return interfaces.LedgerRequest{
		AccountID:   accountID,
		Amount:      amount,
		Description: "test credit",
		Reference:   reference,
		Currency:    entities.CurrencyCash,
	}
}

func TestWalletService_Credit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
	service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

	txRepo.On("InsertPending", ctx, mock.MatchedBy(func(tx *entities.WalletTransaction) bool {
		return tx.AccountID == "player-b" && tx.Amount == 100 &&
			tx.Type == entities.TransactionTypeCredit && tx.Status == entities.TransactionStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.WalletTransaction).ID = 7
	}).Return(true, nil)
	userRepo.On("EnsureExists", ctx, "player-b").Return(nil)
	userRepo.On("AdjustBalance", ctx, "player-b", entities.CurrencyCash, int64(100)).
		Return(int64(50), int64(150), true, nil)
	txRepo.On("Complete", ctx, int64(7), int64(50), int64(150)).Return(nil)
	publisher.On("Publish", events.BalanceChangeEvent{
		AccountID:       "player-b",
		Currency:        entities.CurrencyCash,
		OldBalance:      50,
		NewBalance:      150,
		ChangeAmount:    100,
		TransactionType: entities.TransactionTypeCredit,
		Reference:       "MATCH-m1",
	}).Return(nil)

	result, err := service.Credit(ctx, creditRequest("player-b", 100, "MATCH-m1"))

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, entities.TransactionStatusCompleted, result.Transaction.Status)
	assert.Equal(t, int64(50), result.Transaction.BalanceBefore)
	assert.Equal(t, int64(150), result.Transaction.BalanceAfter)
	assert.NoError(t, result.Transaction.Validate())

	userRepo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestWalletService_Credit_ReplayedReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request interfaces.LedgerRequest
	}{
		{
			name:    "identical retry",
			request: creditRequest("player-b", 100, "MATCH-m1"),
		},
		{
			name:    "reference reused with a different amount",
			request: creditRequest("player-b", 999, "MATCH-m1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
			service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

			original := &entities.WalletTransaction{
				ID:            7,
				AccountID:     "player-b",
				Type:          entities.TransactionTypeCredit,
				Currency:      entities.CurrencyCash,
				Amount:        100,
				Reference:     "MATCH-m1",
				Status:        entities.TransactionStatusCompleted,
				BalanceBefore: 50,
				BalanceAfter:  150,
			}
			txRepo.On("InsertPending", ctx, mock.Anything).Return(false, nil)
			txRepo.On("GetByReference", ctx, "MATCH-m1").Return(original, nil)

			result, err := service.Credit(ctx, tt.request)

			require.NoError(t, err)
			assert.True(t, result.Replayed)
			assert.Same(t, original, result.Transaction)

			userRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			txRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestWalletService_Credit_ConflictingWriterRolledBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
	service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

	txRepo.On("InsertPending", ctx, mock.Anything).Return(false, nil)
	txRepo.On("GetByReference", ctx, "MATCH-m1").Return(nil, nil)

	_, err := service.Credit(ctx, creditRequest("player-b", 100, "MATCH-m1"))

	require.Error(t, err)
	assert.True(t, entities.IsSettlementError(err, entities.ErrTransactionAborted))
}

func TestWalletService_Debit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		amount     int64
		setupMocks func(*testhelpers.MockUserRepository, *testhelpers.MockWalletTransactionRepository, *testhelpers.MockEventPublisher)
		wantCode   entities.ErrorCode
		wantAfter  int64
	}{
		{
			name:   "sufficient funds",
			amount: 30,
			setupMocks: func(userRepo *testhelpers.MockUserRepository, txRepo *testhelpers.MockWalletTransactionRepository, publisher *testhelpers.MockEventPublisher) {
				txRepo.On("InsertPending", mock.Anything, mock.Anything).Return(true, nil)
				userRepo.On("EnsureExists", mock.Anything, "player-a").Return(nil)
				userRepo.On("AdjustBalance", mock.Anything, "player-a", entities.CurrencyCash, int64(-30)).
					Return(int64(50), int64(20), true, nil)
				txRepo.On("Complete", mock.Anything, mock.Anything, int64(50), int64(20)).Return(nil)
				publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
			},
			wantAfter: 20,
		},
		{
			name:   "insufficient funds",
			amount: 80,
			setupMocks: func(userRepo *testhelpers.MockUserRepository, txRepo *testhelpers.MockWalletTransactionRepository, publisher *testhelpers.MockEventPublisher) {
				txRepo.On("InsertPending", mock.Anything, mock.Anything).Return(true, nil)
				userRepo.On("EnsureExists", mock.Anything, "player-a").Return(nil)
				userRepo.On("AdjustBalance", mock.Anything, "player-a", entities.CurrencyCash, int64(-80)).
					Return(int64(0), int64(0), false, nil)
			},
			wantCode: entities.ErrInsufficientFunds,
		},
		{
			name:   "store failure is surfaced",
			amount: 30,
			setupMocks: func(userRepo *testhelpers.MockUserRepository, txRepo *testhelpers.MockWalletTransactionRepository, publisher *testhelpers.MockEventPublisher) {
				txRepo.On("InsertPending", mock.Anything, mock.Anything).Return(false, errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
			tt.setupMocks(userRepo, txRepo, publisher)
			service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

			result, err := service.Debit(context.Background(), creditRequest("player-a", tt.amount, "WAGER-1"))

			switch {
			case tt.wantCode != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, entities.CodeOf(err))
			case tt.wantAfter == 0:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection reset")
			default:
				require.NoError(t, err)
				assert.Equal(t, entities.TransactionTypeDebit, result.Transaction.Type)
				assert.Equal(t, tt.wantAfter, result.Transaction.BalanceAfter)
				assert.Equal(t, int64(-tt.amount), result.Transaction.SignedAmount())
			}

			publisher.AssertExpectations(t)
			txRepo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
		})
	}
}

func TestWalletService_CreditHouse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
	service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

	txRepo.On("InsertPending", ctx, mock.MatchedBy(func(tx *entities.WalletTransaction) bool {
		return tx.AccountID == entities.HouseAccountID
	})).Return(true, nil)
	houseRepo.On("Adjust", ctx, entities.CurrencyCoin, int64(200)).Return(int64(0), int64(200), nil)
	txRepo.On("Complete", ctx, mock.Anything, int64(0), int64(200)).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)

	result, err := service.CreditHouse(ctx, interfaces.LedgerRequest{
		AccountID: "ignored",
		Amount:    200,
		Reference: "TOURNAMENT-1-HOUSE",
		Currency:  entities.CurrencyCoin,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.HouseAccountID, result.Transaction.AccountID)
	userRepo.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything)
	houseRepo.AssertExpectations(t)
}

func TestWalletService_ValidatesRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request interfaces.LedgerRequest
	}{
		{name: "missing account", request: creditRequest("", 10, "REF-1")},
		{name: "house account", request: creditRequest(entities.HouseAccountID, 10, "REF-1")},
		{name: "zero amount", request: creditRequest("player-a", 0, "REF-1")},
		{name: "negative amount", request: creditRequest("player-a", -5, "REF-1")},
		{name: "missing reference", request: creditRequest("player-a", 10, "  ")},
		{
			name: "unknown currency",
			request: interfaces.LedgerRequest{
				AccountID: "player-a",
				Amount:    10,
				Reference: "REF-1",
				Currency:  "gems",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
			service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

			_, err := service.Credit(context.Background(), tt.request)

			require.Error(t, err)
			assert.True(t, entities.IsSettlementError(err, entities.ErrInvalidInput))
			txRepo.AssertNotCalled(t, "InsertPending", mock.Anything, mock.Anything)
		})
	}
}

func TestWalletService_GetBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
	service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

	userRepo.On("GetByID", ctx, "known").Return(&entities.User{ID: "known", Cash: 40, Coin: 7}, nil)
	userRepo.On("GetByID", ctx, "unknown").Return(nil, nil)

	balance, err := service.GetBalance(ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Cash: 40, Coin: 7}, *balance)

	balance, err = service.GetBalance(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{}, *balance)
}

func TestWalletService_GetTransactions_ClampsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
	service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

	txRepo.On("ListByAccount", ctx, "player-a", defaultTransactionLimit).Return([]*entities.WalletTransaction{}, nil).Once()
	txRepo.On("ListByAccount", ctx, "player-a", maxTransactionLimit).Return([]*entities.WalletTransaction{}, nil).Once()

	_, err := service.GetTransactions(ctx, "player-a", 0)
	require.NoError(t, err)
	_, err = service.GetTransactions(ctx, "player-a", 10000)
	require.NoError(t, err)

	txRepo.AssertExpectations(t)
}

func TestWalletService_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("balanced user", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
		service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

		userRepo.On("GetByID", ctx, "player-a").Return(&entities.User{ID: "player-a", Cash: 100, Coin: 50}, nil)
		txRepo.On("SumCompleted", ctx, "player-a", entities.CurrencyCash).Return(int64(100), nil)
		txRepo.On("SumCompleted", ctx, "player-a", entities.CurrencyCoin).Return(int64(50), nil)

		results, err := service.Reconcile(ctx, "player-a")

		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, rec := range results {
			assert.True(t, rec.Balanced(), "currency %s", rec.Currency)
		}
	})

	t.Run("house drift is reported", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
		service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

		houseRepo.On("Get", ctx).Return(&entities.Balance{Cash: 300, Coin: 0}, nil)
		txRepo.On("SumCompleted", ctx, entities.HouseAccountID, entities.CurrencyCash).Return(int64(200), nil)
		txRepo.On("SumCompleted", ctx, entities.HouseAccountID, entities.CurrencyCoin).Return(int64(0), nil)

		results, err := service.Reconcile(ctx, entities.HouseAccountID)

		require.NoError(t, err)
		assert.False(t, results[0].Balanced())
		assert.True(t, results[1].Balanced())
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		userRepo, txRepo, houseRepo, publisher := setupWalletServiceMocks()
		service := NewWalletService(userRepo, txRepo, houseRepo, publisher)

		userRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

		_, err := service.Reconcile(ctx, "ghost")
		assert.True(t, entities.IsSettlementError(err, entities.ErrNotFound))
	})
}
