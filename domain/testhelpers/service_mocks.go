package testhelpers

import (
	"context"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Credit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.LedgerEntryResult), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.LedgerEntryResult), args.Error(1)
}

func (m *MockWalletService) CreditHouse(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.LedgerEntryResult), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockWalletService) GetTransactions(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) GetHouseBalance(ctx context.Context) (*entities.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockWalletService) Reconcile(ctx context.Context, accountID string) ([]entities.Reconciliation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Reconciliation), args.Error(1)
}

// CreditedEntry builds the result a successful credit returns
func CreditedEntry(req interfaces.LedgerRequest, before int64) *interfaces.LedgerEntryResult {
	return &interfaces.LedgerEntryResult{
		Transaction: &entities.WalletTransaction{
			AccountID:     req.AccountID,
			Type:          entities.TransactionTypeCredit,
			Currency:      req.Currency,
			Amount:        req.Amount,
			Description:   req.Description,
			Reference:     req.Reference,
			Status:        entities.TransactionStatusCompleted,
			BalanceBefore: before,
			BalanceAfter:  before + req.Amount,
		},
	}
}

// MockMatchSettlementService is a mock implementation of MatchSettlementService
type MockMatchSettlementService struct {
	mock.Mock
}

func (m *MockMatchSettlementService) CreateMatch(ctx context.Context, req interfaces.CreateMatchRequest) (*entities.Match, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Match), args.Error(1)
}

func (m *MockMatchSettlementService) SubmitScore(ctx context.Context, req interfaces.SubmitMatchScoreRequest) (*interfaces.MatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.MatchResult), args.Error(1)
}

func (m *MockMatchSettlementService) GetMatch(ctx context.Context, matchID string) (*entities.Match, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Match), args.Error(1)
}

// MockTournamentSettlementService is a mock implementation of TournamentSettlementService
type MockTournamentSettlementService struct {
	mock.Mock
}

func (m *MockTournamentSettlementService) CreateTournament(ctx context.Context, req interfaces.CreateTournamentRequest) (*entities.Tournament, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentSettlementService) StartTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentSettlementService) SubmitScore(ctx context.Context, req interfaces.SubmitTournamentScoreRequest) (*interfaces.TournamentScoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TournamentScoreResult), args.Error(1)
}

func (m *MockTournamentSettlementService) CloseTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, bool, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Tournament), args.Bool(1), args.Error(2)
}

func (m *MockTournamentSettlementService) DistributePrizes(ctx context.Context, tournamentID int64) (*interfaces.PrizeDistributionResult, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.PrizeDistributionResult), args.Error(1)
}

func (m *MockTournamentSettlementService) GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentSettlementService) GetLeaderboard(ctx context.Context, tournamentID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, tournamentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockReferralService is a mock implementation of ReferralService
type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) GetReferralCode(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockReferralService) ApplyReferralCode(ctx context.Context, userID, code string) (*entities.Referral, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Referral), args.Error(1)
}

func (m *MockReferralService) ProcessFirstDeposit(ctx context.Context, userID string) (*interfaces.ReferralRewardResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ReferralRewardResult), args.Error(1)
}

func (m *MockReferralService) GetReferral(ctx context.Context, userID string) (*entities.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Referral), args.Error(1)
}

func (m *MockReferralService) ListReferrals(ctx context.Context, referrerID string) ([]*entities.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Referral), args.Error(1)
}

// MockDepositService is a mock implementation of DepositService
type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) RecordDeposit(ctx context.Context, req interfaces.DepositRequest) (*interfaces.DepositResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.DepositResult), args.Error(1)
}
