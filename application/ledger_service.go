package application

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"
)

// LedgerService exposes the wallet ledger, one unit of work per call
type LedgerService struct {
	runner *settlementRunner
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, timeout time.Duration) *LedgerService {
	return &LedgerService{
		runner: newSettlementRunner(uowFactory, nil, ReferralRewards{}, timeout),
	}
}

// Credit adds funds to a user's balance, once per reference
func (s *LedgerService) Credit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	return s.apply(ctx, func(ctx context.Context, wallet interfaces.WalletService) (*interfaces.LedgerEntryResult, error) {
		return wallet.Credit(ctx, req)
	})
}

// Debit removes funds from a user's balance, once per reference
func (s *LedgerService) Debit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	return s.apply(ctx, func(ctx context.Context, wallet interfaces.WalletService) (*interfaces.LedgerEntryResult, error) {
		return wallet.Debit(ctx, req)
	})
}

// CreditHouse credits the house account
func (s *LedgerService) CreditHouse(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	return s.apply(ctx, func(ctx context.Context, wallet interfaces.WalletService) (*interfaces.LedgerEntryResult, error) {
		return wallet.CreditHouse(ctx, req)
	})
}

func (s *LedgerService) apply(
	ctx context.Context,
	op func(context.Context, interfaces.WalletService) (*interfaces.LedgerEntryResult, error),
) (*interfaces.LedgerEntryResult, error) {
	var result *interfaces.LedgerEntryResult
	err := s.runner.run(ctx, observability.KindLedger, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = op(ctx, s.runner.wallet(uow))
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Replayed {
		observability.GetMetrics().RecordLedgerReplay(observability.KindLedger)
	}
	return result, nil
}

// GetBalance returns a user's cash and coin balances
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	var balance *entities.Balance
	err := s.runner.run(ctx, observability.KindLedger, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		balance, err = s.runner.wallet(uow).GetBalance(ctx, userID)
		return err
	})
	return balance, err
}

// GetTransactions returns an account's ledger entries, newest first
func (s *LedgerService) GetTransactions(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error) {
	var transactions []*entities.WalletTransaction
	err := s.runner.run(ctx, observability.KindLedger, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		transactions, err = s.runner.wallet(uow).GetTransactions(ctx, accountID, limit)
		return err
	})
	return transactions, err
}

// GetHouseBalance returns the house balances
func (s *LedgerService) GetHouseBalance(ctx context.Context) (*entities.Balance, error) {
	var balance *entities.Balance
	err := s.runner.run(ctx, observability.KindLedger, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		balance, err = s.runner.wallet(uow).GetHouseBalance(ctx)
		return err
	})
	return balance, err
}

// Reconcile compares stored balances with the ledger
func (s *LedgerService) Reconcile(ctx context.Context, accountID string) ([]entities.Reconciliation, error) {
	var results []entities.Reconciliation
	err := s.runner.run(ctx, observability.KindReconcile, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		results, err = s.runner.wallet(uow).Reconcile(ctx, accountID)
		return err
	})
	return results, err
}

var _ interfaces.WalletService = (*LedgerService)(nil)
