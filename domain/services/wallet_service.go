package services

import (
	"context"
	"fmt"
	"strings"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// walletService implements the ledger on top of transaction-scoped repositories
type walletService struct {
	userRepo        interfaces.UserRepository
	transactionRepo interfaces.WalletTransactionRepository
	houseRepo       interfaces.HouseWalletRepository
	eventPublisher  interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(
	userRepo interfaces.UserRepository,
	transactionRepo interfaces.WalletTransactionRepository,
	houseRepo interfaces.HouseWalletRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WalletService {
	return &walletService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		houseRepo:       houseRepo,
		eventPublisher:  eventPublisher,
	}
}

// Credit adds funds to a user's balance, once per reference
func (s *walletService) Credit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	if err := validateLedgerRequest(req, false); err != nil {
		return nil, err
	}
	return s.apply(ctx, req, entities.TransactionTypeCredit)
}

// Debit removes funds from a user's balance, once per reference
func (s *walletService) Debit(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	if err := validateLedgerRequest(req, false); err != nil {
		return nil, err
	}
	return s.apply(ctx, req, entities.TransactionTypeDebit)
}

// CreditHouse adds funds to the house account, once per reference
func (s *walletService) CreditHouse(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	req.AccountID = entities.HouseAccountID
	if err := validateLedgerRequest(req, true); err != nil {
		return nil, err
	}
	return s.apply(ctx, req, entities.TransactionTypeCredit)
}

// apply appends the entry first so the unique reference serializes concurrent
// attempts, then moves the balance and stamps the entry as completed.
func (s *walletService) apply(ctx context.Context, req interfaces.LedgerRequest, txType entities.TransactionType) (*interfaces.LedgerEntryResult, error) {
	entry := &entities.WalletTransaction{
		AccountID:   req.AccountID,
		Type:        txType,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		Status:      entities.TransactionStatusPending,
		Metadata:    req.Metadata,
	}

	inserted, err := s.transactionRepo.InsertPending(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry %s: %w", req.Reference, err)
	}
	if !inserted {
		return s.replay(ctx, req, txType)
	}

	delta := req.Amount
	if txType == entities.TransactionTypeDebit {
		delta = -delta
	}

	var before, after int64
	if req.AccountID == entities.HouseAccountID {
		before, after, err = s.houseRepo.Adjust(ctx, req.Currency, delta)
		if err != nil {
			return nil, fmt.Errorf("failed to adjust house %s balance: %w", req.Currency, err)
		}
	} else {
		if err := s.userRepo.EnsureExists(ctx, req.AccountID); err != nil {
			return nil, fmt.Errorf("failed to ensure user %s: %w", req.AccountID, err)
		}

		var applied bool
		before, after, applied, err = s.userRepo.AdjustBalance(ctx, req.AccountID, req.Currency, delta)
		if err != nil {
			return nil, fmt.Errorf("failed to adjust %s balance for user %s: %w", req.Currency, req.AccountID, err)
		}
		if !applied {
			return nil, entities.NewSettlementError(entities.ErrInsufficientFunds,
				"user %s has insufficient %s for debit of %d", req.AccountID, req.Currency, req.Amount)
		}
	}

	if err := s.transactionRepo.Complete(ctx, entry.ID, before, after); err != nil {
		return nil, fmt.Errorf("failed to complete ledger entry %s: %w", req.Reference, err)
	}
	entry.Status = entities.TransactionStatusCompleted
	entry.BalanceBefore = before
	entry.BalanceAfter = after

	event := events.BalanceChangeEvent{
		AccountID:       entry.AccountID,
		Currency:        entry.Currency,
		OldBalance:      before,
		NewBalance:      after,
		ChangeAmount:    entry.SignedAmount(),
		TransactionType: entry.Type,
		Reference:       entry.Reference,
	}
	log.WithFields(log.Fields{
		"accountID":  event.AccountID,
		"currency":   event.Currency,
		"oldBalance": event.OldBalance,
		"newBalance": event.NewBalance,
		"reference":  event.Reference,
	}).Debug("Publishing BalanceChangeEvent")
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return &interfaces.LedgerEntryResult{Transaction: entry}, nil
}

func (s *walletService) replay(ctx context.Context, req interfaces.LedgerRequest, txType entities.TransactionType) (*interfaces.LedgerEntryResult, error) {
	existing, err := s.transactionRepo.GetByReference(ctx, req.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entry %s: %w", req.Reference, err)
	}
	if existing == nil {
		// The conflicting writer rolled back between our insert and read
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted,
			"ledger entry %s changed concurrently", req.Reference)
	}

	fields := log.Fields{
		"reference": req.Reference,
		"accountID": existing.AccountID,
		"amount":    existing.Amount,
	}
	if existing.AccountID != req.AccountID || existing.Amount != req.Amount ||
		existing.Currency != req.Currency || existing.Type != txType {
		log.WithFields(fields).WithFields(log.Fields{
			"requestedAccountID": req.AccountID,
			"requestedAmount":    req.Amount,
		}).Warn("Ledger reference reused with different parameters, returning original entry")
	} else {
		log.WithFields(fields).Debug("Ledger reference already applied")
	}

	return &interfaces.LedgerEntryResult{Transaction: existing, Replayed: true}, nil
}

// GetBalance returns a user's balances. Unknown users hold nothing.
func (s *walletService) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "user id is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return &entities.Balance{}, nil
	}

	balance := user.Balance()
	return &balance, nil
}

// GetTransactions returns the newest ledger entries of an account
func (s *walletService) GetTransactions(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "account id is required")
	}
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	transactions, err := s.transactionRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for %s: %w", accountID, err)
	}
	return transactions, nil
}

// GetHouseBalance returns the house balances
func (s *walletService) GetHouseBalance(ctx context.Context) (*entities.Balance, error) {
	balance, err := s.houseRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get house balance: %w", err)
	}
	return balance, nil
}

// Reconcile compares each stored balance with the sum of its completed ledger entries
func (s *walletService) Reconcile(ctx context.Context, accountID string) ([]entities.Reconciliation, error) {
	var stored entities.Balance

	if accountID == entities.HouseAccountID {
		house, err := s.GetHouseBalance(ctx)
		if err != nil {
			return nil, err
		}
		stored = *house
	} else {
		user, err := s.userRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user %s: %w", accountID, err)
		}
		if user == nil {
			return nil, entities.NewSettlementError(entities.ErrNotFound, "user %s not found", accountID)
		}
		stored = user.Balance()
	}

	results := make([]entities.Reconciliation, 0, 2)
	for _, currency := range []entities.Currency{entities.CurrencyCash, entities.CurrencyCoin} {
		sum, err := s.transactionRepo.SumCompleted(ctx, accountID, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to sum %s ledger for %s: %w", currency, accountID, err)
		}

		rec := entities.Reconciliation{
			AccountID: accountID,
			Currency:  currency,
			Stored:    stored.Of(currency),
			Ledger:    sum,
		}
		if !rec.Balanced() {
			log.WithFields(log.Fields{
				"accountID": accountID,
				"currency":  currency,
				"stored":    rec.Stored,
				"ledger":    rec.Ledger,
			}).Error("Balance does not match ledger")
		}
		results = append(results, rec)
	}

	return results, nil
}

func validateLedgerRequest(req interfaces.LedgerRequest, house bool) error {
	if strings.TrimSpace(req.AccountID) == "" {
		return entities.NewSettlementError(entities.ErrInvalidInput, "account id is required")
	}
	if !house && req.AccountID == entities.HouseAccountID {
		return entities.NewSettlementError(entities.ErrInvalidInput, "account id %q is reserved", req.AccountID)
	}
	if req.Amount <= 0 {
		return entities.NewSettlementError(entities.ErrInvalidInput, "amount must be positive, got %d", req.Amount)
	}
	if strings.TrimSpace(req.Reference) == "" {
		return entities.NewSettlementError(entities.ErrInvalidInput, "reference is required")
	}
	if !req.Currency.IsValid() {
		return entities.NewSettlementError(entities.ErrInvalidInput, "unknown currency %q", req.Currency)
	}
	return nil
}
