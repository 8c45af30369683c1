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

// depositService credits payments that the payment gateway already verified
type depositService struct {
	userRepo       interfaces.UserRepository
	wallet         interfaces.WalletService
	eventPublisher interfaces.EventPublisher
}

// NewDepositService creates a new deposit service
func NewDepositService(
	userRepo interfaces.UserRepository,
	wallet interfaces.WalletService,
	eventPublisher interfaces.EventPublisher,
) interfaces.DepositService {
	return &depositService{
		userRepo:       userRepo,
		wallet:         wallet,
		eventPublisher: eventPublisher,
	}
}

// RecordDeposit credits the payment under its gateway reference and flags the first deposit
func (s *depositService) RecordDeposit(ctx context.Context, req interfaces.DepositRequest) (*interfaces.DepositResult, error) {
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PaymentReference) == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "payment reference is required")
	}
	currency := req.Currency
	if currency == "" {
		currency = entities.CurrencyCash
	}

	entry, err := s.wallet.Credit(ctx, interfaces.LedgerRequest{
		AccountID:   req.UserID,
		Amount:      req.Amount,
		Description: "Deposit",
		Reference:   req.PaymentReference,
		Currency:    currency,
		Metadata:    map[string]any{"source": "payment_gateway"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit deposit %s: %w", req.PaymentReference, err)
	}
	if entry.Replayed {
		return &interfaces.DepositResult{Transaction: entry.Transaction, Replayed: true}, nil
	}

	first, err := s.userRepo.MarkFirstDeposit(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark first deposit for user %s: %w", req.UserID, err)
	}

	if err := s.eventPublisher.Publish(events.DepositConfirmedEvent{
		UserID:       req.UserID,
		Amount:       req.Amount,
		Currency:     currency,
		Reference:    req.PaymentReference,
		FirstDeposit: first,
	}); err != nil {
		log.WithError(err).Error("Failed to publish deposit confirmed event")
	}

	log.WithFields(log.Fields{
		"userID":       req.UserID,
		"amount":       req.Amount,
		"currency":     currency,
		"firstDeposit": first,
	}).Info("Deposit credited")

	return &interfaces.DepositResult{Transaction: entry.Transaction, FirstDeposit: first}, nil
}
