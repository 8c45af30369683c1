package application

import (
	"context"
	"fmt"
	"time"

	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// DepositService credits verified payments and then settles any referral they unlock
type DepositService struct {
	runner    *settlementRunner
	referrals interfaces.ReferralService
}

// NewDepositService creates a new deposit service. referrals runs in its own unit of work
// after the deposit commits.
func NewDepositService(uowFactory UnitOfWorkFactory, referrals interfaces.ReferralService, timeout time.Duration) *DepositService {
	return &DepositService{
		runner:    newSettlementRunner(uowFactory, nil, ReferralRewards{}, timeout),
		referrals: referrals,
	}
}

// RecordDeposit credits the payment once per payment reference. A first deposit, or a
// replay of one, triggers referral processing; a failure there is returned so the
// caller retries the whole confirmation, which is a no-op for the deposit itself.
func (s *DepositService) RecordDeposit(ctx context.Context, req interfaces.DepositRequest) (*interfaces.DepositResult, error) {
	var result *interfaces.DepositResult
	err := s.runner.run(ctx, observability.KindDeposit, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = s.runner.deposits(uow).RecordDeposit(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		observability.GetMetrics().RecordLedgerReplay(observability.KindDeposit)
	}
	if !result.FirstDeposit && !result.Replayed {
		return result, nil
	}

	referral, err := s.referrals.ProcessFirstDeposit(ctx, req.UserID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":    req.UserID,
			"reference": req.PaymentReference,
			"error":     err,
		}).Error("Deposit credited but referral processing failed")
		return nil, fmt.Errorf("failed to process referral for deposit %s: %w", req.PaymentReference, err)
	}
	result.Referral = referral
	return result, nil
}

var _ interfaces.DepositService = (*DepositService)(nil)
