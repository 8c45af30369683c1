package application

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"
)

// ReferralService handles referral codes and first-deposit rewards, one unit of work per call
type ReferralService struct {
	runner *settlementRunner
}

// NewReferralService creates a new referral service
func NewReferralService(uowFactory UnitOfWorkFactory, rewards ReferralRewards, timeout time.Duration) *ReferralService {
	return &ReferralService{
		runner: newSettlementRunner(uowFactory, nil, rewards, timeout),
	}
}

// GetReferralCode returns the user's code, assigning one on first use
func (s *ReferralService) GetReferralCode(ctx context.Context, userID string) (string, error) {
	var code string
	err := s.runner.run(ctx, observability.KindReferral, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		code, err = s.runner.referrals(uow).GetReferralCode(ctx, userID)
		return err
	})
	return code, err
}

// ApplyReferralCode links a user to the owner of code
func (s *ReferralService) ApplyReferralCode(ctx context.Context, userID, code string) (*entities.Referral, error) {
	var referral *entities.Referral
	err := s.runner.run(ctx, observability.KindReferral, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		referral, err = s.runner.referrals(uow).ApplyReferralCode(ctx, userID, code)
		return err
	})
	return referral, err
}

// ProcessFirstDeposit pays the referral rewards for userID at most once
func (s *ReferralService) ProcessFirstDeposit(ctx context.Context, userID string) (*interfaces.ReferralRewardResult, error) {
	var result *interfaces.ReferralRewardResult
	err := s.runner.run(ctx, observability.KindReferral, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = s.runner.referrals(uow).ProcessFirstDeposit(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadySettled {
		observability.GetMetrics().RecordLedgerReplay(observability.KindReferral)
	}
	return result, nil
}

// GetReferral returns the referral recorded for a referred user
func (s *ReferralService) GetReferral(ctx context.Context, userID string) (*entities.Referral, error) {
	var referral *entities.Referral
	err := s.runner.run(ctx, observability.KindReferral, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		referral, err = s.runner.referrals(uow).GetReferral(ctx, userID)
		return err
	})
	return referral, err
}

// ListReferrals returns every referral made by referrerID
func (s *ReferralService) ListReferrals(ctx context.Context, referrerID string) ([]*entities.Referral, error) {
	var referrals []*entities.Referral
	err := s.runner.run(ctx, observability.KindReferral, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		referrals, err = s.runner.referrals(uow).ListReferrals(ctx, referrerID)
		return err
	})
	return referrals, err
}

var _ interfaces.ReferralService = (*ReferralService)(nil)
