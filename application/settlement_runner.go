package application

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/domain/services"
	"arena-ledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ReferralRewards are the coin amounts paid on a referred user's first deposit
type ReferralRewards struct {
	Referrer int64
	Referee  int64
}

// settlementRunner runs one unit of work per operation, with a deadline, and
// builds the domain services on top of that unit of work's repositories
type settlementRunner struct {
	uowFactory UnitOfWorkFactory
	games      interfaces.GameRegistry
	rewards    ReferralRewards
	timeout    time.Duration
}

func newSettlementRunner(uowFactory UnitOfWorkFactory, games interfaces.GameRegistry, rewards ReferralRewards, timeout time.Duration) *settlementRunner {
	return &settlementRunner{
		uowFactory: uowFactory,
		games:      games,
		rewards:    rewards,
		timeout:    timeout,
	}
}

// run executes fn inside a fresh unit of work. Any error rolls the work back and
// buffered events are dropped; on success the transaction commits and events flush.
func (r *settlementRunner) run(ctx context.Context, kind string, fn func(ctx context.Context, uow UnitOfWork) error) (err error) {
	done := observability.GetMetrics().MeasureSettlement(kind)
	defer func() {
		if err != nil {
			done(observability.OutcomeError)
		} else {
			done(observability.OutcomeSuccess)
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return classifyStoreError(err)
	}
	defer func() {
		if err != nil {
			if rbErr := uow.Rollback(); rbErr != nil {
				log.WithFields(log.Fields{
					"kind":  kind,
					"error": rbErr,
				}).Warn("Failed to roll back settlement")
			}
		}
	}()

	if err := fn(ctx, uow); err != nil {
		logSettlementFailure(kind, err)
		return classifyStoreError(err)
	}

	if err := uow.Commit(); err != nil {
		logSettlementFailure(kind, err)
		return classifyStoreError(err)
	}
	return nil
}

func logSettlementFailure(kind string, err error) {
	entry := log.WithFields(log.Fields{
		"kind":  kind,
		"error": err,
	})
	switch entities.CodeOf(err) {
	case entities.ErrInvalidInput, entities.ErrNotFound, entities.ErrInsufficientFunds:
		entry.Debug("Settlement rejected")
	default:
		entry.Error("Settlement failed")
	}
}

func (r *settlementRunner) wallet(uow UnitOfWork) interfaces.WalletService {
	return services.NewWalletService(
		uow.UserRepository(),
		uow.WalletTransactionRepository(),
		uow.HouseWalletRepository(),
		uow.EventBus(),
	)
}

func (r *settlementRunner) matches(uow UnitOfWork) interfaces.MatchSettlementService {
	return services.NewMatchSettlementService(
		uow.MatchRepository(),
		r.wallet(uow),
		r.games,
		uow.EventBus(),
	)
}

func (r *settlementRunner) tournaments(uow UnitOfWork) interfaces.TournamentSettlementService {
	return services.NewTournamentSettlementService(
		uow.TournamentRepository(),
		uow.ScoreRepository(),
		r.wallet(uow),
		r.games,
		uow.EventBus(),
	)
}

func (r *settlementRunner) referrals(uow UnitOfWork) interfaces.ReferralService {
	return services.NewReferralService(
		uow.UserRepository(),
		uow.ReferralRepository(),
		r.wallet(uow),
		uow.EventBus(),
		r.rewards.Referrer,
		r.rewards.Referee,
	)
}

func (r *settlementRunner) deposits(uow UnitOfWork) interfaces.DepositService {
	return services.NewDepositService(
		uow.UserRepository(),
		r.wallet(uow),
		uow.EventBus(),
	)
}
