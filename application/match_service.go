package application

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"
)

// MatchService settles head-to-head matches, one unit of work per submission
type MatchService struct {
	runner *settlementRunner
}

// NewMatchService creates a new match service
func NewMatchService(uowFactory UnitOfWorkFactory, games interfaces.GameRegistry, timeout time.Duration) *MatchService {
	return &MatchService{
		runner: newSettlementRunner(uowFactory, games, ReferralRewards{}, timeout),
	}
}

// CreateMatch opens a match with its first player seated
func (s *MatchService) CreateMatch(ctx context.Context, req interfaces.CreateMatchRequest) (*entities.Match, error) {
	var match *entities.Match
	err := s.runner.run(ctx, observability.KindMatch, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		match, err = s.runner.matches(uow).CreateMatch(ctx, req)
		return err
	})
	return match, err
}

// SubmitScore records a player's score and settles the match once both scores are in
func (s *MatchService) SubmitScore(ctx context.Context, req interfaces.SubmitMatchScoreRequest) (*interfaces.MatchResult, error) {
	var result *interfaces.MatchResult
	err := s.runner.run(ctx, observability.KindMatch, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = s.runner.matches(uow).SubmitScore(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadySettled {
		observability.GetMetrics().RecordLedgerReplay(observability.KindMatch)
	}
	return result, nil
}

// GetMatch returns a match and its players
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*entities.Match, error) {
	var match *entities.Match
	err := s.runner.run(ctx, observability.KindMatch, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		match, err = s.runner.matches(uow).GetMatch(ctx, matchID)
		return err
	})
	return match, err
}

var _ interfaces.MatchSettlementService = (*MatchService)(nil)
