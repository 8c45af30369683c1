package application

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"
)

// TournamentService runs the tournament lifecycle, one unit of work per call
type TournamentService struct {
	runner *settlementRunner
}

// NewTournamentService creates a new tournament service
func NewTournamentService(uowFactory UnitOfWorkFactory, games interfaces.GameRegistry, timeout time.Duration) *TournamentService {
	return &TournamentService{
		runner: newSettlementRunner(uowFactory, games, ReferralRewards{}, timeout),
	}
}

// CreateTournament schedules a tournament
func (s *TournamentService) CreateTournament(ctx context.Context, req interfaces.CreateTournamentRequest) (*entities.Tournament, error) {
	var tournament *entities.Tournament
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		tournament, err = s.runner.tournaments(uow).CreateTournament(ctx, req)
		return err
	})
	return tournament, err
}

// StartTournament opens an upcoming tournament for score submissions
func (s *TournamentService) StartTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	var tournament *entities.Tournament
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		tournament, err = s.runner.tournaments(uow).StartTournament(ctx, tournamentID)
		return err
	})
	return tournament, err
}

// SubmitScore keeps the participant's best score
func (s *TournamentService) SubmitScore(ctx context.Context, req interfaces.SubmitTournamentScoreRequest) (*interfaces.TournamentScoreResult, error) {
	var result *interfaces.TournamentScoreResult
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = s.runner.tournaments(uow).SubmitScore(ctx, req)
		return err
	})
	return result, err
}

// CloseTournament completes an ongoing tournament
func (s *TournamentService) CloseTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, bool, error) {
	var (
		tournament *entities.Tournament
		closed     bool
	)
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		tournament, closed, err = s.runner.tournaments(uow).CloseTournament(ctx, tournamentID)
		return err
	})
	return tournament, closed, err
}

// DistributePrizes pays the winners of a completed tournament exactly once
func (s *TournamentService) DistributePrizes(ctx context.Context, tournamentID int64) (*interfaces.PrizeDistributionResult, error) {
	var result *interfaces.PrizeDistributionResult
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = s.runner.tournaments(uow).DistributePrizes(ctx, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadySettled {
		observability.GetMetrics().RecordLedgerReplay(observability.KindTournament)
	}
	return result, nil
}

// GetTournament returns a tournament
func (s *TournamentService) GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	var tournament *entities.Tournament
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		tournament, err = s.runner.tournaments(uow).GetTournament(ctx, tournamentID)
		return err
	})
	return tournament, err
}

// GetLeaderboard returns the tournament's ranked best scores
func (s *TournamentService) GetLeaderboard(ctx context.Context, tournamentID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	var entries []*entities.LeaderboardEntry
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		entries, err = s.runner.tournaments(uow).GetLeaderboard(ctx, tournamentID, limit)
		return err
	})
	return entries, err
}

// tournamentIDs lists the tournaments matching a repository query, outside any settlement
func (s *TournamentService) tournamentIDs(ctx context.Context, list func(context.Context, interfaces.TournamentRepository) ([]*entities.Tournament, error)) ([]int64, error) {
	var ids []int64
	err := s.runner.run(ctx, observability.KindTournament, func(ctx context.Context, uow UnitOfWork) error {
		tournaments, err := list(ctx, uow.TournamentRepository())
		if err != nil {
			return err
		}
		for _, t := range tournaments {
			ids = append(ids, t.ID)
		}
		return nil
	})
	return ids, err
}

var _ interfaces.TournamentSettlementService = (*TournamentService)(nil)
