package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// tournamentSettlementService implements the tournament lifecycle and prize distribution
type tournamentSettlementService struct {
	tournamentRepo interfaces.TournamentRepository
	scoreRepo      interfaces.ScoreRepository
	wallet         interfaces.WalletService
	games          interfaces.GameRegistry
	eventPublisher interfaces.EventPublisher
	prizeShares    []decimal.Decimal
	now            func() time.Time
}

// NewTournamentSettlementService creates a new tournament settlement service
func NewTournamentSettlementService(
	tournamentRepo interfaces.TournamentRepository,
	scoreRepo interfaces.ScoreRepository,
	wallet interfaces.WalletService,
	games interfaces.GameRegistry,
	eventPublisher interfaces.EventPublisher,
) interfaces.TournamentSettlementService {
	return &tournamentSettlementService{
		tournamentRepo: tournamentRepo,
		scoreRepo:      scoreRepo,
		wallet:         wallet,
		games:          games,
		eventPublisher: eventPublisher,
		prizeShares:    DefaultPrizeShares,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateTournament schedules a tournament; it starts immediately if its start time has passed
func (s *tournamentSettlementService) CreateTournament(ctx context.Context, req interfaces.CreateTournamentRequest) (*entities.Tournament, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "tournament name is required")
	}
	if !s.games.IsSupported(req.GameName) {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "unknown game %q", req.GameName)
	}
	if !req.TournamentType.IsValid() {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "unknown tournament type %q", req.TournamentType)
	}
	if req.PrizePool < 0 {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "prize pool cannot be negative")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "tournament must end after it starts")
	}

	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		roomID = uuid.NewString()
	}

	status := entities.TournamentStatusUpcoming
	if !s.now().Before(req.StartsAt) {
		status = entities.TournamentStatusOngoing
	}

	tournament := &entities.Tournament{
		Name:           req.Name,
		GameName:       normalizeGame(req.GameName),
		RoomID:         roomID,
		TournamentType: req.TournamentType,
		PrizePool:      req.PrizePool,
		Status:         status,
		StartsAt:       req.StartsAt.UTC(),
		EndsAt:         req.EndsAt.UTC(),
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	log.WithFields(log.Fields{
		"tournamentID": tournament.ID,
		"game":         tournament.GameName,
		"prizePool":    tournament.PrizePool,
		"status":       tournament.Status,
	}).Info("Tournament created")

	return tournament, nil
}

// StartTournament opens an upcoming tournament for scores
func (s *tournamentSettlementService) StartTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.lock(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != entities.TournamentStatusUpcoming {
		return tournament, nil
	}

	started, err := s.tournamentRepo.MarkOngoing(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to start tournament %d: %w", tournamentID, err)
	}
	if started {
		tournament.Status = entities.TournamentStatusOngoing
		log.WithField("tournamentID", tournamentID).Info("Tournament started")
	}
	return tournament, nil
}

// SubmitScore keeps the participant's best score
func (s *tournamentSettlementService) SubmitScore(ctx context.Context, req interfaces.SubmitTournamentScoreRequest) (*interfaces.TournamentScoreResult, error) {
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if req.Score < 0 {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "score cannot be negative, got %d", req.Score)
	}

	// The shared lock keeps close and payout from running while the score is written
	tournament, err := s.tournamentRepo.GetByIDForShare(ctx, req.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", req.TournamentID, err)
	}
	if tournament == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "tournament %d not found", req.TournamentID)
	}
	if !tournament.AcceptsScores(s.now()) {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput,
			"tournament %d is not accepting scores (status %s)", tournament.ID, tournament.Status)
	}

	stored, improved, err := s.scoreRepo.UpsertBest(ctx, req.UserID, tournament.RoomID, tournament.GameName, req.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to store score for user %s: %w", req.UserID, err)
	}

	return &interfaces.TournamentScoreResult{Score: stored, Improved: improved}, nil
}

// CloseTournament completes an ongoing tournament
func (s *tournamentSettlementService) CloseTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, bool, error) {
	tournament, err := s.lock(ctx, tournamentID)
	if err != nil {
		return nil, false, err
	}
	if tournament.Status != entities.TournamentStatusOngoing {
		return tournament, false, nil
	}

	closed, err := s.tournamentRepo.MarkCompleted(ctx, tournamentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to complete tournament %d: %w", tournamentID, err)
	}
	if !closed {
		return tournament, false, nil
	}

	now := s.now()
	tournament.Status = entities.TournamentStatusCompleted
	tournament.CompletedAt = &now

	if err := s.eventPublisher.Publish(events.TournamentClosedEvent{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
	}); err != nil {
		log.WithError(err).Error("Failed to publish tournament closed event")
	}

	log.WithField("tournamentID", tournamentID).Info("Tournament closed")
	return tournament, true, nil
}

// DistributePrizes pays the top three and sweeps the remainder to the house, once per tournament.
// A tournament that has not completed is left untouched.
func (s *tournamentSettlementService) DistributePrizes(ctx context.Context, tournamentID int64) (*interfaces.PrizeDistributionResult, error) {
	tournament, err := s.lock(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	result := &interfaces.PrizeDistributionResult{
		TournamentID: tournament.ID,
		Currency:     tournament.TournamentType,
		PrizePool:    tournament.PrizePool,
	}

	if tournament.PrizeDistributed {
		result.AlreadySettled = true
		return result, nil
	}
	if !tournament.IsCompleted() {
		result.Skipped = true
		log.WithFields(log.Fields{
			"tournamentID": tournament.ID,
			"status":       tournament.Status,
		}).Debug("Tournament not completed, prize distribution skipped")
		return result, nil
	}

	shares := CalculatePrizeShares(tournament.PrizePool, s.prizeShares)
	leaders, err := s.scoreRepo.GetLeaderboard(ctx, tournament.RoomID, tournament.GameName, len(shares))
	if err != nil {
		return nil, fmt.Errorf("failed to rank tournament %d: %w", tournament.ID, err)
	}

	var paid int64
	for i, leader := range leaders {
		if i >= len(shares) {
			break
		}
		amount := shares[i]
		if amount <= 0 {
			continue
		}

		rank := i + 1
		reference := entities.TournamentRankReference(tournament.ID, rank)
		if _, err := s.wallet.Credit(ctx, interfaces.LedgerRequest{
			AccountID:   leader.UserID,
			Amount:      amount,
			Description: fmt.Sprintf("Rank %d in tournament %s", rank, tournament.Name),
			Reference:   reference,
			Currency:    tournament.TournamentType,
			Metadata: map[string]any{
				"tournament_id": tournament.ID,
				"rank":          rank,
				"score":         leader.Score,
			},
		}); err != nil {
			return nil, fmt.Errorf("failed to pay rank %d of tournament %d: %w", rank, tournament.ID, err)
		}

		paid += amount
		result.Payouts = append(result.Payouts, entities.PrizePayout{
			Rank:      rank,
			UserID:    leader.UserID,
			Amount:    amount,
			Reference: reference,
		})
	}

	result.HouseAmount = tournament.PrizePool - paid
	if result.HouseAmount > 0 {
		if _, err := s.wallet.CreditHouse(ctx, interfaces.LedgerRequest{
			Amount:      result.HouseAmount,
			Description: fmt.Sprintf("Unpaid prize pool of tournament %s", tournament.Name),
			Reference:   entities.TournamentHouseReference(tournament.ID),
			Currency:    tournament.TournamentType,
			Metadata: map[string]any{
				"tournament_id": tournament.ID,
				"participants":  len(leaders),
			},
		}); err != nil {
			return nil, fmt.Errorf("failed to credit house for tournament %d: %w", tournament.ID, err)
		}
	}

	marked, err := s.tournamentRepo.MarkPrizeDistributed(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark tournament %d distributed: %w", tournament.ID, err)
	}
	if !marked {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted,
			"tournament %d was distributed concurrently", tournament.ID)
	}

	if err := s.eventPublisher.Publish(events.PrizesDistributedEvent{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		Currency:     tournament.TournamentType,
		PrizePool:    tournament.PrizePool,
		Payouts:      result.Payouts,
		HouseAmount:  result.HouseAmount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish prizes distributed event")
	}

	log.WithFields(log.Fields{
		"tournamentID": tournament.ID,
		"prizePool":    tournament.PrizePool,
		"winnerCount":  len(result.Payouts),
		"houseAmount":  result.HouseAmount,
	}).Info("Tournament prizes distributed")

	return result, nil
}

// GetTournament returns a tournament by ID
func (s *tournamentSettlementService) GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "tournament %d not found", tournamentID)
	}
	return tournament, nil
}

// GetLeaderboard ranks participants by best score
func (s *tournamentSettlementService) GetLeaderboard(ctx context.Context, tournamentID int64, limit int) ([]*entities.LeaderboardEntry, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := s.scoreRepo.GetLeaderboard(ctx, tournament.RoomID, tournament.GameName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

func (s *tournamentSettlementService) lock(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
	}
	if tournament == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "tournament %d not found", tournamentID)
	}
	return tournament, nil
}
