package services

import (
	"context"
	"fmt"
	"strings"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// matchSettlementService implements head-to-head match settlement
type matchSettlementService struct {
	matchRepo      interfaces.MatchRepository
	wallet         interfaces.WalletService
	games          interfaces.GameRegistry
	eventPublisher interfaces.EventPublisher
}

// NewMatchSettlementService creates a new match settlement service
func NewMatchSettlementService(
	matchRepo interfaces.MatchRepository,
	wallet interfaces.WalletService,
	games interfaces.GameRegistry,
	eventPublisher interfaces.EventPublisher,
) interfaces.MatchSettlementService {
	return &matchSettlementService{
		matchRepo:      matchRepo,
		wallet:         wallet,
		games:          games,
		eventPublisher: eventPublisher,
	}
}

// CreateMatch opens a new match with the creator in seat one
func (s *matchSettlementService) CreateMatch(ctx context.Context, req interfaces.CreateMatchRequest) (*entities.Match, error) {
	if !s.games.IsSupported(req.Game) {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "unknown game %q", req.Game)
	}
	if req.EntryFee < 0 {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "entry fee cannot be negative")
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "player id is required")
	}
	if req.PlayerID == entities.HouseAccountID {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "player id %q is reserved", req.PlayerID)
	}
	currency := req.Currency
	if currency == "" {
		currency = entities.CurrencyCash
	}
	if !currency.IsValid() {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "unknown currency %q", currency)
	}

	match := &entities.Match{
		MatchID:  uuid.NewString(),
		Game:     normalizeGame(req.Game),
		EntryFee: req.EntryFee,
		Currency: currency,
		Status:   entities.MatchStatusWaiting,
	}
	created, err := s.matchRepo.Create(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if !created {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted, "match id %s already taken", match.MatchID)
	}

	player := &entities.MatchPlayer{
		MatchID:    match.MatchID,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Seat:       1,
	}
	if err := s.matchRepo.AddPlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to seat creator in match %s: %w", match.MatchID, err)
	}
	match.Players = []entities.MatchPlayer{*player}

	log.WithFields(log.Fields{
		"matchID":  match.MatchID,
		"game":     match.Game,
		"entryFee": match.EntryFee,
		"playerID": req.PlayerID,
	}).Info("Match created")

	return match, nil
}

// SubmitScore records a score and settles the match once both players have reported
func (s *matchSettlementService) SubmitScore(ctx context.Context, req interfaces.SubmitMatchScoreRequest) (*interfaces.MatchResult, error) {
	if err := s.validateSubmission(req); err != nil {
		return nil, err
	}
	game := normalizeGame(req.Game)

	match, err := s.lockOrCreate(ctx, req.MatchID, game)
	if err != nil {
		return nil, err
	}

	if match.IsCompleted() {
		log.WithFields(log.Fields{
			"matchID":  match.MatchID,
			"playerID": req.PlayerID,
		}).Debug("Score submitted for completed match, returning recorded outcome")
		return &interfaces.MatchResult{Match: match, AlreadySettled: true}, nil
	}
	if match.Game != game {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput,
			"match %s is for game %q, not %q", match.MatchID, match.Game, game)
	}

	if err := s.recordScore(ctx, match, req); err != nil {
		return nil, err
	}

	status := match.DeriveStatus()
	if status != entities.MatchStatusCompleted {
		if status != match.Status {
			if err := s.matchRepo.UpdateStatus(ctx, match.MatchID, status); err != nil {
				return nil, fmt.Errorf("failed to update match %s status: %w", match.MatchID, err)
			}
			match.Status = status
		}
		return &interfaces.MatchResult{Match: match}, nil
	}

	return s.settle(ctx, match)
}

// GetMatch returns a match and its players
func (s *matchSettlementService) GetMatch(ctx context.Context, matchID string) (*entities.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	if match == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "match %s not found", matchID)
	}
	return match, nil
}

func (s *matchSettlementService) validateSubmission(req interfaces.SubmitMatchScoreRequest) error {
	if strings.TrimSpace(req.MatchID) == "" {
		return entities.NewSettlementError(entities.ErrInvalidInput, "match id is required")
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		return entities.NewSettlementError(entities.ErrInvalidInput, "player id is required")
	}
	if req.PlayerID == entities.HouseAccountID {
		return entities.NewSettlementError(entities.ErrInvalidInput, "player id %q is reserved", req.PlayerID)
	}
	if req.Score < 0 {
		return entities.NewSettlementError(entities.ErrInvalidInput, "score cannot be negative, got %d", req.Score)
	}
	if !s.games.IsSupported(req.Game) {
		return entities.NewSettlementError(entities.ErrInvalidInput, "unknown game %q", req.Game)
	}
	return nil
}

// lockOrCreate returns the match with its row locked, creating an empty free match if none exists
func (s *matchSettlementService) lockOrCreate(ctx context.Context, matchID, game string) (*entities.Match, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}
	if match != nil {
		return match, nil
	}

	created, err := s.matchRepo.Create(ctx, &entities.Match{
		MatchID:  matchID,
		Game:     game,
		EntryFee: 0,
		Currency: entities.CurrencyCash,
		Status:   entities.MatchStatusWaiting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match %s: %w", matchID, err)
	}
	if created {
		log.WithFields(log.Fields{
			"matchID": matchID,
			"game":    game,
		}).Info("Match created implicitly by score submission")
	}

	// Either we created it or a concurrent submission did; lock whichever row exists now
	match, err = s.matchRepo.GetByIDForUpdate(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}
	if match == nil {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted, "match %s vanished during creation", matchID)
	}
	return match, nil
}

func (s *matchSettlementService) recordScore(ctx context.Context, match *entities.Match, req interfaces.SubmitMatchScoreRequest) error {
	score := req.Score

	if player := match.Player(req.PlayerID); player != nil {
		name := req.PlayerName
		if name == "" {
			name = player.PlayerName
		}
		if err := s.matchRepo.UpdatePlayerScore(ctx, match.MatchID, req.PlayerID, name, score); err != nil {
			return fmt.Errorf("failed to update score for player %s in match %s: %w", req.PlayerID, match.MatchID, err)
		}
		player.Score = &score
		player.PlayerName = name
		return nil
	}

	if match.IsFull() {
		return entities.NewSettlementError(entities.ErrInvalidInput, "match %s is full", match.MatchID)
	}

	player := &entities.MatchPlayer{
		MatchID:    match.MatchID,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Seat:       match.NextSeat(),
		Score:      &score,
	}
	if err := s.matchRepo.AddPlayer(ctx, player); err != nil {
		return fmt.Errorf("failed to add player %s to match %s: %w", req.PlayerID, match.MatchID, err)
	}
	match.Players = append(match.Players, *player)
	return nil
}

// settle records the outcome and pays the winner inside the caller's unit of work
func (s *matchSettlementService) settle(ctx context.Context, match *entities.Match) (*interfaces.MatchResult, error) {
	winner, draw, _ := match.DecideOutcome()

	completed, err := s.matchRepo.Complete(ctx, match.MatchID, winner, draw)
	if err != nil {
		return nil, fmt.Errorf("failed to complete match %s: %w", match.MatchID, err)
	}
	if !completed {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted,
			"match %s was completed concurrently", match.MatchID)
	}
	match.Status = entities.MatchStatusCompleted
	match.Winner = winner
	match.IsDraw = draw

	result := &interfaces.MatchResult{Match: match, Settled: true}

	if winner != nil && match.Pot() > 0 {
		entry, err := s.wallet.Credit(ctx, interfaces.LedgerRequest{
			AccountID:   *winner,
			Amount:      match.Pot(),
			Description: fmt.Sprintf("Won %s match %s", match.Game, match.MatchID),
			Reference:   entities.MatchReference(match.MatchID),
			Currency:    match.Currency,
			Metadata: map[string]any{
				"match_id":  match.MatchID,
				"game":      match.Game,
				"entry_fee": match.EntryFee,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to credit winner of match %s: %w", match.MatchID, err)
		}
		result.Payout = entry.Transaction.Amount
		result.Transaction = entry.Transaction
	}

	if err := s.eventPublisher.Publish(events.MatchSettledEvent{
		MatchID:  match.MatchID,
		Game:     match.Game,
		Winner:   winner,
		IsDraw:   draw,
		Payout:   result.Payout,
		EntryFee: match.EntryFee,
	}); err != nil {
		log.WithError(err).Error("Failed to publish match settled event")
	}

	log.WithFields(log.Fields{
		"matchID": match.MatchID,
		"winner":  derefString(winner),
		"isDraw":  draw,
		"payout":  result.Payout,
	}).Info("Match settled")

	return result, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
