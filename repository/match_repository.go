package repository

import (
	"context"
	"errors"
	"fmt"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const matchColumns = `match_id, game, entry_fee, currency, status, winner, is_draw, settled_at, created_at, updated_at`

// MatchRepository implements the MatchRepository interface
type MatchRepository struct {
	q Queryable
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{q: db.Pool}
}

// newMatchRepositoryWithTx creates a new match repository with a transaction
func newMatchRepositoryWithTx(tx Queryable) *MatchRepository {
	return &MatchRepository{q: tx}
}

// Create inserts a match. It returns false if the match ID is already taken.
func (r *MatchRepository) Create(ctx context.Context, match *entities.Match) (bool, error) {
	query := `
		INSERT INTO matches (match_id, game, entry_fee, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		match.MatchID,
		match.Game,
		match.EntryFee,
		match.Currency,
		match.Status,
	).Scan(&match.CreatedAt, &match.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create match %s: %w", match.MatchID, err)
	}
	return true, nil
}

// GetByID retrieves a match with its players
func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*entities.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1`
	return r.get(ctx, query, matchID)
}

// GetByIDForUpdate retrieves a match with its players and locks the match row
func (r *MatchRepository) GetByIDForUpdate(ctx context.Context, matchID string) (*entities.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1 FOR UPDATE`
	return r.get(ctx, query, matchID)
}

func (r *MatchRepository) get(ctx context.Context, query, matchID string) (*entities.Match, error) {
	var match entities.Match
	err := r.q.QueryRow(ctx, query, matchID).Scan(
		&match.MatchID,
		&match.Game,
		&match.EntryFee,
		&match.Currency,
		&match.Status,
		&match.Winner,
		&match.IsDraw,
		&match.SettledAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	players, err := r.getPlayers(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match.Players = players

	return &match, nil
}

func (r *MatchRepository) getPlayers(ctx context.Context, matchID string) ([]entities.MatchPlayer, error) {
	query := `
		SELECT match_id, player_id, player_name, seat, score, joined_at, updated_at
		FROM match_players
		WHERE match_id = $1
		ORDER BY seat
	`

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players of match %s: %w", matchID, err)
	}
	defer rows.Close()

	var players []entities.MatchPlayer
	for rows.Next() {
		var player entities.MatchPlayer
		err := rows.Scan(
			&player.MatchID,
			&player.PlayerID,
			&player.PlayerName,
			&player.Seat,
			&player.Score,
			&player.JoinedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match players: %w", err)
	}

	return players, nil
}

// AddPlayer seats a player in a match
func (r *MatchRepository) AddPlayer(ctx context.Context, player *entities.MatchPlayer) error {
	query := `
		INSERT INTO match_players (match_id, player_id, player_name, seat, score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING joined_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		player.MatchID,
		player.PlayerID,
		player.PlayerName,
		player.Seat,
		player.Score,
	).Scan(&player.JoinedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add player %s to match %s: %w", player.PlayerID, player.MatchID, err)
	}
	return nil
}

// UpdatePlayerScore overwrites a seated player's score
func (r *MatchRepository) UpdatePlayerScore(ctx context.Context, matchID, playerID, playerName string, score int64) error {
	query := `
		UPDATE match_players
		SET score = $3, player_name = $4, updated_at = NOW()
		WHERE match_id = $1 AND player_id = $2
	`
	tag, err := r.q.Exec(ctx, query, matchID, playerID, score, playerName)
	if err != nil {
		return fmt.Errorf("failed to update score of player %s in match %s: %w", playerID, matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %s is not seated in match %s", playerID, matchID)
	}
	return nil
}

// UpdateStatus moves an unfinished match to status
func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID string, status entities.MatchStatus) error {
	query := `
		UPDATE matches
		SET status = $2, updated_at = NOW()
		WHERE match_id = $1 AND status <> 'completed'
	`
	if _, err := r.q.Exec(ctx, query, matchID, status); err != nil {
		return fmt.Errorf("failed to update status of match %s: %w", matchID, err)
	}
	return nil
}

// Complete records the outcome. It returns false if the match was already completed.
func (r *MatchRepository) Complete(ctx context.Context, matchID string, winner *string, isDraw bool) (bool, error) {
	query := `
		UPDATE matches
		SET status = 'completed', winner = $2, is_draw = $3, settled_at = NOW(), updated_at = NOW()
		WHERE match_id = $1 AND status <> 'completed'
	`
	tag, err := r.q.Exec(ctx, query, matchID, winner, isDraw)
	if err != nil {
		return false, fmt.Errorf("failed to complete match %s: %w", matchID, err)
	}
	return tag.RowsAffected() == 1, nil
}
