package repository

import (
	"context"
	"errors"
	"fmt"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ScoreRepository implements the ScoreRepository interface
type ScoreRepository struct {
	q Queryable
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{q: db.Pool}
}

// newScoreRepositoryWithTx creates a new score repository with a transaction
func newScoreRepositoryWithTx(tx Queryable) *ScoreRepository {
	return &ScoreRepository{q: tx}
}

// UpsertBest stores score if it beats the user's best in the room. improved is
// false when the stored score was kept.
func (r *ScoreRepository) UpsertBest(ctx context.Context, userID, roomID, gameName string, score int64) (*entities.Score, bool, error) {
	query := `
		INSERT INTO scores (user_id, room_id, game_name, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT scores_user_room_game_key DO UPDATE
		SET score = EXCLUDED.score, updated_at = NOW()
		WHERE scores.score < EXCLUDED.score
		RETURNING id, user_id, room_id, game_name, score, created_at, updated_at
	`

	stored, err := scanScore(r.q.QueryRow(ctx, query, userID, roomID, gameName, score))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to upsert score for user %s in room %s: %w", userID, roomID, err)
	}

	query = `
		SELECT id, user_id, room_id, game_name, score, created_at, updated_at
		FROM scores
		WHERE user_id = $1 AND room_id = $2 AND game_name = $3
	`
	stored, err = scanScore(r.q.QueryRow(ctx, query, userID, roomID, gameName))
	if err != nil {
		return nil, false, fmt.Errorf("failed to get score for user %s in room %s: %w", userID, roomID, err)
	}
	return stored, false, nil
}

// GetLeaderboard ranks best scores: higher first, then whoever reached it first, then user ID
func (r *ScoreRepository) GetLeaderboard(ctx context.Context, roomID, gameName string, limit int) ([]*entities.LeaderboardEntry, error) {
	query := `
		SELECT
			ROW_NUMBER() OVER (ORDER BY score DESC, updated_at ASC, user_id ASC) AS rank,
			user_id,
			score,
			updated_at
		FROM scores
		WHERE room_id = $1 AND game_name = $2
		ORDER BY rank
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, roomID, gameName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var entry entities.LeaderboardEntry
		var rank int64
		if err := rows.Scan(&rank, &entry.UserID, &entry.Score, &entry.AchievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = int(rank)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

func scanScore(row pgx.Row) (*entities.Score, error) {
	var s entities.Score
	err := row.Scan(&s.ID, &s.UserID, &s.RoomID, &s.GameName, &s.Score, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
