package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const tournamentColumns = `id, name, game_name, room_id, tournament_type, prize_pool, status,
	prize_distributed, starts_at, ends_at, completed_at, distributed_at, created_at`

// TournamentRepository implements the TournamentRepository interface
type TournamentRepository struct {
	q Queryable
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *database.DB) *TournamentRepository {
	return &TournamentRepository{q: db.Pool}
}

// newTournamentRepositoryWithTx creates a new tournament repository with a transaction
func newTournamentRepositoryWithTx(tx Queryable) *TournamentRepository {
	return &TournamentRepository{q: tx}
}

// Create inserts a tournament and fills in its ID
func (r *TournamentRepository) Create(ctx context.Context, tournament *entities.Tournament) error {
	query := `
		INSERT INTO tournaments
		(name, game_name, room_id, tournament_type, prize_pool, status, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tournament.Name,
		tournament.GameName,
		tournament.RoomID,
		tournament.TournamentType,
		tournament.PrizePool,
		tournament.Status,
		tournament.StartsAt,
		tournament.EndsAt,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament %s: %w", tournament.Name, err)
	}
	return nil
}

// GetByID retrieves a tournament
func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (*entities.Tournament, error) {
	return r.getOne(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a tournament with an exclusive row lock
func (r *TournamentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Tournament, error) {
	return r.getOne(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

// GetByIDForShare retrieves a tournament with a shared row lock.
// Concurrent score submissions proceed together; closing waits for them.
func (r *TournamentRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Tournament, error) {
	return r.getOne(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR SHARE`, id)
}

func (r *TournamentRepository) getOne(ctx context.Context, query string, id int64) (*entities.Tournament, error) {
	tournament, err := scanTournament(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

// MarkOngoing starts an upcoming tournament
func (r *TournamentRepository) MarkOngoing(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE tournaments SET status = 'ongoing' WHERE id = $1 AND status = 'upcoming'`
	return r.transition(ctx, query, id, "start")
}

// MarkCompleted closes an ongoing tournament
func (r *TournamentRepository) MarkCompleted(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE tournaments
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND status = 'ongoing'
	`
	return r.transition(ctx, query, id, "complete")
}

// MarkPrizeDistributed flips the distributed flag of a completed tournament exactly once
func (r *TournamentRepository) MarkPrizeDistributed(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE tournaments
		SET prize_distributed = TRUE, distributed_at = NOW()
		WHERE id = $1 AND status = 'completed' AND NOT prize_distributed
	`
	return r.transition(ctx, query, id, "mark distributed")
}

func (r *TournamentRepository) transition(ctx context.Context, query string, id int64, action string) (bool, error) {
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to %s tournament %d: %w", action, id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListDueToStart returns upcoming tournaments whose start time has passed
func (r *TournamentRepository) ListDueToStart(ctx context.Context, now time.Time) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = 'upcoming' AND starts_at <= $1
		ORDER BY starts_at, id
	`
	return r.list(ctx, query, now)
}

// ListDueToClose returns ongoing tournaments whose end time has passed
func (r *TournamentRepository) ListDueToClose(ctx context.Context, now time.Time) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = 'ongoing' AND ends_at <= $1
		ORDER BY ends_at, id
	`
	return r.list(ctx, query, now)
}

// ListPendingDistribution returns completed tournaments whose prizes are unpaid
func (r *TournamentRepository) ListPendingDistribution(ctx context.Context) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = 'completed' AND NOT prize_distributed
		ORDER BY completed_at, id
	`
	return r.list(ctx, query)
}

func (r *TournamentRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Tournament, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*entities.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, tournament)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}

	return tournaments, nil
}

func scanTournament(row pgx.Row) (*entities.Tournament, error) {
	var t entities.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.GameName,
		&t.RoomID,
		&t.TournamentType,
		&t.PrizePool,
		&t.Status,
		&t.PrizeDistributed,
		&t.StartsAt,
		&t.EndsAt,
		&t.CompletedAt,
		&t.DistributedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
