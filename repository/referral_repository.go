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

const referralColumns = `id, referrer_id, referred_user_id, referral_code, reward_given, reward_amount, first_deposit_at, created_at`

// ReferralRepository implements the ReferralRepository interface
type ReferralRepository struct {
	q Queryable
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{q: db.Pool}
}

// newReferralRepositoryWithTx creates a new referral repository with a transaction
func newReferralRepositoryWithTx(tx Queryable) *ReferralRepository {
	return &ReferralRepository{q: tx}
}

// Create inserts a referral and fills in its ID
func (r *ReferralRepository) Create(ctx context.Context, referral *entities.Referral) error {
	query := `
		INSERT INTO referrals (referrer_id, referred_user_id, referral_code)
		VALUES ($1, $2, $3)
		RETURNING id, reward_given, reward_amount, created_at
	`

	err := r.q.QueryRow(ctx, query,
		referral.ReferrerID,
		referral.ReferredUserID,
		referral.ReferralCode,
	).Scan(&referral.ID, &referral.RewardGiven, &referral.RewardAmount, &referral.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create referral for user %s: %w", referral.ReferredUserID, err)
	}
	return nil
}

// GetByReferredUser returns the referral that brought userID in, or nil
func (r *ReferralRepository) GetByReferredUser(ctx context.Context, userID string) (*entities.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referred_user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByReferredUserForUpdate is GetByReferredUser with a row lock
func (r *ReferralRepository) GetByReferredUserForUpdate(ctx context.Context, userID string) (*entities.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referred_user_id = $1 FOR UPDATE`
	return r.getOne(ctx, query, userID)
}

func (r *ReferralRepository) getOne(ctx context.Context, query, userID string) (*entities.Referral, error) {
	referral, err := scanReferral(r.q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral of user %s: %w", userID, err)
	}
	return referral, nil
}

// ListByReferrer returns everyone referrerID brought in, oldest first
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*entities.Referral, error) {
	query := `
		SELECT ` + referralColumns + `
		FROM referrals
		WHERE referrer_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals of user %s: %w", referrerID, err)
	}
	defer rows.Close()

	var referrals []*entities.Referral
	for rows.Next() {
		referral, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, referral)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}

	return referrals, nil
}

// MarkRewarded flips reward_given exactly once
func (r *ReferralRepository) MarkRewarded(ctx context.Context, id int64, rewardAmount int64, firstDepositAt time.Time) (bool, error) {
	query := `
		UPDATE referrals
		SET reward_given = TRUE, reward_amount = $2, first_deposit_at = $3
		WHERE id = $1 AND NOT reward_given
	`
	tag, err := r.q.Exec(ctx, query, id, rewardAmount, firstDepositAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark referral %d rewarded: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanReferral(row pgx.Row) (*entities.Referral, error) {
	var referral entities.Referral
	err := row.Scan(
		&referral.ID,
		&referral.ReferrerID,
		&referral.ReferredUserID,
		&referral.ReferralCode,
		&referral.RewardGiven,
		&referral.RewardAmount,
		&referral.FirstDepositAt,
		&referral.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &referral, nil
}
