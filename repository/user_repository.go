package repository

import (
	"context"
	"errors"
	"fmt"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, cash, coin, referral_code, referred_by, has_made_first_deposit, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByIDForUpdate retrieves a user by ID and locks the row until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, userID string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, userID)
}

// GetByReferralCode retrieves the owner of a referral code
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return r.getOne(ctx, query, code)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entities.User, error) {
	var user entities.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Cash,
		&user.Coin,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.HasMadeFirstDeposit,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %v: %w", arg, err)
	}
	return &user, nil
}

// EnsureExists creates an empty account for userID if there is none
func (r *UserRepository) EnsureExists(ctx context.Context, userID string) error {
	query := `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}
	return nil
}

// AdjustBalance adds delta to one balance in a single statement.
// applied is false, and nothing changes, when the result would go negative.
func (r *UserRepository) AdjustBalance(ctx context.Context, userID string, currency entities.Currency, delta int64) (before, after int64, applied bool, err error) {
	column, err := balanceColumn(currency)
	if err != nil {
		return 0, 0, false, err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = %[1]s + $2, updated_at = NOW()
		WHERE id = $1 AND %[1]s + $2 >= 0
		RETURNING %[1]s - $2, %[1]s
	`, column)

	err = r.q.QueryRow(ctx, query, userID, delta).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to adjust %s balance for user %s: %w", currency, userID, err)
	}
	return before, after, true, nil
}

// AssignReferralCode sets the user's code unless one is already set
func (r *UserRepository) AssignReferralCode(ctx context.Context, userID, code string) error {
	query := `
		UPDATE users
		SET referral_code = $2, updated_at = NOW()
		WHERE id = $1 AND referral_code IS NULL
	`
	if _, err := r.q.Exec(ctx, query, userID, code); err != nil {
		return fmt.Errorf("failed to assign referral code to user %s: %w", userID, err)
	}
	return nil
}

// SetReferredBy records the referrer once; it returns false if the user already has one
func (r *UserRepository) SetReferredBy(ctx context.Context, userID, referrerID string) (bool, error) {
	query := `
		UPDATE users
		SET referred_by = $2, updated_at = NOW()
		WHERE id = $1 AND referred_by IS NULL
	`
	tag, err := r.q.Exec(ctx, query, userID, referrerID)
	if err != nil {
		return false, fmt.Errorf("failed to set referrer of user %s: %w", userID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFirstDeposit flags the first deposit; it returns true only for the call that flipped it
func (r *UserRepository) MarkFirstDeposit(ctx context.Context, userID string) (bool, error) {
	query := `
		UPDATE users
		SET has_made_first_deposit = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT has_made_first_deposit
	`
	tag, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark first deposit for user %s: %w", userID, err)
	}
	return tag.RowsAffected() == 1, nil
}
