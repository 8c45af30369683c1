package repository

import (
	"context"
	"fmt"

	"arena-ledger/database"
	"arena-ledger/domain/entities"
)

// HouseWalletRepository implements the HouseWalletRepository interface
type HouseWalletRepository struct {
	q Queryable
}

// NewHouseWalletRepository creates a new house wallet repository
func NewHouseWalletRepository(db *database.DB) *HouseWalletRepository {
	return &HouseWalletRepository{q: db.Pool}
}

func newHouseWalletRepositoryWithTx(tx Queryable) *HouseWalletRepository {
	return &HouseWalletRepository{q: tx}
}

// Get returns the house balances
func (r *HouseWalletRepository) Get(ctx context.Context) (*entities.Balance, error) {
	var balance entities.Balance
	err := r.q.QueryRow(ctx, `SELECT cash, coin FROM house_wallet WHERE id = 1`).Scan(&balance.Cash, &balance.Coin)
	if err != nil {
		return nil, fmt.Errorf("failed to get house wallet: %w", err)
	}
	return &balance, nil
}

// Adjust adds delta to one house balance and returns the balance before and after
func (r *HouseWalletRepository) Adjust(ctx context.Context, currency entities.Currency, delta int64) (before, after int64, err error) {
	column, err := balanceColumn(currency)
	if err != nil {
		return 0, 0, err
	}

	query := fmt.Sprintf(`
		UPDATE house_wallet
		SET %[1]s = %[1]s + $1, updated_at = NOW()
		WHERE id = 1
		RETURNING %[1]s - $1, %[1]s
	`, column)

	if err := r.q.QueryRow(ctx, query, delta).Scan(&before, &after); err != nil {
		return 0, 0, fmt.Errorf("failed to adjust house %s balance: %w", currency, err)
	}
	return before, after, nil
}
