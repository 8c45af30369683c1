package repository

import (
	"context"
	"fmt"

	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type Queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// balanceColumn maps a currency to the column holding it. Only these two
// literals are ever interpolated into SQL.
func balanceColumn(currency entities.Currency) (string, error) {
	switch currency {
	case entities.CurrencyCash:
		return "cash", nil
	case entities.CurrencyCoin:
		return "coin", nil
	default:
		return "", fmt.Errorf("unknown currency %q", currency)
	}
}
