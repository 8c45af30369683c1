package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const walletTransactionColumns = `id, account_id, type, currency, amount, description, reference,
	status, balance_before, balance_after, metadata, created_at`

// WalletTransactionRepository implements the WalletTransactionRepository interface
type WalletTransactionRepository struct {
	q Queryable
}

// NewWalletTransactionRepository creates a new wallet transaction repository
func NewWalletTransactionRepository(db *database.DB) *WalletTransactionRepository {
	return &WalletTransactionRepository{q: db.Pool}
}

// newWalletTransactionRepositoryWithTx creates a new wallet transaction repository with a transaction
func newWalletTransactionRepositoryWithTx(tx Queryable) *WalletTransactionRepository {
	return &WalletTransactionRepository{q: tx}
}

// InsertPending appends a pending entry. It returns false without error when the
// reference is already taken; a concurrent insert of the same reference blocks
// here until the other transaction finishes.
func (r *WalletTransactionRepository) InsertPending(ctx context.Context, tx *entities.WalletTransaction) (bool, error) {
	metadataJSON, err := marshalMetadata(tx.Metadata)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO wallet_transactions
		(account_id, type, currency, amount, description, reference, status, balance_before, balance_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', 0, 0, $7)
		ON CONFLICT ON CONSTRAINT wallet_transactions_reference_key DO NOTHING
		RETURNING id, status, created_at
	`

	err = r.q.QueryRow(ctx, query,
		tx.AccountID,
		tx.Type,
		tx.Currency,
		tx.Amount,
		tx.Description,
		tx.Reference,
		metadataJSON,
	).Scan(&tx.ID, &tx.Status, &tx.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert ledger entry %s: %w", tx.Reference, err)
	}
	return true, nil
}

// Complete stamps a pending entry with the balances it produced
func (r *WalletTransactionRepository) Complete(ctx context.Context, id int64, balanceBefore, balanceAfter int64) error {
	query := `
		UPDATE wallet_transactions
		SET status = 'completed', balance_before = $2, balance_after = $3
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.q.Exec(ctx, query, id, balanceBefore, balanceAfter)
	if err != nil {
		return fmt.Errorf("failed to complete ledger entry %d: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("ledger entry %d is not pending", id)
	}
	return nil
}

// GetByReference returns the entry recorded under reference, or nil
func (r *WalletTransactionRepository) GetByReference(ctx context.Context, reference string) (*entities.WalletTransaction, error) {
	query := `SELECT ` + walletTransactionColumns + ` FROM wallet_transactions WHERE reference = $1`

	tx, err := scanWalletTransaction(r.q.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry %s: %w", reference, err)
	}
	return tx, nil
}

// ListByAccount returns the newest entries of an account
func (r *WalletTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error) {
	query := `
		SELECT ` + walletTransactionColumns + `
		FROM wallet_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for %s: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []*entities.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return transactions, nil
}

// SumCompleted returns credits minus debits over the completed entries of one balance
func (r *WalletTransactionRepository) SumCompleted(ctx context.Context, accountID string, currency entities.Currency) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)::BIGINT
		FROM wallet_transactions
		WHERE account_id = $1 AND currency = $2 AND status = 'completed'
	`

	var sum int64
	if err := r.q.QueryRow(ctx, query, accountID, currency).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum %s ledger for %s: %w", currency, accountID, err)
	}
	return sum, nil
}

func scanWalletTransaction(row pgx.Row) (*entities.WalletTransaction, error) {
	var tx entities.WalletTransaction
	var metadataJSON []byte

	err := row.Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Type,
		&tx.Currency,
		&tx.Amount,
		&tx.Description,
		&tx.Reference,
		&tx.Status,
		&tx.BalanceBefore,
		&tx.BalanceAfter,
		&metadataJSON,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
		}
	}

	return &tx, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}
	return data, nil
}
