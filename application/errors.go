package application

import (
	"context"
	"errors"
	"net"

	"arena-ledger/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that mean the transaction lost a race and can be retried
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// SQLSTATE classes for errors caused by the data itself; repeating the request cannot help
const (
	pgClassDataException      = "22"
	pgClassIntegrityViolation = "23"
)

// classifyStoreError turns a failure from inside a unit of work into a SettlementError.
// Errors that already carry a code pass through unchanged.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	var settlementErr *entities.SettlementError
	if errors.As(err, &settlementErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return entities.WrapSettlementError(entities.ErrStoreUnavailable, "settlement timed out", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return entities.WrapSettlementError(entities.ErrTransactionAborted, "concurrent update, retry", err)
		case pgQueryCanceled:
			return entities.WrapSettlementError(entities.ErrStoreUnavailable, "statement timed out", err)
		}
		switch pgErrorClass(pgErr.Code) {
		case pgClassDataException:
			return entities.WrapSettlementError(entities.ErrInvalidInput, "value out of range for the store", err)
		case pgClassIntegrityViolation:
			return entities.WrapSettlementError(entities.ErrInvalidInput, "store constraint violated", err)
		}
		return entities.WrapSettlementError(entities.ErrStoreUnavailable, "store rejected the operation", err)
	}

	if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, pgx.ErrTxCommitRollback) {
		return entities.WrapSettlementError(entities.ErrTransactionAborted, "transaction was rolled back", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return entities.WrapSettlementError(entities.ErrStoreUnavailable, "store unreachable", err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return entities.WrapSettlementError(entities.ErrStoreUnavailable, "store unreachable", err)
	}

	return entities.WrapSettlementError(entities.ErrStoreUnavailable, "store failure", err)
}

func pgErrorClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
