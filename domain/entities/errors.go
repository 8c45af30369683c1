package entities

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a settlement failure
type ErrorCode string

const (
	// Caller errors, never retried
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"

	// Store errors, safe to retry because settlement is idempotent
	ErrStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	ErrTransactionAborted ErrorCode = "TRANSACTION_ABORTED"
)

// SettlementError is the error type returned across the domain boundary
type SettlementError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *SettlementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SettlementError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely repeat the request
func (e *SettlementError) Retryable() bool {
	return e.Code == ErrStoreUnavailable || e.Code == ErrTransactionAborted
}

// NewSettlementError creates a new SettlementError
func NewSettlementError(code ErrorCode, format string, args ...any) *SettlementError {
	return &SettlementError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapSettlementError wraps an existing error in a SettlementError
func WrapSettlementError(code ErrorCode, message string, err error) *SettlementError {
	return &SettlementError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsSettlementError checks if err is, or wraps, a SettlementError with the given code
func IsSettlementError(err error, code ErrorCode) bool {
	var settlementErr *SettlementError
	if !errors.As(err, &settlementErr) {
		return false
	}
	return settlementErr.Code == code
}

// CodeOf returns the code of the SettlementError carried by err, or "" if there is none
func CodeOf(err error) ErrorCode {
	var settlementErr *SettlementError
	if errors.As(err, &settlementErr) {
		return settlementErr.Code
	}
	return ""
}
