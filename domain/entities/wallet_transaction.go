package entities

import (
	"errors"
	"time"
)

// HouseAccountID is the ledger account that receives tournament remainders
const HouseAccountID = "house"

// TransactionType is the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// TransactionStatus tracks the lifecycle of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// WalletTransaction is one append-only entry in the ledger
type WalletTransaction struct {
	ID            int64             `db:"id" json:"id"`
	AccountID     string            `db:"account_id" json:"accountId"`
	Type          TransactionType   `db:"type" json:"type"`
	Currency      Currency          `db:"currency" json:"currency"`
	Amount        int64             `db:"amount" json:"amount"`
	Description   string            `db:"description" json:"description"`
	Reference     string            `db:"reference" json:"reference"`
	Status        TransactionStatus `db:"status" json:"status"`
	BalanceBefore int64             `db:"balance_before" json:"balanceBefore"`
	BalanceAfter  int64             `db:"balance_after" json:"balanceAfter"`
	Metadata      map[string]any    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
}

// IsCompleted returns true once the entry counts toward the balance
func (t *WalletTransaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// SignedAmount returns the amount as it affects the balance
func (t *WalletTransaction) SignedAmount() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}

// Validate checks the entry is internally consistent
func (t *WalletTransaction) Validate() error {
	if t.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if t.BalanceAfter != t.BalanceBefore+t.SignedAmount() {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}

// Reconciliation is the outcome of comparing a stored balance with its ledger
type Reconciliation struct {
	AccountID string   `json:"accountId"`
	Currency  Currency `json:"currency"`
	Stored    int64    `json:"stored"`
	Ledger    int64    `json:"ledger"`
}

// Balanced returns true when the stored balance matches the ledger sum
func (r Reconciliation) Balanced() bool {
	return r.Stored == r.Ledger
}
