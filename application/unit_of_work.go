package application

import (
	"context"

	"arena-ledger/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and drops buffered events
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	WalletTransactionRepository() interfaces.WalletTransactionRepository
	HouseWalletRepository() interfaces.HouseWalletRepository
	MatchRepository() interfaces.MatchRepository
	TournamentRepository() interfaces.TournamentRepository
	ScoreRepository() interfaces.ScoreRepository
	ReferralRepository() interfaces.ReferralRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
