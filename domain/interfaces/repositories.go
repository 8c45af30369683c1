package interfaces

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, returning nil if it does not exist
	GetByID(ctx context.Context, userID string) (*entities.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, userID string) (*entities.User, error)

	// GetByReferralCode retrieves the owner of a referral code
	GetByReferralCode(ctx context.Context, code string) (*entities.User, error)

	// EnsureExists creates the user with zero balances if it is missing
	EnsureExists(ctx context.Context, userID string) error

	// AdjustBalance atomically adds delta to the currency balance.
	// applied is false when the change would take the balance below zero.
	AdjustBalance(ctx context.Context, userID string, currency entities.Currency, delta int64) (before, after int64, applied bool, err error)

	// AssignReferralCode sets the user's referral code if none is set yet
	AssignReferralCode(ctx context.Context, userID, code string) error

	// SetReferredBy records the referrer if the user has none yet
	SetReferredBy(ctx context.Context, userID, referrerID string) (bool, error)

	// MarkFirstDeposit flips has_made_first_deposit, reporting whether this call flipped it
	MarkFirstDeposit(ctx context.Context, userID string) (bool, error)
}

// WalletTransactionRepository defines the interface for the append-only ledger
type WalletTransactionRepository interface {
	// InsertPending appends a pending entry keyed by reference.
	// inserted is false if an entry with the same reference already exists.
	InsertPending(ctx context.Context, tx *entities.WalletTransaction) (inserted bool, err error)

	// Complete stamps the balances on a pending entry and marks it completed
	Complete(ctx context.Context, id int64, balanceBefore, balanceAfter int64) error

	// GetByReference retrieves the entry for an idempotency key
	GetByReference(ctx context.Context, reference string) (*entities.WalletTransaction, error)

	// ListByAccount returns the newest entries for an account
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error)

	// SumCompleted returns completed credits minus completed debits for an account and currency
	SumCompleted(ctx context.Context, accountID string, currency entities.Currency) (int64, error)
}

// HouseWalletRepository defines the interface for the house singleton
type HouseWalletRepository interface {
	// Get returns the house balances
	Get(ctx context.Context) (*entities.Balance, error)

	// Adjust atomically adds delta to the house balance in currency
	Adjust(ctx context.Context, currency entities.Currency, delta int64) (before, after int64, err error)
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	// Create inserts a new match, returning false if the match ID is taken
	Create(ctx context.Context, match *entities.Match) (bool, error)

	// GetByID retrieves a match with its players
	GetByID(ctx context.Context, matchID string) (*entities.Match, error)

	// GetByIDForUpdate retrieves a match with its players and locks the match row
	GetByIDForUpdate(ctx context.Context, matchID string) (*entities.Match, error)

	// AddPlayer seats a new player
	AddPlayer(ctx context.Context, player *entities.MatchPlayer) error

	// UpdatePlayerScore overwrites a seated player's score
	UpdatePlayerScore(ctx context.Context, matchID, playerID, playerName string, score int64) error

	// UpdateStatus moves a match that is not completed to a non-final status
	UpdateStatus(ctx context.Context, matchID string, status entities.MatchStatus) error

	// Complete records the outcome if the match is not already completed
	Complete(ctx context.Context, matchID string, winner *string, isDraw bool) (bool, error)
}

// TournamentRepository defines the interface for tournament data access
type TournamentRepository interface {
	// Create inserts a tournament and fills in its generated fields
	Create(ctx context.Context, tournament *entities.Tournament) error

	// GetByID retrieves a tournament by ID
	GetByID(ctx context.Context, id int64) (*entities.Tournament, error)

	// GetByIDForUpdate retrieves a tournament and locks the row
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Tournament, error)

	// GetByIDForShare retrieves a tournament with a shared lock that blocks closing and payout
	GetByIDForShare(ctx context.Context, id int64) (*entities.Tournament, error)

	// MarkOngoing moves an upcoming tournament to ongoing
	MarkOngoing(ctx context.Context, id int64) (bool, error)

	// MarkCompleted moves an ongoing tournament to completed
	MarkCompleted(ctx context.Context, id int64) (bool, error)

	// MarkPrizeDistributed sets prize_distributed on a completed tournament that has not paid out
	MarkPrizeDistributed(ctx context.Context, id int64) (bool, error)

	// ListDueToStart returns upcoming tournaments whose start time has passed
	ListDueToStart(ctx context.Context, now time.Time) ([]*entities.Tournament, error)

	// ListDueToClose returns ongoing tournaments whose end time has passed
	ListDueToClose(ctx context.Context, now time.Time) ([]*entities.Tournament, error)

	// ListPendingDistribution returns completed tournaments that still owe prizes
	ListPendingDistribution(ctx context.Context) ([]*entities.Tournament, error)
}

// ScoreRepository defines the interface for best-score data access
type ScoreRepository interface {
	// UpsertBest stores score unless the stored score is already at least as high.
	// improved reports whether the stored score changed.
	UpsertBest(ctx context.Context, userID, roomID, gameName string, score int64) (stored *entities.Score, improved bool, err error)

	// GetLeaderboard ranks distinct users by best score descending.
	// Ties go to the score reached first, then to the lower user ID.
	GetLeaderboard(ctx context.Context, roomID, gameName string, limit int) ([]*entities.LeaderboardEntry, error)
}

// ReferralRepository defines the interface for referral data access
type ReferralRepository interface {
	// Create inserts a referral and fills in its generated fields
	Create(ctx context.Context, referral *entities.Referral) error

	// GetByReferredUser retrieves the referral for a referred user
	GetByReferredUser(ctx context.Context, userID string) (*entities.Referral, error)

	// GetByReferredUserForUpdate retrieves the referral and locks the row
	GetByReferredUserForUpdate(ctx context.Context, userID string) (*entities.Referral, error)

	// ListByReferrer returns every referral made by a user
	ListByReferrer(ctx context.Context, referrerID string) ([]*entities.Referral, error)

	// MarkRewarded sets reward_given if it is still false
	MarkRewarded(ctx context.Context, id int64, rewardAmount int64, firstDepositAt time.Time) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes buffered events. Call only after commit.
	Flush(ctx context.Context) error

	// Discard drops buffered events. Call on rollback.
	Discard()
}
