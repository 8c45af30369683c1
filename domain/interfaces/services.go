package interfaces

import (
	"context"
	"time"

	"arena-ledger/domain/entities"
)

// LedgerRequest is a typed credit or debit instruction
type LedgerRequest struct {
	AccountID   string
	Amount      int64
	Description string
	Reference   string
	Currency    entities.Currency
	Metadata    map[string]any
}

// LedgerEntryResult is the outcome of a credit or debit.
// Replayed is true when the reference had already been applied and nothing changed.
type LedgerEntryResult struct {
	Transaction *entities.WalletTransaction `json:"transaction"`
	Replayed    bool                        `json:"replayed"`
}

// WalletService is the only component allowed to change balances
type WalletService interface {
	Credit(ctx context.Context, req LedgerRequest) (*LedgerEntryResult, error)
	Debit(ctx context.Context, req LedgerRequest) (*LedgerEntryResult, error)

	// CreditHouse credits the house account; req.AccountID is ignored
	CreditHouse(ctx context.Context, req LedgerRequest) (*LedgerEntryResult, error)

	GetBalance(ctx context.Context, userID string) (*entities.Balance, error)
	GetTransactions(ctx context.Context, accountID string, limit int) ([]*entities.WalletTransaction, error)
	GetHouseBalance(ctx context.Context) (*entities.Balance, error)

	// Reconcile compares stored balances with the ledger for both currencies
	Reconcile(ctx context.Context, accountID string) ([]entities.Reconciliation, error)
}

// GameRegistry knows which games accept score submissions
type GameRegistry interface {
	Register(game string)
	IsSupported(game string) bool
	Games() []string
}

// CreateMatchRequest opens a match with its first player seated
type CreateMatchRequest struct {
	Game       string
	EntryFee   int64
	Currency   entities.Currency
	PlayerID   string
	PlayerName string
}

// SubmitMatchScoreRequest reports one player's score
type SubmitMatchScoreRequest struct {
	MatchID    string
	PlayerID   string
	PlayerName string
	Score      int64
	Game       string
}

// MatchResult describes the match after a submission. Settled is true when this
// call recorded the final outcome; AlreadySettled when the match was completed before it.
type MatchResult struct {
	Match          *entities.Match             `json:"match"`
	Settled        bool                        `json:"settled"`
	AlreadySettled bool                        `json:"alreadySettled"`
	Payout         int64                       `json:"payout"`
	Transaction    *entities.WalletTransaction `json:"transaction,omitempty"`
}

// MatchSettlementService turns two score submissions into at most one payout
type MatchSettlementService interface {
	CreateMatch(ctx context.Context, req CreateMatchRequest) (*entities.Match, error)
	SubmitScore(ctx context.Context, req SubmitMatchScoreRequest) (*MatchResult, error)
	GetMatch(ctx context.Context, matchID string) (*entities.Match, error)
}

// CreateTournamentRequest schedules a tournament
type CreateTournamentRequest struct {
	Name           string
	GameName       string
	RoomID         string
	TournamentType entities.Currency
	PrizePool      int64
	StartsAt       time.Time
	EndsAt         time.Time
}

// SubmitTournamentScoreRequest reports a participant's score
type SubmitTournamentScoreRequest struct {
	TournamentID int64
	UserID       string
	Score        int64
}

// TournamentScoreResult is the participant's best score after a submission
type TournamentScoreResult struct {
	Score    *entities.Score `json:"score"`
	Improved bool            `json:"improved"`
}

// PrizeDistributionResult describes a tournament payout
type PrizeDistributionResult struct {
	TournamentID   int64                  `json:"tournamentId"`
	Currency       entities.Currency      `json:"currency"`
	PrizePool      int64                  `json:"prizePool"`
	Payouts        []entities.PrizePayout `json:"payouts"`
	HouseAmount    int64                  `json:"houseAmount"`
	AlreadySettled bool                   `json:"alreadySettled"`
	Skipped        bool                   `json:"skipped"`
}

// TournamentSettlementService runs the tournament lifecycle and pays prizes exactly once
type TournamentSettlementService interface {
	CreateTournament(ctx context.Context, req CreateTournamentRequest) (*entities.Tournament, error)
	StartTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error)
	SubmitScore(ctx context.Context, req SubmitTournamentScoreRequest) (*TournamentScoreResult, error)

	// CloseTournament completes an ongoing tournament; closed is false if it was not ongoing
	CloseTournament(ctx context.Context, tournamentID int64) (tournament *entities.Tournament, closed bool, err error)

	DistributePrizes(ctx context.Context, tournamentID int64) (*PrizeDistributionResult, error)
	GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error)
	GetLeaderboard(ctx context.Context, tournamentID int64, limit int) ([]*entities.LeaderboardEntry, error)
}

// ReferralRewardResult describes a first-deposit referral payout
type ReferralRewardResult struct {
	Referral       *entities.Referral `json:"referral,omitempty"`
	Rewarded       bool               `json:"rewarded"`
	AlreadySettled bool               `json:"alreadySettled"`
	ReferrerReward int64              `json:"referrerReward"`
	RefereeReward  int64              `json:"refereeReward"`
}

// ReferralService issues referral rewards
type ReferralService interface {
	// GetReferralCode returns the user's code, assigning one on first use
	GetReferralCode(ctx context.Context, userID string) (string, error)
	ApplyReferralCode(ctx context.Context, userID, code string) (*entities.Referral, error)
	ProcessFirstDeposit(ctx context.Context, userID string) (*ReferralRewardResult, error)
	GetReferral(ctx context.Context, userID string) (*entities.Referral, error)
	ListReferrals(ctx context.Context, referrerID string) ([]*entities.Referral, error)
}

// DepositRequest is a verified payment to be credited
type DepositRequest struct {
	UserID           string
	Amount           int64
	Currency         entities.Currency
	PaymentReference string
}

// DepositResult is the outcome of crediting a verified payment
type DepositResult struct {
	Transaction  *entities.WalletTransaction `json:"transaction"`
	Replayed     bool                        `json:"replayed"`
	FirstDeposit bool                        `json:"firstDeposit"` // true when this was the user's first deposit
	Referral     *ReferralRewardResult       `json:"referral,omitempty"`
}

// DepositService credits verified payments
type DepositService interface {
	RecordDeposit(ctx context.Context, req DepositRequest) (*DepositResult, error)
}
