package events

import "arena-ledger/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeMatchSettled      EventType = "match_settled"
	EventTypePrizesDistributed EventType = "prizes_distributed"
	EventTypeReferralRewarded  EventType = "referral_rewarded"
	EventTypeTournamentClosed  EventType = "tournament_closed"
	EventTypeDepositConfirmed  EventType = "deposit_confirmed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every new ledger entry
type BalanceChangeEvent struct {
	AccountID       string                   `json:"accountId"`
	Currency        entities.Currency        `json:"currency"`
	OldBalance      int64                    `json:"oldBalance"`
	NewBalance      int64                    `json:"newBalance"`
	ChangeAmount    int64                    `json:"changeAmount"`
	TransactionType entities.TransactionType `json:"transactionType"`
	Reference       string                   `json:"reference"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// MatchSettledEvent is emitted when a match reaches its final state
type MatchSettledEvent struct {
	MatchID  string  `json:"matchId"`
	Game     string  `json:"game"`
	Winner   *string `json:"winner"`
	IsDraw   bool    `json:"isDraw"`
	Payout   int64   `json:"payout"`
	EntryFee int64   `json:"entryFee"`
}

func (e MatchSettledEvent) Type() EventType {
	return EventTypeMatchSettled
}

// TournamentClosedEvent is emitted when a tournament stops accepting scores
type TournamentClosedEvent struct {
	TournamentID int64  `json:"tournamentId"`
	Name         string `json:"name"`
}

func (e TournamentClosedEvent) Type() EventType {
	return EventTypeTournamentClosed
}

// PrizesDistributedEvent is emitted once per tournament after payouts
type PrizesDistributedEvent struct {
	TournamentID int64                  `json:"tournamentId"`
	Name         string                 `json:"name"`
	Currency     entities.Currency      `json:"currency"`
	PrizePool    int64                  `json:"prizePool"`
	Payouts      []entities.PrizePayout `json:"payouts"`
	HouseAmount  int64                  `json:"houseAmount"`
}

func (e PrizesDistributedEvent) Type() EventType {
	return EventTypePrizesDistributed
}

// ReferralRewardedEvent is emitted when a referral pays out
type ReferralRewardedEvent struct {
	ReferralID     int64  `json:"referralId"`
	ReferrerID     string `json:"referrerId"`
	ReferredUserID string `json:"referredUserId"`
	ReferrerReward int64  `json:"referrerReward"`
	RefereeReward  int64  `json:"refereeReward"`
}

func (e ReferralRewardedEvent) Type() EventType {
	return EventTypeReferralRewarded
}

// DepositConfirmedEvent is emitted when a verified payment is credited
type DepositConfirmedEvent struct {
	UserID       string            `json:"userId"`
	Amount       int64             `json:"amount"`
	Currency     entities.Currency `json:"currency"`
	Reference    string            `json:"reference"`
	FirstDeposit bool              `json:"firstDeposit"`
}

func (e DepositConfirmedEvent) Type() EventType {
	return EventTypeDepositConfirmed
}
