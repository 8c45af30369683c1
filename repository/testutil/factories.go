package testutil

import (
	"context"
	"testing"
	"time"

	"arena-ledger/database"
	"arena-ledger/domain/entities"

	"github.com/stretchr/testify/require"
)

// SeedUser creates a user with the given balances
func SeedUser(t *testing.T, db *database.DB, userID string, cash, coin int64) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, cash, coin) VALUES ($1, $2, $3)`,
		userID, cash, coin,
	)
	require.NoError(t, err)
}

// CreateTestTransaction creates a pending credit with default values
func CreateTestTransaction(accountID, reference string, amount int64) *entities.WalletTransaction {
	return &entities.WalletTransaction{
		AccountID:   accountID,
		Type:        entities.TransactionTypeCredit,
		Currency:    entities.CurrencyCash,
		Amount:      amount,
		Description: "test credit",
		Reference:   reference,
		Status:      entities.TransactionStatusPending,
		Metadata:    map[string]any{"test": true},
	}
}

// CreateTestMatch creates a waiting chess match
func CreateTestMatch(matchID string, entryFee int64) *entities.Match {
	return &entities.Match{
		MatchID:  matchID,
		Game:     "chess",
		EntryFee: entryFee,
		Currency: entities.CurrencyCash,
		Status:   entities.MatchStatusWaiting,
	}
}

// CreateTestTournament creates a cash trivia tournament running around now
func CreateTestTournament(name, roomID string, prizePool int64, status entities.TournamentStatus) *entities.Tournament {
	now := time.Now().UTC()
	return &entities.Tournament{
		Name:           name,
		GameName:       "trivia",
		RoomID:         roomID,
		TournamentType: entities.CurrencyCash,
		PrizePool:      prizePool,
		Status:         status,
		StartsAt:       now.Add(-time.Hour),
		EndsAt:         now.Add(time.Hour),
	}
}
