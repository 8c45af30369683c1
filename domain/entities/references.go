package entities

import "fmt"

// Idempotency keys for settlement credits. A key maps to at most one ledger entry.

func MatchReference(matchID string) string {
	return fmt.Sprintf("MATCH-%s", matchID)
}

func TournamentRankReference(tournamentID int64, rank int) string {
	return fmt.Sprintf("TOURNAMENT-%d-RANK-%d", tournamentID, rank)
}

func TournamentHouseReference(tournamentID int64) string {
	return fmt.Sprintf("TOURNAMENT-%d-HOUSE", tournamentID)
}

func ReferrerRewardReference(referrerID string, referralID int64) string {
	return fmt.Sprintf("REF-%s-%d", referrerID, referralID)
}

func RefereeRewardReference(userID string, referralID int64) string {
	return fmt.Sprintf("REFEREE-%s-%d", userID, referralID)
}
