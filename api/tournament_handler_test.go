package api

import (
	"net/http"
	"testing"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTournamentHandler_CreateTournament(t *testing.T) {
	s := newTestServer(t)

	startsAt := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	endsAt := startsAt.Add(2 * time.Hour)
	s.tournaments.On("CreateTournament", mock.Anything, interfaces.CreateTournamentRequest{
		Name:           "Friday Trivia",
		GameName:       "trivia",
		RoomID:         "room-7",
		TournamentType: entities.CurrencyCash,
		PrizePool:      1000,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
	}).Return(&entities.Tournament{ID: 7, Name: "Friday Trivia", Status: entities.TournamentStatusUpcoming}, nil).Once()

	w, body := s.do(t, http.MethodPost, "/v1/tournaments", map[string]any{
		"name":           "Friday Trivia",
		"gameName":       "trivia",
		"roomId":         "room-7",
		"tournamentType": "cash",
		"prizePool":      1000,
		"startsAt":       startsAt.Format(time.RFC3339),
		"endsAt":         endsAt.Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "upcoming", body["status"])
}

func TestTournamentHandler_CreateRejectsEndBeforeStart(t *testing.T) {
	s := newTestServer(t)

	startsAt := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	w, _ := s.do(t, http.MethodPost, "/v1/tournaments", map[string]any{
		"name":           "Backwards",
		"gameName":       "trivia",
		"tournamentType": "coin",
		"startsAt":       startsAt.Format(time.RFC3339),
		"endsAt":         startsAt.Add(-time.Hour).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTournamentHandler_InvalidID(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/tournaments/abc", "/v1/tournaments/-1", "/v1/tournaments/0/leaderboard"} {
		w, body := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, string(entities.ErrInvalidInput), body["code"], path)
	}
}

func TestTournamentHandler_SubmitScore(t *testing.T) {
	s := newTestServer(t)

	s.tournaments.On("SubmitScore", mock.Anything, interfaces.SubmitTournamentScoreRequest{
		TournamentID: 7, UserID: "dana", Score: 42,
	}).Return(&interfaces.TournamentScoreResult{
		Score:    &entities.Score{UserID: "dana", Score: 42},
		Improved: true,
	}, nil).Once()

	w, body := s.do(t, http.MethodPost, "/v1/tournaments/7/scores", map[string]any{"userId": "dana", "score": 42})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["improved"])
}

func TestTournamentHandler_StartAndClose(t *testing.T) {
	s := newTestServer(t)

	s.tournaments.On("StartTournament", mock.Anything, int64(7)).
		Return(&entities.Tournament{ID: 7, Status: entities.TournamentStatusOngoing}, nil).Once()
	s.tournaments.On("CloseTournament", mock.Anything, int64(7)).
		Return(&entities.Tournament{ID: 7, Status: entities.TournamentStatusCompleted}, false, nil).Once()

	w, body := s.do(t, http.MethodPost, "/v1/tournaments/7/start", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ongoing", body["status"])

	w, body = s.do(t, http.MethodPost, "/v1/tournaments/7/close", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["closed"])
}

func TestTournamentHandler_DistributePrizes(t *testing.T) {
	s := newTestServer(t)

	s.tournaments.On("DistributePrizes", mock.Anything, int64(7)).Return(&interfaces.PrizeDistributionResult{
		TournamentID: 7,
		Currency:     entities.CurrencyCash,
		PrizePool:    1000,
		Payouts: []entities.PrizePayout{
			{Rank: 1, UserID: "a", Amount: 500},
			{Rank: 2, UserID: "b", Amount: 200},
			{Rank: 3, UserID: "c", Amount: 100},
		},
		HouseAmount: 200,
	}, nil).Once()

	w, body := s.do(t, http.MethodPost, "/v1/tournaments/7/distribute", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(200), body["houseAmount"])
	assert.Len(t, body["payouts"], 3)
	assert.Equal(t, false, body["alreadySettled"])
}

func TestTournamentHandler_DistributeBeforeClose(t *testing.T) {
	s := newTestServer(t)

	s.tournaments.On("DistributePrizes", mock.Anything, int64(8)).Return(&interfaces.PrizeDistributionResult{
		TournamentID: 8,
		Currency:     entities.CurrencyCoin,
		PrizePool:    1000,
		Skipped:      true,
	}, nil).Once()

	w, body := s.do(t, http.MethodPost, "/v1/tournaments/8/distribute", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["skipped"])
	assert.Equal(t, false, body["alreadySettled"])
	assert.Empty(t, body["payouts"])
	assert.Equal(t, float64(0), body["houseAmount"])
}

func TestTournamentHandler_Leaderboard(t *testing.T) {
	s := newTestServer(t)

	s.tournaments.On("GetLeaderboard", mock.Anything, int64(7), 3).Return([]*entities.LeaderboardEntry{
		{Rank: 1, UserID: "a", Score: 90},
		{Rank: 2, UserID: "b", Score: 70},
	}, nil).Once()

	w, body := s.do(t, http.MethodGet, "/v1/tournaments/7/leaderboard?limit=3", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["leaderboard"], 2)
}
