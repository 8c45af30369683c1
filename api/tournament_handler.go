package api

import (
	"net/http"
	"strconv"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createTournamentRequest struct {
	Name           string            `json:"name" binding:"required,max=255"`
	GameName       string            `json:"gameName" binding:"required"`
	RoomID         string            `json:"roomId"`
	TournamentType entities.Currency `json:"tournamentType" binding:"required,oneof=cash coin"`
	PrizePool      int64             `json:"prizePool" binding:"gte=0"`
	StartsAt       time.Time         `json:"startsAt" binding:"required"`
	EndsAt         time.Time         `json:"endsAt" binding:"required,gtfield=StartsAt"`
}

type submitTournamentScoreRequest struct {
	UserID string `json:"userId" binding:"required"`
	Score  *int64 `json:"score" binding:"required"`
}

type TournamentHandler struct {
	tournaments interfaces.TournamentSettlementService
}

func NewTournamentHandler(tournaments interfaces.TournamentSettlementService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tournament, err := h.tournaments.CreateTournament(c.Request.Context(), interfaces.CreateTournamentRequest{
		Name:           req.Name,
		GameName:       req.GameName,
		RoomID:         req.RoomID,
		TournamentType: req.TournamentType,
		PrizePool:      req.PrizePool,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tournament)
}

func (h *TournamentHandler) GetTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	tournament, err := h.tournaments.GetTournament(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tournament)
}

func (h *TournamentHandler) StartTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	tournament, err := h.tournaments.StartTournament(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tournament)
}

func (h *TournamentHandler) SubmitScore(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	var req submitTournamentScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.tournaments.SubmitScore(c.Request.Context(), interfaces.SubmitTournamentScoreRequest{
		TournamentID: id,
		UserID:       req.UserID,
		Score:        *req.Score,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CloseTournament ends an ongoing tournament. Closing twice is not an error.
func (h *TournamentHandler) CloseTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	tournament, closed, err := h.tournaments.CloseTournament(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournament": tournament, "closed": closed})
}

func (h *TournamentHandler) DistributePrizes(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	result, err := h.tournaments.DistributePrizes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TournamentHandler) GetLeaderboard(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	entries, err := h.tournaments.GetLeaderboard(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*entities.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"tournamentId": id, "leaderboard": entries})
}

func tournamentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, entities.NewSettlementError(entities.ErrInvalidInput, "invalid tournament id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
