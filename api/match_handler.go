package api

import (
	"net/http"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createMatchRequest struct {
	Game       string            `json:"game" binding:"required"`
	EntryFee   int64             `json:"entryFee" binding:"gte=0"`
	Currency   entities.Currency `json:"currency" binding:"omitempty,oneof=cash coin"`
	PlayerID   string            `json:"playerId" binding:"required"`
	PlayerName string            `json:"playerName"`
}

type submitMatchScoreRequest struct {
	PlayerID   string `json:"playerId" binding:"required"`
	PlayerName string `json:"playerName"`
	Score      *int64 `json:"score" binding:"required"`
	Game       string `json:"game" binding:"required"`
}

type MatchHandler struct {
	matches interfaces.MatchSettlementService
}

func NewMatchHandler(matches interfaces.MatchSettlementService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	match, err := h.matches.CreateMatch(c.Request.Context(), interfaces.CreateMatchRequest{
		Game:       req.Game,
		EntryFee:   req.EntryFee,
		Currency:   req.Currency,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// SubmitScore records a player's score. The second score settles the match;
// resubmissions after that return the recorded outcome.
func (h *MatchHandler) SubmitScore(c *gin.Context) {
	var req submitMatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.matches.SubmitScore(c.Request.Context(), interfaces.SubmitMatchScoreRequest{
		MatchID:    c.Param("id"),
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Score:      *req.Score,
		Game:       req.Game,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matches.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
