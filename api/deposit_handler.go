package api

import (
	"net/http"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type depositRequest struct {
	UserID           string            `json:"userId" binding:"required"`
	Amount           int64             `json:"amount" binding:"required,gt=0"`
	Currency         entities.Currency `json:"currency" binding:"omitempty,oneof=cash coin"`
	PaymentReference string            `json:"paymentReference" binding:"required,max=100"`
}

// DepositHandler receives verified payments from the payment collaborator
type DepositHandler struct {
	deposits interfaces.DepositService
}

func NewDepositHandler(deposits interfaces.DepositService) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func (h *DepositHandler) RecordDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.deposits.RecordDeposit(c.Request.Context(), interfaces.DepositRequest{
		UserID:           req.UserID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
