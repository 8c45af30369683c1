package api

import (
	"net/http"
	"strconv"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type ledgerEntryRequest struct {
	AccountID   string            `json:"accountId" binding:"required"`
	Amount      int64             `json:"amount" binding:"required,gt=0"`
	Currency    entities.Currency `json:"currency" binding:"required,oneof=cash coin"`
	Reference   string            `json:"reference" binding:"required,max=128"`
	Description string            `json:"description" binding:"max=255"`
	Metadata    map[string]any    `json:"metadata"`
}

func (r ledgerEntryRequest) toLedgerRequest() interfaces.LedgerRequest {
	return interfaces.LedgerRequest{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: r.Description,
		Reference:   r.Reference,
		Currency:    r.Currency,
		Metadata:    r.Metadata,
	}
}

// LedgerHandler exposes balances and direct ledger entries
type LedgerHandler struct {
	wallet interfaces.WalletService
}

func NewLedgerHandler(wallet interfaces.WalletService) *LedgerHandler {
	return &LedgerHandler{wallet: wallet}
}

// Credit applies a credit. Repeating a reference returns the original entry.
func (h *LedgerHandler) Credit(c *gin.Context) {
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.wallet.Credit(c.Request.Context(), req.toLedgerRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(entryStatus(result), result)
}

func (h *LedgerHandler) Debit(c *gin.Context) {
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.wallet.Debit(c.Request.Context(), req.toLedgerRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(entryStatus(result), result)
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	userID := c.Param("id")
	balance, err := h.wallet.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountId": userID, "balance": balance})
}

func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	transactions, err := h.wallet.GetTransactions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if transactions == nil {
		transactions = []*entities.WalletTransaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *LedgerHandler) GetHouseBalance(c *gin.Context) {
	balance, err := h.wallet.GetHouseBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountId": entities.HouseAccountID, "balance": balance})
}

// Reconcile reports whether stored balances match the ledger
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	results, err := h.wallet.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	balanced := true
	for _, r := range results {
		balanced = balanced && r.Balanced()
	}
	c.JSON(http.StatusOK, gin.H{"balanced": balanced, "currencies": results})
}

func entryStatus(result *interfaces.LedgerEntryResult) int {
	if result.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// parseLimit reads ?limit=, writing a 400 and returning ok=false when it is malformed
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		respondError(c, entities.NewSettlementError(entities.ErrInvalidInput, "limit must be a positive integer"))
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}
