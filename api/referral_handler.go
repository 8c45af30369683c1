package api

import (
	"net/http"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type applyReferralRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

type ReferralHandler struct {
	referrals interfaces.ReferralService
}

func NewReferralHandler(referrals interfaces.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

func (h *ReferralHandler) GetCode(c *gin.Context) {
	userID := c.Param("id")
	code, err := h.referrals.GetReferralCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "referralCode": code})
}

func (h *ReferralHandler) ApplyCode(c *gin.Context) {
	var req applyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	referral, err := h.referrals.ApplyReferralCode(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, referral)
}

// GetReferral returns the referral through which the user joined
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	referral, err := h.referrals.GetReferral(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, referral)
}

// ListReferrals returns the users the given user has referred
func (h *ReferralHandler) ListReferrals(c *gin.Context) {
	referrals, err := h.referrals.ListReferrals(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if referrals == nil {
		referrals = []*entities.Referral{}
	}
	c.JSON(http.StatusOK, gin.H{"referrals": referrals})
}
