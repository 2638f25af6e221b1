package handlers

import (
	"errors"
	"net/http"

	"creator-market/internal/auth"
	"creator-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReferralHandler struct {
	commissionService *services.CommissionService
}

func NewReferralHandler(commissionService *services.CommissionService) *ReferralHandler {
	return &ReferralHandler{commissionService: commissionService}
}

// GetBalance returns the referrer's available commission balance
func (h *ReferralHandler) GetBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.commissionService.AvailableBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"available_cents": balance,
		},
	})
}

// GetCommissions returns the referrer's commissions
func (h *ReferralHandler) GetCommissions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	commissions, err := h.commissionService.GetUserCommissions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list commissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commissions,
		"count":   len(commissions),
	})
}

// GetWithdrawals returns the referrer's withdrawal invoices
func (h *ReferralHandler) GetWithdrawals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	withdrawals, err := h.commissionService.GetUserWithdrawals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list withdrawals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawals,
		"count":   len(withdrawals),
	})
}

// RequestWithdrawal requests a withdrawal against the available balance
func (h *ReferralHandler) RequestWithdrawal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		AmountCents decimal.Decimal `json:"amount_cents" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawal, err := h.commissionService.RequestWithdrawal(userID, req.AmountCents)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInsufficientBalance) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawal,
	})
}

// MarkWithdrawalPaid settles a withdrawal invoice (brand side)
func (h *ReferralHandler) MarkWithdrawalPaid(c *gin.Context) {
	withdrawalID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commissionService.MarkWithdrawalPaid(withdrawalID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrAlreadyPaid) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Withdrawal marked paid",
	})
}
