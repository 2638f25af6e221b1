package handlers

import (
	"errors"
	"net/http"

	"creator-market/internal/auth"
	"creator-market/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoice raises an invoice for an unlocked reward tier
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		CampaignID   uint `json:"campaign_id" binding:"required"`
		RewardTierID uint `json:"reward_tier_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(req.CampaignID, userID, req.RewardTierID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrMissingAdsCode) || errors.Is(err, services.ErrTierLocked) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invoice,
	})
}

// GetInvoice returns one invoice
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(invoiceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invoice,
	})
}

// PayInvoice marks an invoice paid (brand side); paying twice fails
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.PayInvoice(invoiceID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrAlreadyPaid) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invoice paid",
	})
}
