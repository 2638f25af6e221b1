package handlers

import (
	"net/http"
	"strconv"

	"creator-market/internal/auth"
	"creator-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	rewardService   *services.RewardService
}

func NewCampaignHandler(campaignService *services.CampaignService, rewardService *services.RewardService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		rewardService:   rewardService,
	}
}

// ListCampaigns returns published campaigns
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.campaignService.ListPublishedCampaigns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    campaigns,
		"count":   len(campaigns),
	})
}

// GetCampaign returns a single campaign with its reward tiers
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    campaign,
	})
}

// CreateCampaign creates a draft campaign for the authenticated brand
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	brandID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		BudgetCents decimal.Decimal `json:"budget_cents"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(brandID, req.Title, req.Description, req.BudgetCents)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    campaign,
	})
}

// ListBrandCampaigns returns the authenticated brand's campaigns
func (h *CampaignHandler) ListBrandCampaigns(c *gin.Context) {
	brandID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaigns, err := h.campaignService.ListBrandCampaigns(brandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    campaigns,
		"count":   len(campaigns),
	})
}

// UpdateCampaignStatus publishes or closes a campaign
func (h *CampaignHandler) UpdateCampaignStatus(c *gin.Context) {
	brandID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaignID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.campaignService.UpdateCampaignStatus(campaignID, brandID, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Campaign status updated",
	})
}

// AddRewardTier adds a reward tier to a campaign
func (h *CampaignHandler) AddRewardTier(c *gin.Context) {
	brandID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaignID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ViewsTarget         int64           `json:"views_target" binding:"required"`
		AmountCents         decimal.Decimal `json:"amount_cents" binding:"required"`
		AllowMultipleVideos bool            `json:"allow_multiple_videos"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier, err := h.campaignService.AddRewardTier(campaignID, brandID, req.ViewsTarget, req.AmountCents, req.AllowMultipleVideos)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tier,
	})
}

// DeleteRewardTier removes an uninvoiced reward tier
func (h *CampaignHandler) DeleteRewardTier(c *gin.Context) {
	brandID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tierID, ok := parseIDParam(c, "tier_id")
	if !ok {
		return
	}

	if err := h.campaignService.DeleteRewardTier(tierID, brandID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reward tier deleted",
	})
}

// GetRewardStatus returns the authenticated creator's standing against a
// campaign's reward tiers
func (h *CampaignHandler) GetRewardStatus(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaignID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	statuses, err := h.rewardService.ComputeRewardStatus(campaignID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute reward status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    statuses,
	})
}

// parseIDParam parses a numeric path parameter, writing the error response on
// failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
