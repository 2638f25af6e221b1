package handlers

import (
	"errors"
	"net/http"

	"creator-market/internal/auth"
	"creator-market/internal/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CreateSubmission submits a video to a campaign
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		CampaignID      uint   `json:"campaign_id" binding:"required"`
		TikTokAccountID uint   `json:"tiktok_account_id" binding:"required"`
		VideoID         string `json:"video_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.CreateSubmission(req.CampaignID, userID, req.TikTokAccountID, req.VideoID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrDuplicateVideo) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    submission,
	})
}

// GetMySubmissions lists the authenticated creator's submissions
func (h *SubmissionHandler) GetMySubmissions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	submissions, err := h.submissionService.GetUserSubmissions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    submissions,
		"count":   len(submissions),
	})
}

// GetCampaignSubmissions lists a campaign's submissions for review
func (h *SubmissionHandler) GetCampaignSubmissions(c *gin.Context) {
	campaignID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissionService.GetCampaignSubmissions(campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    submissions,
		"count":   len(submissions),
	})
}

// ValidateSubmission accepts a pending submission
func (h *SubmissionHandler) ValidateSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.submissionService.ValidateSubmission(submissionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission accepted",
	})
}

// RefuseSubmission refuses a pending submission with a reason
func (h *SubmissionHandler) RefuseSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.submissionService.RefuseSubmission(submissionID, req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission refused",
	})
}

// DeleteSubmission removes a submission (creator: pending only, brand: any in
// their campaign)
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := auth.GetRole(c)

	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.submissionService.DeleteSubmission(submissionID, userID, role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission deleted",
	})
}

// SetAdsCode attaches an ads authorization code to an accepted submission
func (h *SubmissionHandler) SetAdsCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		AdsCode string `json:"ads_code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.submissionService.SetAdsCode(submissionID, userID, req.AdsCode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ads code saved",
	})
}
