package handlers

import (
	"net/http"

	"creator-market/internal/jobs"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	refreshJob *jobs.StatsRefreshJob
}

func NewAdminHandler(refreshJob *jobs.StatsRefreshJob) *AdminHandler {
	return &AdminHandler{refreshJob: refreshJob}
}

// TriggerRefresh fires one stats refresh cycle on demand
func (h *AdminHandler) TriggerRefresh(c *gin.Context) {
	if !h.refreshJob.TriggerNow() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A refresh cycle is already running",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Stats refresh triggered",
	})
}

// GetRefreshReport returns the most recent cycle report
func (h *AdminHandler) GetRefreshReport(c *gin.Context) {
	report := h.refreshJob.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    nil,
			"message": "No cycle has completed yet",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
