package handlers

import (
	"net/http"

	"lifedrop/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func (h *HealthHandler) HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	if status.CheckedAt.IsZero() || status.Healthy {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": status})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "health": status})
}
