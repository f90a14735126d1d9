package handlers

import (
	"net/http"

	"lifedrop/services/donor"
	"lifedrop/utils"

	"github.com/gin-gonic/gin"
)

// DonorHandler serves the donor dashboard.
type DonorHandler struct {
	Donors donor.DonorService
}

type fcmTokenBody struct {
	FCMToken string `json:"fcm_token" binding:"required"`
}

func (h *DonorHandler) StatsHandler(c *gin.Context) {
	stats, err := h.Donors.ProfileStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DonorHandler) ToggleHandler(c *gin.Context) {
	available, err := h.Donors.ToggleAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status Updated", "is_available": available})
}

func (h *DonorHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var body fcmTokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Donors.UpdateFCMToken(c.Request.Context(), c.Param("id"), body.FCMToken); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token Saved"})
}

func (h *DonorHandler) AlertsHandler(c *gin.Context) {
	alerts, err := h.Donors.TargetedAlerts(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
