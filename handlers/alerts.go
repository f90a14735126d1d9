package handlers

import (
	"net/http"

	"lifedrop/middleware"
	"lifedrop/models"
	"lifedrop/services/lifecycle"
	"lifedrop/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AlertHandler serves donor alerts and the donor's side of the lifecycle.
type AlertHandler struct {
	Lifecycle lifecycle.LifecycleService
}

// actorFrom reads the caller set by the JWT middleware.
func actorFrom(c *gin.Context) lifecycle.Actor {
	return lifecycle.Actor{
		Subject: c.GetString(middleware.CtxSubject),
		Admin:   c.GetString(middleware.CtxRole) == utils.RoleAdmin,
	}
}

type sendAlertBody struct {
	RequestID string `json:"request_id" binding:"required"`
	DonorID   string `json:"donor_id" binding:"required"`
}

type respondBody struct {
	Status models.AlertStatus `json:"status" binding:"required"`
}

type donateBody struct {
	BagID string `json:"bag_id" binding:"required"`
}

// SendAlertHandler answers 201 when a new alert was created and 200 when the
// donor had already been alerted for the request.
func (h *AlertHandler) SendAlertHandler(c *gin.Context) {
	var body sendAlertBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	alert, created, err := h.Lifecycle.SendAlert(c.Request.Context(), actorFrom(c), body.RequestID, body.DonorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Already Alerted", "alert": alert})
		return
	}
	getLogger(c).Info("donor alerted", zap.String("alertID", alert.ID), zap.String("donorID", alert.DonorID))
	c.JSON(http.StatusCreated, gin.H{"message": "Alert Sent", "alert": alert})
}

func (h *AlertHandler) RespondHandler(c *gin.Context) {
	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	alert, err := h.Lifecycle.Respond(c.Request.Context(), actorFrom(c), c.Param("id"), body.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request " + string(alert.Status), "alert": alert})
}

func (h *AlertHandler) DonateHandler(c *gin.Context) {
	var body donateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	alert, err := h.Lifecycle.RecordDonation(c.Request.Context(), actorFrom(c), c.Param("id"), body.BagID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation Success!", "alert": alert})
}
