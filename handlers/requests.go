package handlers

import (
	"net/http"

	"lifedrop/middleware"
	"lifedrop/models"
	"lifedrop/services/ledger"
	"lifedrop/services/lifecycle"
	"lifedrop/services/matching"
	"lifedrop/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestHandler serves blood requests, their matches and their ledger trail.
type RequestHandler struct {
	Lifecycle lifecycle.LifecycleService
	Matching  matching.MatchingService
	Ledger    ledger.LedgerService
}

// CreateRequestHandler opens a new request. Requesters always file under
// their own id; admins may file for anyone.
func (h *RequestHandler) CreateRequestHandler(c *gin.Context) {
	logger := getLogger(c)

	var input models.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if c.GetString(middleware.CtxRole) != utils.RoleAdmin || input.RequesterID == "" {
		input.RequesterID = c.GetString(middleware.CtxSubject)
	}

	req, err := h.Lifecycle.CreateRequest(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request Created", "id": req.ID, "request": req})
}

// ListRequestsHandler lists the caller's own requests.
func (h *RequestHandler) ListRequestsHandler(c *gin.Context) {
	reqs, err := h.Lifecycle.ListRequests(c.Request.Context(), c.GetString(middleware.CtxSubject))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetMatchesHandler ranks donors for one of the caller's requests.
func (h *RequestHandler) GetMatchesHandler(c *gin.Context) {
	if _, err := h.Lifecycle.GetRequest(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	resp, err := h.Matching.FindMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) CompleteRequestHandler(c *gin.Context) {
	req, err := h.Lifecycle.CompleteRequest(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("request completed", zap.String("requestID", req.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Process Completed!", "status": req.Status})
}

// GetLedgerHandler returns the request's blocks in chain order.
func (h *RequestHandler) GetLedgerHandler(c *gin.Context) {
	blocks, err := h.Ledger.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}
