package handlers

import (
	"net/http"

	"lifedrop/services/donor"
	"lifedrop/services/ledger"
	"lifedrop/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Donors donor.DonorService
	Ledger ledger.LedgerService
}

// SweepCooldownsHandler runs the cooldown sweep now instead of waiting for
// the schedule.
func (h *AdminHandler) SweepCooldownsHandler(c *gin.Context) {
	marked, err := h.Donors.SweepCooldowns(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("manual cooldown sweep", zap.Int("marked", marked))
	c.JSON(http.StatusOK, gin.H{"message": "Cooldown check complete", "notified": marked})
}

// VerifyLedgerHandler recomputes the whole chain. A broken chain is reported
// with 409 so monitors can alert on the status alone.
func (h *AdminHandler) VerifyLedgerHandler(c *gin.Context) {
	report, err := h.Ledger.Verify(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	status := http.StatusOK
	if !report.Valid {
		status = http.StatusConflict
	}
	c.JSON(status, report)
}
