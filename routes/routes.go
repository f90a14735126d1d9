package routes

import (
	"time"

	"lifedrop/handlers"
	"lifedrop/middleware"
	"lifedrop/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes registers blood request endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(utils.RoleRequester), hb.Requests.CreateRequestHandler)
		api.GET("", middleware.RequireRole(utils.RoleRequester), hb.Requests.ListRequestsHandler)
		api.GET("/:id/matches", middleware.RequireRole(utils.RoleRequester), hb.Requests.GetMatchesHandler)
		api.POST("/:id/complete", middleware.RequireRole(utils.RoleRequester), hb.Requests.CompleteRequestHandler)
		api.GET("/:id/ledger", middleware.RequireRole(utils.RoleRequester, utils.RoleDonor), hb.Requests.GetLedgerHandler)
	}
}

// RegisterAlertRoutes registers the alert endpoints shared by requesters and donors.
func RegisterAlertRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/alerts")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(utils.RoleRequester), hb.Alerts.SendAlertHandler)
		api.POST("/:id/respond", middleware.RequireRole(utils.RoleDonor), hb.Alerts.RespondHandler)
		api.POST("/:id/donate", middleware.RequireRole(utils.RoleDonor), hb.Alerts.DonateHandler)
	}
}

// RegisterDonorRoutes registers the donor dashboard. Donors only see their own record.
func RegisterDonorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/donors/:id")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleDonor), middleware.RequireSelf("id"))
		api.GET("/stats", hb.Donors.StatsHandler)
		api.POST("/toggle", hb.Donors.ToggleHandler)
		api.PUT("/fcm-token", hb.Donors.UpdateFCMTokenHandler)
		api.GET("/alerts", hb.Donors.AlertsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleAdmin))
		adminGroup.POST("/cooldowns/sweep", hb.Admin.SweepCooldownsHandler)
		adminGroup.GET("/ledger/verify", hb.Admin.VerifyLedgerHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterRequestRoutes(r, hb)
	RegisterAlertRoutes(r, hb)
	RegisterDonorRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
