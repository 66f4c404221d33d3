package app

import (
	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.Identify(a.db, a.cookies))

	v1 := router.Group("/api/v1")
	{
		// Health check routes (public)
		health := v1.Group("/health")
		{
			health.GET("/readiness", a.HandleReadiness)
			health.GET("/liveness", a.HandleLiveness)
		}

		// Auth routes (register/login/forgot/reset are public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", a.HandleRegister)
			auth.POST("/login", a.HandleLogin)
			auth.POST("/logout", middleware.RequireAuth(), a.HandleLogout)
			auth.GET("/user", middleware.RequireAuth(), a.HandleCurrentUser)
			auth.POST("/forgot-password", a.HandleForgotPassword)
			auth.POST("/reset-password", a.HandleResetPassword)
		}

		// Self-service routes (authenticated)
		me := v1.Group("")
		me.Use(middleware.RequireAuth())
		{
			me.GET("/my-profile", a.HandleGetMyProfile)
			me.POST("/my-profile", a.HandleCreateMyProfile)
			me.PATCH("/my-profile", a.HandleUpdateMyProfile)

			me.PATCH("/account", a.HandleUpdateAccount)
			me.POST("/account/change-password", a.HandleChangePassword)
		}

		// Directory routes (reads authenticated, mutations admin)
		alumni := v1.Group("/alumni")
		alumni.Use(middleware.RequireAuth())
		{
			alumni.GET("", a.HandleListAlumni)
			alumni.GET("/statistics", a.HandleAlumniStatistics)
			alumni.GET("/search-by-company", a.HandleAlumniSearchByCompany)
			alumni.GET("/:id", a.HandleGetAlumnus)

			alumni.POST("", middleware.Admin(), a.HandleCreateAlumnus)
			alumni.PATCH("/:id", middleware.Admin(), a.HandleUpdateAlumnus)
			alumni.DELETE("/:id", middleware.Admin(), a.HandleDeleteAlumnus)
			alumni.POST("/:id/record-engagement", middleware.Admin(), a.HandleAlumnusRecordEngagement)
		}

		partners := v1.Group("/partners")
		partners.Use(middleware.RequireAuth())
		{
			partners.GET("", a.HandleListPartners)
			partners.GET("/statistics", a.HandlePartnerStatistics)
			partners.GET("/top-engaged", a.HandleTopEngagedPartners)
			partners.GET("/:id", a.HandleGetPartner)

			partners.POST("", middleware.Admin(), a.HandleCreatePartner)
			partners.PATCH("/:id", middleware.Admin(), a.HandleUpdatePartner)
			partners.DELETE("/:id", middleware.Admin(), a.HandleDeletePartner)
			partners.POST("/:id/record-engagement", middleware.Admin(), a.HandlePartnerRecordEngagement)
		}

		engagements := v1.Group("/engagements")
		engagements.Use(middleware.RequireAuth())
		{
			engagements.GET("", a.HandleListEngagements)
			engagements.GET("/recent", a.HandleRecentEngagements)
			engagements.GET("/by-type", a.HandleEngagementsByType)
			engagements.GET("/statistics", a.HandleEngagementStatistics)
			engagements.GET("/:id", a.HandleGetEngagement)

			engagements.POST("", middleware.Admin(), a.HandleCreateEngagement)
			engagements.DELETE("/:id", middleware.Admin(), a.HandleDeleteEngagement)
		}

		reports := v1.Group("/reports")
		reports.Use(middleware.RequireAuth(), middleware.Admin())
		{
			reports.GET("", a.HandleListReports)
			reports.GET("/:id", a.HandleGetReport)
			reports.GET("/:id/pdf", a.HandleReportPDF)
			reports.DELETE("/:id", a.HandleDeleteReport)

			reports.POST("/alumni-summary", a.HandleGenerateAlumniSummary)
			reports.POST("/partner-summary", a.HandleGeneratePartnerSummary)
			reports.POST("/engagement-analytics", a.HandleGenerateEngagementAnalytics)
		}

		// Admin routes (protected - requires admin role)
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.Admin())
		{
			admin.GET("/users", a.HandleListUsers)
			admin.POST("/users/:id/toggle-status", a.HandleToggleUserStatus)
			admin.GET("/audit-logs", a.HandleListAuditLogs)
			admin.POST("/alumni/bulk-action", a.HandleAlumniBulkAction)
			admin.POST("/partners/bulk-action", a.HandlePartnerBulkAction)
			admin.GET("/export/:data_type", a.HandleExportData)
		}
	}

	return router
}
