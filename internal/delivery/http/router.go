package http

import (
	"time"

	"CivicLens/internal/delivery/http/controllers"
	"CivicLens/internal/delivery/http/controllers/admin"
	"CivicLens/internal/delivery/http/controllers/auth"
	"CivicLens/internal/delivery/http/controllers/middleware"
	"CivicLens/internal/delivery/http/controllers/report"
	"CivicLens/internal/delivery/ws"
	"CivicLens/internal/identity"
	"CivicLens/internal/service"
	"CivicLens/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	authMW := middleware.NewAuthMiddlewareProvider(l, u.AuthService)

	statusController := controllers.NewStatusHandler()
	authController := auth.NewAuthHandler(l, u.AuthService)
	reportController := report.NewReportHandler(l, u.ReportService, u.AuthorityService)
	moderationController := report.NewModerationHandler(l, u.ModerationService, u.ReportService)
	categoryController := admin.NewCategoryHandler(l, u.CategoryService)
	authorityController := admin.NewAuthorityHandler(l, u.AuthorityService)
	userController := admin.NewUserHandler(l, u.UserService)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authMW.AuthMiddleware, authController.Me)

		v1.GET("/events", authMW.AuthMiddleware, hub.Handle)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authController.Login)
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/refresh", authController.Refresh)
		}

		v1.GET("/categories", categoryController.ListCategories)
		v1.GET("/flag-types", moderationController.ListFlagTypes)
		v1.GET("/departments", authorityController.ListDepartments)
		v1.GET("/authorities", authorityController.ListAuthorities)
		v1.GET("/authorities/:authority_id", authorityController.GetAuthority)

		reports := v1.Group("/reports", authMW.AuthMiddleware)
		{
			reports.GET("", reportController.ListReports)
			reports.GET("/:report_id", reportController.GetReport)

			citizen := reports.Group("", middleware.RequireRoles(identity.RoleCitizen))
			{
				citizen.POST("", reportController.CreateReport)
				citizen.PUT("/:report_id/image", reportController.UploadImage)
				citizen.POST("/:report_id/flag", moderationController.FlagReport)
			}

			staff := reports.Group("", middleware.RequireRoles(identity.RoleAuthority, identity.RoleAdmin))
			{
				staff.PATCH("/:report_id/status", reportController.UpdateStatus)
			}

			adminOnly := reports.Group("", middleware.RequireRoles(identity.RoleAdmin))
			{
				adminOnly.PATCH("/:report_id/hide", moderationController.HideReport)
				adminOnly.PATCH("/:report_id/authority", reportController.AssignAuthority)
				adminOnly.DELETE("/:report_id/flags/:flag_id", moderationController.DeleteFlag)
				adminOnly.GET("/flagged", moderationController.FlaggedReports)
			}
		}

		adminGroup := v1.Group("/admin", authMW.AuthMiddleware, middleware.RequireRoles(identity.RoleAdmin))
		{
			adminGroup.POST("/categories", categoryController.CreateCategory)
			adminGroup.PUT("/categories/:category_id", categoryController.UpdateCategory)
			adminGroup.DELETE("/categories/:category_id", categoryController.DeleteCategory)

			adminGroup.POST("/authorities", authorityController.CreateAuthority)
			adminGroup.PUT("/authorities/:authority_id", authorityController.UpdateAuthority)
			adminGroup.DELETE("/authorities/:authority_id", authorityController.DeleteAuthority)
			adminGroup.PUT("/authorities/:authority_id/categories", authorityController.SetHandledCategories)
			adminGroup.POST("/authorities/:authority_id/users", authorityController.LinkUser)
			adminGroup.DELETE("/authority-users/:user_id", authorityController.UnlinkUser)
			adminGroup.GET("/authority-users", authorityController.ListLinks)

			adminGroup.POST("/departments", authorityController.CreateDepartment)

			adminGroup.GET("/users", userController.ListUsers)
			adminGroup.PUT("/users/:user_id/roles", userController.SetUserRoles)
		}
	}
	return r
}
