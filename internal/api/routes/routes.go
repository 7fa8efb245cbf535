package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vest-service/vest_service/docs"
	"github.com/vest-service/vest_service/internal/api/handlers"
	"github.com/vest-service/vest_service/internal/api/middleware"
	"github.com/vest-service/vest_service/internal/infrastructure/di"
	"github.com/vest-service/vest_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters for security
	router.Use(tracing.HTTPMiddleware()) // Tracing should be early in the chain
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.InputValidation())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	// Initialize handlers with services from DI container
	coreHandlers := handlers.NewCoreHandlers(container.DB, container.RedisClient, container.Logger)
	planHandlers := handlers.NewPlanHandlers(container.GetPlanService(), container.Logger)
	investmentHandlers := handlers.NewInvestmentHandlers(container.GetInvestmentService(), container.Logger)
	userHandlers := handlers.NewUserHandlers(container.GetInvestmentService(), container.Logger)
	authHandlers := handlers.NewAuthHandlers(container.Config, container.Logger)

	// Health checks (no auth required)
	router.GET("/health", coreHandlers.Health)
	router.GET("/ready", coreHandlers.Ready)
	router.GET("/live", coreHandlers.Live)
	router.GET("/version", coreHandlers.Version)
	router.GET("/metrics", coreHandlers.Metrics)

	// Swagger documentation (development only)
	if container.Config.Environment != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	adminOnly := middleware.AdminAuth(container.Config, container.Logger)

	// Public plan catalog and investing surface
	plans := router.Group("/plans")
	{
		plans.GET("", planHandlers.ListPlans)
		plans.GET("/:id", planHandlers.GetPlan)
		plans.POST("/invest", investmentHandlers.Invest)
		plans.GET("/investment/:id/progress", investmentHandlers.GetInvestmentProgress)
		plans.GET("/investments/active", investmentHandlers.ListActiveInvestments)
	}

	// Administrative plan and lifecycle management
	plansAdmin := router.Group("/plans", adminOnly)
	{
		plansAdmin.POST("", planHandlers.CreatePlan)
		plansAdmin.PUT("/:id", planHandlers.UpdatePlan)
		plansAdmin.DELETE("/:id", planHandlers.DeletePlan)
		plansAdmin.PUT("/investment/:id", investmentHandlers.UpdateInvestmentStatus)
		plansAdmin.POST("/investments/complete-automation", investmentHandlers.CompleteInvestments)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/admin/login", authHandlers.AdminLogin)
		v1.GET("/users/:id/balance", userHandlers.GetBalance)

		// Registration and deposits mint spendable balance, so both
		// sit behind the admin token.
		usersAdmin := v1.Group("/users", adminOnly)
		{
			usersAdmin.POST("", userHandlers.CreateUser)
			usersAdmin.POST("/:id/deposit", userHandlers.Deposit)
		}
	}

	return router
}
