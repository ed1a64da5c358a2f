package main

import (
	"fmt"
	"net/http"
	"os"
	"postureguard/internal/config"
	"postureguard/internal/database"
	"postureguard/internal/handlers"
	"postureguard/internal/logger"
	"postureguard/internal/middleware"
	"postureguard/internal/services"
	"postureguard/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           PostureGuard API
// @version         1.0
// @description     PostureGuard tracks posture measurements from camera-based detection, scores them, and alerts users when their posture degrades.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	settingsService := services.NewSettingsService(db)
	measurementService := services.NewMeasurementService(db)
	sessionService := services.NewSessionService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	postureHandler := handlers.NewPostureHandler(measurementService)
	videoHandler := handlers.NewVideoHandler(sessionService)

	// Per-user rate limiter shared by all protected routes
	limiter := middleware.NewRateLimiter(appConfig.RateLimitMax, appConfig.RateLimitWindow)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes: authentication first, then per-user rate limiting
	protected := api.Group("/")
	protected.Use(middleware.RequireAuth(db))
	protected.Use(limiter.RateLimit())

	// Account routes
	account := protected.Group("/auth")
	account.GET("/profile", authHandler.GetProfile)
	account.PUT("/profile", authHandler.UpdateProfile)
	account.POST("/change-password", authHandler.ChangePassword)
	account.DELETE("/account", authHandler.DeleteAccount)

	// Settings routes
	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.Get)
	settings.PUT("", settingsHandler.Update)
	settings.PUT("/notifications", settingsHandler.UpdateNotifications)
	settings.PUT("/monitoring", settingsHandler.UpdateMonitoring)
	settings.PUT("/goals", settingsHandler.UpdateGoals)
	settings.DELETE("/reset", settingsHandler.Reset)
	settings.GET("/export", settingsHandler.Export)

	// Posture measurement routes
	posture := protected.Group("/posture")
	posture.POST("/log", postureHandler.Log)
	posture.GET("/logs", postureHandler.List)
	posture.PUT("/logs/:id", postureHandler.Update)
	posture.DELETE("/logs/:id", postureHandler.Delete)
	posture.GET("/latest", postureHandler.Latest)
	posture.GET("/analytics", postureHandler.Analytics)
	posture.GET("/dashboard/today", postureHandler.DashboardToday)
	posture.GET("/dashboard/week", postureHandler.DashboardWeek)
	posture.GET("/dashboard/stats", postureHandler.DashboardStats)

	// Video monitoring routes
	video := protected.Group("/video")
	video.POST("/session/start", videoHandler.StartSession)
	video.POST("/session/end", videoHandler.EndSession)
	video.POST("/detection", videoHandler.Detection)
	video.GET("/session/:id/stats", videoHandler.SessionStats)
	video.POST("/alert/dismiss", videoHandler.DismissAlert)

	log.Infof("Starting PostureGuard API server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
