package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/certcast/core/internal/api/handlers"
	"github.com/certcast/core/internal/api/middleware"
	"github.com/certcast/core/internal/config"
	"github.com/certcast/core/internal/oauth"
	"github.com/certcast/core/internal/publish"
	"github.com/certcast/core/internal/services"
	"gorm.io/gorm"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *middleware.AuthManager, error) {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize auth manager
	authManager, err := middleware.NewAuthManager(cfg.DataDir, cfg.JWTSecret, middleware.DefaultTokenExpiry)
	if err != nil {
		return nil, nil, err
	}

	// Initialize services
	logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)
	settingsService := services.NewSettingsService(db)
	connectionService := services.NewConnectionService(db)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	// Provider token managers restore persisted credentials on construction.
	// Changing client credentials in settings takes effect on restart.
	googleMgr := oauth.NewGoogleManager(
		settings.GoogleClientID,
		settings.GoogleClientSecret,
		settings.GoogleRedirectURL,
		connectionService,
	)
	microblogMgr := oauth.NewMicroblogManager(
		settings.MicroblogClientID,
		settings.MicroblogRedirectURL,
		connectionService,
	)
	networkMgr := oauth.NewNetworkManager(
		settings.NetworkClientID,
		settings.NetworkClientSecret,
		settings.NetworkRedirectURL,
		connectionService,
	)

	publisher := publish.NewPublisher(microblogMgr, networkMgr)
	if settings.MicroblogUsername != "" {
		publisher.SetMicroblogUsername(settings.MicroblogUsername)
	}

	scanService := services.NewScanService(db, googleMgr, logService)
	postService := services.NewPostService(db, settingsService, publisher, logService)

	// Background mailbox scanning, enabled through settings
	scanScheduler := services.NewScanScheduler(scanService, settingsService)
	scanScheduler.Start()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authManager)
	certificateHandler := handlers.NewCertificateHandler(scanService)
	postHandler := handlers.NewPostHandler(postService)
	oauthHandler := handlers.NewOAuthHandler(googleMgr, microblogMgr, networkMgr, logService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	logHandler := handlers.NewLogHandler(logService)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Session exchange and provider callbacks are reachable without a
		// session token. The callback is hit by the provider redirect.
		api.POST("/auth/session", authHandler.CreateSession)
		api.GET("/oauth/:provider/callback", oauthHandler.Callback)

		protected := api.Group("")
		protected.Use(middleware.CombinedAuthMiddleware(authManager.APIKeyManager, authManager.JWTManager))
		{
			protected.POST("/scan", certificateHandler.Scan)

			certificates := protected.Group("/certificates")
			{
				certificates.GET("", certificateHandler.ListCertificates)
				certificates.DELETE("/:id", certificateHandler.DeleteCertificate)
			}

			posts := protected.Group("/posts")
			{
				posts.GET("", postHandler.ListPosts)
				posts.POST("/generate", postHandler.Generate)
				posts.POST("/:id/publish", postHandler.Publish)
			}

			oauthGroup := protected.Group("/oauth")
			{
				oauthGroup.GET("/status", oauthHandler.Status)
				oauthGroup.GET("/:provider/auth", oauthHandler.BeginAuth)
				oauthGroup.DELETE("/:provider", oauthHandler.Disconnect)
			}

			settingsGroup := protected.Group("/settings")
			{
				settingsGroup.GET("", settingsHandler.GetSettings)
				settingsGroup.PUT("", settingsHandler.UpdateSettings)
			}

			protected.GET("/logs", logHandler.GetLogs)
		}
	}

	return router, authManager, nil
}
