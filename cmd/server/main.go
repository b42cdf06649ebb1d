// @title AlfredMail API
// @version 1.0
// @description Backend API for AlfredMail, the AI email assistant
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"alfredmail-be/config"
	"alfredmail-be/internal/analysis"
	"alfredmail-be/internal/database"
	"alfredmail-be/internal/gate"
	"alfredmail-be/internal/handlers"
	"alfredmail-be/internal/middleware"
	"alfredmail-be/internal/repository"
	"alfredmail-be/internal/services"
	"log"

	"github.com/gin-gonic/gin"

	_ "alfredmail-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongodb.Disconnect()

	// Initialize repositories
	stateRepo := repository.NewStateRepository(mongodb.Database)

	// Initialize services
	accessGate := gate.New(cfg.AccessToken, cfg.AccessTokenExpiry)
	completer := analysis.NewOpenAIClient(cfg)
	pipeline := services.NewPipelineService(cfg, stateRepo, completer, accessGate)

	// Initialize handlers
	tokenHandler := handlers.NewTokenHandler(cfg, accessGate, stateRepo)
	mailHandler := handlers.NewMailHandler(pipeline)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":   "ok",
				"message":  "AlfredMail API is running",
				"database": "MongoDB connected",
			})
		})

		public.GET("/providers", handlers.ListProviders)
		public.POST("/token/validate", tokenHandler.Validate)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		mail := protected.Group("/mail")
		{
			mail.POST("/connect", mailHandler.Connect)
			mail.POST("/scan", mailHandler.Scan)
			mail.POST("/drafts", mailHandler.Drafts)
			mail.POST("/send", mailHandler.Send)
			mail.POST("/disconnect", mailHandler.Disconnect)
			mail.GET("/status", mailHandler.Status)
			mail.GET("/profile", mailHandler.Profile)
			mail.GET("/report", mailHandler.Report)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Connected to MongoDB: %s", cfg.MongoDBDatabase)
	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
