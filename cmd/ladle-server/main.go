package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/okarpova/ladle/pkg/ladle/admin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"github.com/okarpova/ladle/pkg/ladle/database"
	"github.com/okarpova/ladle/pkg/ladle/importexport"
	"github.com/okarpova/ladle/pkg/ladle/ingredients"
	"github.com/okarpova/ladle/pkg/ladle/middleware"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"github.com/okarpova/ladle/pkg/ladle/recipes"
	"github.com/okarpova/ladle/pkg/ladle/shopping"
	"github.com/okarpova/ladle/pkg/ladle/subscriptions"
	"github.com/okarpova/ladle/pkg/ladle/tags"
	"github.com/okarpova/ladle/pkg/ladle/tokens"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/okarpova/ladle/api/swagger"
)

// @title Ladle API
// @version 1.0
// @description A recipe sharing service with favorites, author subscriptions, and downloadable shopping lists.

// @contact.name Ladle Support
// @contact.url https://github.com/okarpova/ladle

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT or API token. Format: "Bearer {token}"

func main() {
	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Get database DSN from environment or use default
	dsn := os.Getenv("LADLE_DB_URL")
	if dsn == "" {
		dsn = "ladle.db"
	}

	// Connect to database
	if err := database.Connect(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		log.Fatalf("Failed to ensure admin user exists: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	// Per-client rate limiting
	limiter := middleware.NewRateLimiter(20, 40)
	r.Use(limiter.Middleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "ladle",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Combined auth middleware (accepts JWT or API token)
		combinedAuth := tokens.CombinedAuthMiddleware(database.GetDB())

		// API token routes (JWT only - need to be logged in to manage tokens)
		tokensHandler := tokens.NewHandler(database.GetDB())
		tokensHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))

		// Catalog and recipe reads (public, user-scoped filters applied
		// when a valid token is present)
		publicReads := api.Group("", auth.OptionalAuthMiddleware())
		tagsHandler := tags.NewHandler(database.GetDB())
		tagsHandler.RegisterRoutes(publicReads)
		ingredientsHandler := ingredients.NewHandler(database.GetDB())
		ingredientsHandler.RegisterRoutes(publicReads)
		recipesHandler := recipes.NewHandler(database.GetDB())
		recipesHandler.RegisterRoutes(publicReads)

		// Recipe writes and relation toggles (protected)
		recipesHandler.RegisterProtectedRoutes(api.Group("", combinedAuth))

		// Shopping list download (protected)
		shoppingHandler := shopping.NewHandler(database.GetDB())
		shoppingHandler.RegisterRoutes(api.Group("", combinedAuth))

		// Author subscriptions (protected)
		subscriptionsHandler := subscriptions.NewHandler(database.GetDB())
		subscriptionsHandler.RegisterRoutes(api.Group("", combinedAuth))

		// Admin routes (JWT only, admin role required)
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
		adminHandler := admin.NewHandler(database.GetDB())
		adminHandler.RegisterRoutes(adminGroup)

		// Catalog import/export (admin only)
		importExportHandler := importexport.NewHandler(database.GetDB())
		importExportHandler.RegisterRoutes(adminGroup)
	}

	// Get port from environment or use default
	port := os.Getenv("LADLE_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Ladle server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists creates a default admin user if no admin exists in
// the database.
func ensureAdminExists() error {
	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:        "admin@ladle.local",
		Username:     "admin",
		PasswordHash: hashedPassword,
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("Created default admin user: admin@ladle.local (password: changeme)")
	return nil
}
