package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/token"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           User Management API
// @version         1.0
// @description     User management backend with JWT authentication, role-based access control and a legacy static admin token.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey AdminToken
// @in header
// @name admin-token
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up event feed hub
	hub := events.NewHub()
	go hub.Run()

	// Token codec shares the one process-wide secret
	tokens := token.NewManager(cfg.JWTSecret)

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	userService := service.NewUserService(userRepo, hub)
	authService := service.NewAuthService(userRepo, tokens)
	categoryService := service.NewCategoryService(categoryRepo)

	auth := middleware.NewAuth(tokens, userRepo, cfg.AdminSecretToken)

	authHandler := handler.NewAuthHandler(authService, auth)
	userHandler := handler.NewUserHandler(userService, auth)
	categoryHandler := handler.NewCategoryHandler(categoryService, auth)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.RequestID())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.AdminTokenHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Root endpoint: API index
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "User Management API",
			"documentation": "/swagger/index.html",
			"version":       "1.0.0",
			"endpoints": gin.H{
				"health":     "/api/health",
				"auth":       "/api/auth",
				"users":      "/api/users",
				"categories": "/api/categories",
			},
		})
	})

	// Event feed endpoint
	router.GET("/ws/events", func(c *gin.Context) {
		events.ServeWs(hub, c, tokens, cfg.AdminSecretToken)
	})

	// Register API Routes
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "User Management API is running!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	categoryHandler.RegisterRoutes(api)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
