package main

import (
	"context"
	"log"

	_ "projecthub/api/swagger" // swagger docs
	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/handler"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/internal/service"
	"projecthub/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Project Management API
// @version         1.0
// @description     Backend for managing projects, tasks, team membership and task history.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	redisClient, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("Connected to Redis successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	teamMemberRepo := repository.NewTeamMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	historyRepo := repository.NewTaskHistoryRepository(db)
	otpRepo := repository.NewOTPRepository(redisClient)

	tokenService := service.NewTokenService(cfg.JWTKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.ResetTokenTTL, userRepo)
	emailService := service.NewEmailService(service.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, otpRepo)
	authService := service.NewAuthService(userRepo, roleRepo, tokenService, emailService)
	authzService := service.NewAuthzService(userRepo, projectRepo, taskRepo, teamMemberRepo)
	roleService := service.NewRoleService(roleRepo, txManager)
	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(projectRepo, txManager)
	historyService := service.NewTaskHistoryService(historyRepo, taskRepo, userRepo, authzService)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, teamMemberRepo, historyService, authzService, txManager, wsHub)
	teamMemberService := service.NewTeamMemberService(teamMemberRepo, projectRepo, userRepo, taskRepo, historyService, txManager)

	// Seed default roles, modules and permissions
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Fatalf("Role seeding failed: %v", err)
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	teamMemberHandler := handler.NewTeamMemberHandler(teamMemberService)
	roleHandler := handler.NewRoleHandler(roleService)
	historyHandler := handler.NewTaskHistoryHandler(historyService)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.RequestID())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokenService)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))

	protected := router.Group("", middleware.RequireAuth(tokenService))
	userHandler.RegisterRoutes(protected)
	projectHandler.RegisterRoutes(protected)
	taskHandler.RegisterRoutes(protected)
	teamMemberHandler.RegisterRoutes(protected)
	roleHandler.RegisterRoutes(protected)
	historyHandler.RegisterRoutes(protected)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
