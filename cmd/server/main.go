package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taskforge/task-assignment-api/internal/config"
	"github.com/taskforge/task-assignment-api/internal/database"
	"github.com/taskforge/task-assignment-api/internal/handlers"
	"github.com/taskforge/task-assignment-api/internal/logging"
	"github.com/taskforge/task-assignment-api/internal/middleware"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"github.com/taskforge/task-assignment-api/internal/services"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.Init(cfg.LogLevel)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	assignments := services.NewAssignmentService(db)
	taskService := services.NewTaskService(repository.NewTaskRepository(db), assignments)
	userService := services.NewUserService(repository.NewUserRepository(db), assignments)

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())

	handlers.RegisterRoutes(r, taskHandler, userHandler)

	// Start server
	logger.Infof("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
