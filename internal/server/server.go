package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/repositories"
	"backend/internal/routes"
	"backend/internal/services"
)

type Server struct {
	port int
}

func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	pool, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	// Test Redis connection and fail fast with a clear message
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", redisAddr, err)
		}
		log.Println("Connected to Redis successfully")
	}

	s := &Server{
		port: port,
	}

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	diagramRepo := repositories.NewDiagramRepository(pool)
	schemaRepo := repositories.NewSchemaRepository(pool)
	nodeRepo := repositories.NewNodeRepository(pool)
	shareRepo := repositories.NewShareRepository(pool)
	logRepo := repositories.NewMutationLogRepository(pool)
	redisRepo := repositories.NewRedisRepository(rdb)

	authService := services.NewAuthService(userRepo, redisRepo)
	userService := services.NewUserService(userRepo)
	diagramService := services.NewDiagramService(diagramRepo, schemaRepo, nodeRepo, shareRepo, redisRepo, logRepo)
	schemaService := services.NewSchemaService(schemaRepo, diagramService)
	shareService := services.NewShareService(shareRepo, redisRepo, diagramService)
	importService := services.NewImportService(schemaRepo, diagramRepo, diagramService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	diagramHandler := handlers.NewDiagramHandler(diagramService)
	schemaHandler := handlers.NewSchemaHandler(schemaService, diagramService)
	shareHandler := handlers.NewShareHandler(shareService)
	importHandler := handlers.NewImportHandler(importService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(corsConfig()))
	routes.RegisterRoutes(router, redisRepo,
		authHandler, userHandler, diagramHandler, schemaHandler, shareHandler, importHandler)

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}
