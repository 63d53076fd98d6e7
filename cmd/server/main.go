package main

import (
	"context"
	"log"

	"github.com/curlfighter/backend/internal/api"
	"github.com/curlfighter/backend/internal/config"
	"github.com/curlfighter/backend/internal/database"
	"github.com/curlfighter/backend/internal/migrations"
	"github.com/curlfighter/backend/internal/planner"
	"github.com/curlfighter/backend/internal/redis"
	"github.com/curlfighter/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Run migrations before opening the pool so the schema exists
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Plan history is optional; the planner runs without it.
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[DB] unavailable, plan history disabled: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[CACHE] redis unavailable, plan cache and events disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	svc, err := planner.New(db, rdb, cfg)
	if err != nil {
		log.Fatalf("Failed to build planner: %v", err)
	}

	ws.SetRedisClient(rdb)
	ws.StartPlanEventSubscriber(context.Background())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, svc, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting curlfighter planner on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
