package api

import (
	"log"

	"github.com/curlfighter/backend/internal/api/handlers"
	"github.com/curlfighter/backend/internal/config"
	"github.com/curlfighter/backend/internal/middleware"
	"github.com/curlfighter/backend/internal/planner"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, svc *planner.Service, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store")
			c.Next()
		})
		log.Println("[DEV MODE] no-store headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(svc))
		v1.POST("/auth/token", handlers.IssueToken(db, cfg))

		authed := v1.Group("")
		authed.Use(handlers.AuthMiddleware(cfg))
		{
			authed.POST("/plan", handlers.PlanShot(svc))
			authed.POST("/velocity", handlers.EstimateVelocity(svc))
			authed.POST("/simulate", handlers.SimulateShot(svc))
			authed.GET("/plans/:id", handlers.GetPlan(svc))
			authed.GET("/matches/:token/plans", handlers.ListMatchPlans(svc))
			authed.GET("/matches/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(svc))
		}
	}
}
