package handlers

import (
	"net/http"
	"time"

	"github.com/curlfighter/backend/internal/planner"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status and the active planner settings.
func HealthCheck(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := svc.Engine().Options()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "curlfighter-planner",
			"version":     version,
			"uptime":      time.Since(startTime).String(),
			"policy":      opts.Policy,
			"calibration": svc.Engine().Model().Calibration().Version,
		})
	}
}
