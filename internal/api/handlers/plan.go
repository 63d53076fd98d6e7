package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/planner"
	"github.com/gin-gonic/gin"
)

// PlanShot decides the next delivery for a board.
func PlanShot(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			MatchToken string         `json:"match_token"`
			Board      *curling.Board `json:"board"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		matchToken := strings.TrimSpace(req.MatchToken)
		if matchToken == "" || req.Board == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_token and board required"})
			return
		}

		summary, err := svc.PlanTurn(c.Request.Context(), matchToken, req.Board)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// EstimateVelocity runs the velocity model on its own.
func EstimateVelocity(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Target *curling.Vec2 `json:"target"`
			Speed  *float64      `json:"speed"`
			Spin   *curling.Spin `json:"spin"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Target == nil || req.Speed == nil || req.Spin == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target, speed and spin required"})
			return
		}

		v, err := svc.Estimate(c.Request.Context(), *req.Target, *req.Speed, *req.Spin)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"velocity": v, "launch_speed": v.Speed()})
	}
}

// SimulateShot delivers a given velocity on a board and reports where the
// stones settle.
func SimulateShot(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Board    *curling.Board          `json:"board"`
			Velocity *curling.LaunchVelocity `json:"velocity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Board == nil || req.Velocity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "board and velocity required"})
			return
		}

		res, err := svc.Simulate(c.Request.Context(), req.Board, *req.Velocity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ListMatchPlans returns the stored plans of one match, newest first.
func ListMatchPlans(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		plans, err := svc.ListPlans(c.Request.Context(), c.Param("token"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
	}
}

// GetPlan returns one stored plan by id.
func GetPlan(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
			return
		}
		plan, err := svc.GetPlan(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}
