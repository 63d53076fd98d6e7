package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/planner"
	"github.com/gin-gonic/gin"
)

// statusFor maps planner errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, curling.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, curling.ErrModelInconsistency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, planner.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
