package handlers

import (
	"github.com/curlfighter/backend/internal/planner"
	"github.com/curlfighter/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// HandleMatchWebSocket bridges a match client to the planner.
func HandleMatchWebSocket(svc *planner.Service) gin.HandlerFunc {
	return ws.HandleWebSocket(svc)
}
