package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/curlfighter/backend/internal/curling"
	"github.com/curlfighter/backend/internal/planner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// turnTimeout bounds one planning request made over a socket.
const turnTimeout = 30 * time.Second

// MatchHub is the single hub for all matches.
var MatchHub *Hub

func init() {
	MatchHub = NewHub()
	go MatchHub.Run()
}

// HandleWebSocket attaches a match client to /matches/:token/ws. The client
// sends {"type":"turn","data":<board>} and receives {"type":"shot"}.
func HandleWebSocket(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchToken := c.Param("token")
		if matchToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match token required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:       conn,
			hub:        MatchHub,
			matchToken: matchToken,
			clientID:   c.GetString("client_id"),
			socketID:   uuid.New().String(),
			send:       make(chan []byte, 64),
		}
		if client.clientID == "" {
			client.clientID = c.ClientIP()
		}

		MatchHub.register <- client

		go client.writePump()
		go client.readPump(svc)
	}
}

func (c *Client) readPump(svc *planner.Service) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for client %s: %v", c.clientID, err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(svc, msg)
	}
}

func (c *Client) handleMessage(svc *planner.Service, msg Message) {
	switch msg.Type {
	case "turn":
		var board curling.Board
		if err := json.Unmarshal(msg.Data, &board); err != nil {
			c.sendError("Invalid board")
			return
		}
		c.handleTurn(svc, &board)

	case "ping":
		c.reply("pong", map[string]int64{"time": time.Now().Unix()})

	default:
		c.sendError("Unknown message type")
	}
}

func (c *Client) handleTurn(svc *planner.Service, board *curling.Board) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()
	ctx = planner.WithOrigin(ctx, c.socketID)

	summary, err := svc.PlanTurn(ctx, c.matchToken, board)
	if err != nil {
		log.Printf("[WS] plan failed for match %s: %v", c.matchToken, err)
		c.sendError(err.Error())
		return
	}
	c.reply("shot", summary)

	// With Redis the plan_events subscriber fans the plan out to every
	// instance and skips this socket; without it only local sockets are told.
	if !eventsEnabled() {
		c.hub.BroadcastToMatch(c.matchToken, planMessage(summary), c.socketID)
	}
}

func planMessage(summary *planner.Summary) map[string]interface{} {
	return map[string]interface{}{
		"type": "plan",
		"data": summary,
	}
}
