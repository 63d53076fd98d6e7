package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client is one match-client connection.
type Client struct {
	conn       *websocket.Conn
	hub        *Hub
	matchToken string
	clientID   string
	socketID   string // unique per connection, carried on plan events as the origin
	send       chan []byte
}

// Hub tracks the sockets attached to each match.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // match token -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run serves register/unregister requests until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.matchToken]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.matchToken] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] client %s joined match %s (room_size=%d)", client.clientID, client.matchToken, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.matchToken]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.matchToken)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] client %s left match %s", client.clientID, client.matchToken)
		}
	}
}

// RoomSize returns the number of sockets attached to a match.
func (h *Hub) RoomSize(matchToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchToken])
}

// BroadcastToMatch sends a message to every socket in a match except the one
// with socket ID except ("" skips nobody).
func (h *Hub) BroadcastToMatch(matchToken string, message interface{}, except string) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[matchToken] {
		if except != "" && client.socketID == except {
			continue
		}
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] send buffer full for client %s in match %s, dropping message", client.clientID, matchToken)
		}
	}
}

// Message is the envelope used in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for client %s: %v", c.clientID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for client %s: %v", c.clientID, err)
				return
			}
		}
	}
}

// reply queues a typed message for this client only.
func (c *Client) reply(msgType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[WS] error marshaling %s: %v", msgType, err)
		return
	}
	msg, _ := json.Marshal(Message{Type: msgType, Data: payload})
	select {
	case c.send <- msg:
	default:
		log.Printf("[WS] reply %s dropped for client %s (buffer full)", msgType, c.clientID)
	}
}

func (c *Client) sendError(message string) {
	c.reply("error", map[string]string{"message": message})
}
