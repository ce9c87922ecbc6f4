package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wellsgz/reach/internal/monitor"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string `json:"type"` // "subscribe" or "unsubscribe"
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"` // "sample" or "error"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts samples
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Channel for broadcasting messages to clients
	broadcast chan ServerMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscription to the monitor's sample stream
	monitorSub <-chan monitor.Sample

	// Shutdown signal
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetMonitor subscribes the hub to the monitor's samples
func (h *Hub) SetMonitor(mon *monitor.Monitor) {
	h.monitorSub = mon.Subscribe()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.monitorSub != nil {
		go h.listenMonitor()
	}

	for {
		select {
		case <-h.done:
			// Shutdown requested - close all client connections
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			log.Println("[WebSocket] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WebSocket] Client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[WebSocket] Client disconnected (total: %d)", len(h.clients))

		case message := <-h.broadcast:
			// Clients that cannot keep up are dropped
			var stalled []*Client
			h.mu.RLock()
			for client := range h.clients {
				if message.Type == "sample" && !client.isSubscribed() {
					continue
				}
				select {
				case client.send <- message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			if len(stalled) > 0 {
				h.mu.Lock()
				for _, client := range stalled {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Stop signals the hub to shutdown
func (h *Hub) Stop() {
	close(h.done)
}

// listenMonitor forwards samples from the monitor to the broadcast loop
func (h *Hub) listenMonitor() {
	for sample := range h.monitorSub {
		select {
		case h.broadcast <- ServerMessage{Type: "sample", Data: sample}:
		case <-h.done:
			return
		}
	}
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan ServerMessage

	subscribed bool
	mu         sync.RWMutex
}

// isSubscribed checks if the client asked for the sample stream
func (c *Client) isSubscribed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribed
}

func (c *Client) setSubscribed(on bool) {
	c.mu.Lock()
	c.subscribed = on
	c.mu.Unlock()
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message format")
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.setSubscribed(true)
			log.Printf("[WebSocket] Client subscribed to samples")
		case "unsubscribe":
			c.setSubscribed(false)
			log.Printf("[WebSocket] Client unsubscribed from samples")
		default:
			c.sendError("Unknown message type: " + msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("[WebSocket] Marshal error: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(msg string) {
	select {
	case c.send <- ServerMessage{Type: "error", Data: msg}:
	default:
	}
}

// ServeWebSocket handles WebSocket requests from clients
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WebSocket] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan ServerMessage, 256),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
