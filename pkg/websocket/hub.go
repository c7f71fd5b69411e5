package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to every dashboard client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from other origins; CORS is handled by the router.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans analytics events out to connected dashboard clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns client registration until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("dashboard client connected", "clients", count)

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("dashboard client disconnected", "clients", len(h.clients))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish marshals data into a Message and queues it for every client.
// Clients whose buffer is full are dropped rather than waited on.
func (h *Hub) Publish(kind string, data any) {
	payload, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		h.logger.Error("marshaling dashboard message", "type", kind, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dashboard client too slow, dropping")
			go h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// HandleWebSocket upgrades the connection and streams events to it.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the peer going away; dashboard clients send
// nothing but control frames.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("dashboard client closed", "error", err)
			}
			return
		}
	}
}

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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
