// Package realtime pushes freshly-created notifications to a user's open
// websocket sessions. Delivery here is best-effort: a user with no open
// socket simply reads the persisted notification later.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"merithub/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin policy enforced upstream by the gateway
	},
}

type client struct {
	conn   *websocket.Conn
	userID int64
	send   chan *models.Notification
}

// Hub tracks connected clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]bool
	logger  *zap.Logger
}

// NewHub creates a websocket hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*client]bool),
		logger:  logger,
	}
}

// ServeWS upgrades the request and pumps notifications until the client
// disconnects. The caller has already authenticated userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err), zap.Int64("user_id", userID))
		return
	}

	c := &client{
		conn:   conn,
		userID: userID,
		send:   make(chan *models.Notification, sendBufferSize),
	}
	h.register(c)
	h.logger.Debug("WebSocket client connected", zap.Int64("user_id", userID))

	go c.writePump()
	c.readPump(h)
}

// Notify delivers a notification to every open session of a user.
// Sessions with a full send buffer are skipped, not blocked on.
func (h *Hub) Notify(userID int64, n *models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- n:
		default:
			h.logger.Debug("WebSocket send buffer full, dropping",
				zap.Int64("user_id", userID))
		}
	}
}

// ConnectedUsers returns how many distinct users have open sessions.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]bool)
	}
	h.clients[c.userID][c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessions, ok := h.clients[c.userID]; ok {
		delete(sessions, c)
		if len(sessions) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// readPump discards inbound frames; the socket is one-way. It exists to
// process control frames and detect disconnects.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case n, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
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
