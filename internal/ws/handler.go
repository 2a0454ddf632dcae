package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

// Client is one connected control panel or viewer.
type Client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	ctrl     Controller
	operator string // empty for read-only viewers
	send     chan []byte
	log      *zap.Logger
}

// Hub tracks connected clients and fans out overlays and settings. It
// implements session.Renderer and session.Publisher.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	latest     []byte
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.Named("ws"),
	}
}

// Run serves registrations until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			latest := h.latest
			n := len(h.clients)
			h.mu.Unlock()
			if latest != nil {
				c.trySend(latest)
			}
			h.log.Info("client connected", zap.String("client", c.id), zap.Bool("operator", c.operator != ""), zap.Int("clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client disconnected", zap.String("client", c.id), zap.Int("clients", n))

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.conn.Close()
			}
			h.mu.Unlock()
			return nil
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Render(o session.Overlay) {
	data, err := json.Marshal(overlayMessage(o))
	if err != nil {
		h.log.Error("marshal overlay", logger.ErrorField(err))
		return
	}
	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()
	h.broadcast(data)
}

func (h *Hub) PublishSettings(s session.Settings) {
	data, err := json.Marshal(map[string]interface{}{
		"type":     "settings_changed",
		"settings": s,
	})
	if err != nil {
		h.log.Error("marshal settings", logger.ErrorField(err))
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("client send buffer full, dropping message", zap.String("client", c.id))
		}
	}
}

func overlayMessage(o session.Overlay) map[string]interface{} {
	return map[string]interface{}{
		"type":    "overlay",
		"overlay": o,
	}
}

// NewClient wraps an upgraded connection. operator is the authenticated
// operator name, or empty for a viewer.
func NewClient(hub *Hub, ctrl Controller, conn *websocket.Conn, operator string) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		conn:     conn,
		hub:      hub,
		ctrl:     ctrl,
		operator: operator,
		send:     make(chan []byte, sendBuffer),
		log:      hub.log.With(zap.String("client", id)),
	}
}

// Serve registers the client and starts its pumps. It returns once the
// client is registered.
func (c *Client) Serve(ctx context.Context) bool {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return false
	case <-ctx.Done():
		c.conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping message")
	}
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal message", logger.ErrorField(err))
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// writePump writes queued messages and keeps the connection alive with pings.
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
				c.log.Debug("write error", logger.ErrorField(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ping error", logger.ErrorField(err))
				return
			}
		}
	}
}

// readPump decodes client messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		if c.operator != "" {
			if err := c.ctrl.ReleaseDrag(c.id); err != nil && !errors.Is(err, session.ErrClosed) {
				c.log.Warn("release drag", logger.ErrorField(err))
			}
		}
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("unexpected close", logger.ErrorField(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
