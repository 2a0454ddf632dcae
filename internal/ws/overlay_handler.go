package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/operator"
	"github.com/swimpace/backend/internal/pool"
	"github.com/swimpace/backend/internal/session"
)

// Controller is the part of the session the socket protocol drives. Drags
// are keyed by the client id that started them.
type Controller interface {
	PointerDown(owner string, p pool.Point) (pool.Handle, bool, error)
	PointerDrag(owner string, p pool.Point) error
	PointerUp(owner string) error
	ReleaseDrag(owner string) error
	FrameArrived(width, height float64) error
	Snapshot() (session.Overlay, error)
	Settings() (session.Settings, error)
}

// WSMessage is the inbound envelope.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type FrameBoundsData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HandleWebSocket upgrades the request. A valid operator token in the
// "token" query parameter allows editing; without one the client only
// receives overlays.
func HandleWebSocket(hub *Hub, ctrl Controller, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var name string
		if tok := c.Query("token"); tok != "" {
			n, err := operator.ParseToken(jwtSecret, tok)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			name = n
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("upgrade failed", logger.ErrorField(err))
			return
		}

		client := NewClient(hub, ctrl, conn, name)
		client.Serve(c.Request.Context())
	}
}

// handleMessage dispatches one inbound message.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "pointer_down", "pointer_drag", "pointer_up", "frame_bounds":
		if c.operator == "" {
			c.sendError("Operator token required")
			return
		}
	}

	switch msg.Type {
	case "pointer_down":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pointer data")
			return
		}
		h, hit, err := c.ctrl.PointerDown(c.id, pool.Pt(data.X, data.Y))
		if err != nil {
			c.sendError(err.Error())
			return
		}
		reply := map[string]interface{}{"type": "pointer_down", "hit": hit}
		if hit {
			reply["handle"] = h
		}
		c.sendJSON(reply)

	case "pointer_drag":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pointer data")
			return
		}
		if err := c.ctrl.PointerDrag(c.id, pool.Pt(data.X, data.Y)); err != nil {
			if errors.Is(err, session.ErrNotDragging) || errors.Is(err, session.ErrNotDragOwner) {
				c.sendError(err.Error())
				return
			}
			// Rejected geometry keeps the previous outline; tell only the sender.
			c.sendJSON(map[string]interface{}{"type": "drag_rejected", "message": err.Error()})
		}

	case "pointer_up":
		if err := c.ctrl.PointerUp(c.id); err != nil {
			c.sendError(err.Error())
		}

	case "frame_bounds":
		var data FrameBoundsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid frame data")
			return
		}
		if err := c.ctrl.FrameArrived(data.Width, data.Height); err != nil {
			c.sendError(err.Error())
		}

	case "get_state":
		o, err := c.ctrl.Snapshot()
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendJSON(overlayMessage(o))

	case "get_settings":
		s, err := c.ctrl.Settings()
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "settings", "settings": s})

	default:
		c.sendError("Unknown message type")
	}
}

