package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/config"
	"github.com/swimpace/backend/internal/ws"
)

// HandleOverlayWebSocket streams overlays and accepts pointer input.
func HandleOverlayWebSocket(hub *ws.Hub, ctrl ws.Controller, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, ctrl, cfg.JWTSecret)
}
