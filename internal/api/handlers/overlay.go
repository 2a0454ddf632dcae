package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/pool"
)

// GetState returns the current overlay frame.
func GetState(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := ctrl.Snapshot()
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Overlay-Seq", strconv.FormatUint(o.Seq, 10))
		c.JSON(http.StatusOK, o)
	}
}

// StartRace starts the race clock.
func StartRace(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		gen, err := ctrl.StartRace()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"generation": gen, "status": "running"})
	}
}

// StopRace stops the clock and resets elapsed time.
func StopRace(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctrl.StopRace(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
	}
}

// ResetOutline restores the default lane outline for the current view.
func ResetOutline(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctrl.ResetOutline(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}

// SetView sets the view rectangle the outline is drawn in.
func SetView(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
			Width  float64 `json:"width" binding:"required"`
			Height float64 `json:"height" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height required"})
			return
		}
		r := pool.NewRect(req.X, req.Y, req.Width, req.Height)
		if err := ctrl.SetViewBounds(r); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"view": r})
	}
}

// SelectCamera switches the capture device.
func SelectCamera(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req camera.Info
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "camera id required"})
			return
		}
		req.ID = strings.TrimSpace(req.ID)
		if req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "camera id required"})
			return
		}
		if err := ctrl.SelectCamera(req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"camera": req})
	}
}
