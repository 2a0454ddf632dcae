package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/pace"
	"github.com/swimpace/backend/internal/pool"
	"github.com/swimpace/backend/internal/race"
	"github.com/swimpace/backend/internal/session"
)

// Controller is the slice of the overlay session the HTTP API drives.
type Controller interface {
	UpdatePace(cfg pace.Config) error
	SetShowPoolOutline(show bool) error
	SetShowPaceBar(show bool) error
	StartRace() (uint64, error)
	StopRace() error
	ResetOutline() error
	SetViewBounds(r pool.Rect) error
	SelectCamera(info camera.Info) error
	Settings() (session.Settings, error)
	Snapshot() (session.Overlay, error)
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pace.ErrInvalidConfig),
		errors.Is(err, session.ErrInvalidBounds),
		errors.Is(err, camera.ErrInvalidFrame):
		return http.StatusBadRequest
	case errors.Is(err, race.ErrAlreadyRunning),
		errors.Is(err, race.ErrNotRunning),
		errors.Is(err, session.ErrNoView),
		errors.Is(err, session.ErrDragInProgress),
		errors.Is(err, session.ErrNotDragging),
		errors.Is(err, session.ErrNotDragOwner),
		errors.Is(err, camera.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// queryInt reads an integer query parameter clamped to [min, max].
func queryInt(c *gin.Context, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
