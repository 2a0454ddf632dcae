package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/swimpace/backend/internal/camera"
	"github.com/swimpace/backend/internal/pace"
	"github.com/swimpace/backend/internal/race"
	"github.com/swimpace/backend/internal/session"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: pool_length", pace.ErrInvalidConfig), http.StatusBadRequest},
		{session.ErrInvalidBounds, http.StatusBadRequest},
		{camera.ErrInvalidFrame, http.StatusBadRequest},
		{race.ErrAlreadyRunning, http.StatusConflict},
		{race.ErrNotRunning, http.StatusConflict},
		{session.ErrNoView, http.StatusConflict},
		{session.ErrNotDragOwner, http.StatusConflict},
		{fmt.Errorf("select camera x: %w", camera.ErrInvalidTransition), http.StatusConflict},
		{session.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("db password leaked"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tt := range []struct {
		query string
		want  int
	}{
		{"", 20},
		{"?limit=5", 5},
		{"?limit=0", 1},
		{"?limit=500", 100},
		{"?limit=abc", 20},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/races"+tt.query, nil)
		assert.Equal(t, tt.want, queryInt(c, "limit", 20, 1, 100), tt.query)
	}
}
