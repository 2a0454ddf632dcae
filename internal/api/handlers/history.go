package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/racelog"
)

// ListRaces returns the most recent race runs, newest first.
func ListRaces(store racelog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 20, 1, 100)
		runs, err := store.RecentRuns(c.Request.Context(), limit)
		if err != nil {
			logger.Named("api").Error("list races", logger.ErrorField(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"races": runs, "count": len(runs)})
	}
}
