package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swimpace/backend/internal/pace"
)

// GetOptions returns the picker values offered by control UIs.
func GetOptions() gin.HandlerFunc {
	opts := pace.DefaultOptions()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"options":  opts,
			"defaults": pace.Defaults(),
		})
	}
}

// GetSettings returns the current pace settings and layer visibility.
func GetSettings(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := ctrl.Settings()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"settings":             s,
			"qualifying_time_text": pace.FormatRaceTime(s.Pace.QualifyingTime),
			"speed":                s.Pace.Speed(),
		})
	}
}

type paceRequest struct {
	pace.Config
	// QualifyingTimeText, when set, overrides qualifying_time and accepts
	// mm:ss.fff or sss.fff.
	QualifyingTimeText string `json:"qualifying_time_text"`
}

// UpdatePace replaces the pace settings. Fields left out of the body keep
// their current values.
func UpdatePace(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := ctrl.Settings()
		if err != nil {
			respondError(c, err)
			return
		}

		req := paceRequest{Config: current.Pace}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pace settings"})
			return
		}
		if req.QualifyingTimeText != "" {
			secs, err := pace.ParseRaceTime(req.QualifyingTimeText)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			req.QualifyingTime = secs
		}

		if err := ctrl.UpdatePace(req.Config); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pace": req.Config})
	}
}

// UpdateDisplay toggles the outline and pace bar layers.
func UpdateDisplay(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ShowPoolOutline *bool `json:"show_pool_outline"`
			ShowPaceBar     *bool `json:"show_pace_bar"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display settings"})
			return
		}
		if req.ShowPoolOutline == nil && req.ShowPaceBar == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "show_pool_outline or show_pace_bar required"})
			return
		}
		if req.ShowPoolOutline != nil {
			if err := ctrl.SetShowPoolOutline(*req.ShowPoolOutline); err != nil {
				respondError(c, err)
				return
			}
		}
		if req.ShowPaceBar != nil {
			if err := ctrl.SetShowPaceBar(*req.ShowPaceBar); err != nil {
				respondError(c, err)
				return
			}
		}
		s, err := ctrl.Settings()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"show_pool_outline": s.ShowPoolOutline,
			"show_pace_bar":     s.ShowPaceBar,
		})
	}
}
