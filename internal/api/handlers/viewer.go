package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/swimpace/backend/internal/logger"
)

// ViewerQR renders a PNG QR code pointing at the public viewer page, sized by
// the "size" query parameter.
func ViewerQR(publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := url.JoinPath(publicURL, "viewer")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "public url not configured"})
			return
		}
		size := queryInt(c, "size", 256, 64, 1024)

		png, err := qrcode.Encode(target, qrcode.Medium, size)
		if err != nil {
			logger.Named("api").Error("encode qr", logger.ErrorField(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", png)
	}
}
