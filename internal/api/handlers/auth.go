package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/config"
	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/operator"
)

// Login exchanges an operator name and PIN for a bearer token.
func Login(dir operator.Directory, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	log := logger.Named("auth")
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
			PIN  string `json:"pin"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PIN) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pin required"})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = operator.DefaultName
		}

		ctx := c.Request.Context()
		// Rate limit per operator name
		if rdb != nil && cfg.LoginRateLimitSeconds > 0 {
			key := fmt.Sprintf("login_rate:%s", name)
			ok, err := rdb.SetNX(ctx, key, "1", time.Duration(cfg.LoginRateLimitSeconds)*time.Second).Result()
			if err == nil && !ok {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
				return
			}
		}

		acct, err := operator.ValidateNameAndPIN(ctx, dir, name, req.PIN)
		if errors.Is(err, operator.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or pin"})
			return
		}
		if err != nil {
			log.Error("validate operator", logger.ErrorField(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
		token, exp, err := operator.IssueToken(cfg.JWTSecret, acct.Name, ttl, time.Now())
		if err != nil {
			log.Error("issue token", logger.ErrorField(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Info("operator logged in", zap.String("name", acct.Name))
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"operator":   acct.Name,
			"expires_at": exp.UTC().Format(time.RFC3339),
		})
	}
}

// OperatorAuth validates the bearer token and sets "operator" in the context.
func OperatorAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		name, err := operator.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("operator", name)
		c.Next()
	}
}
