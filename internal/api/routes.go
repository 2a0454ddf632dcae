package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/swimpace/backend/internal/api/handlers"
	"github.com/swimpace/backend/internal/config"
	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/middleware"
	"github.com/swimpace/backend/internal/operator"
	"github.com/swimpace/backend/internal/racelog"
	"github.com/swimpace/backend/internal/ws"
)

// SessionController is everything the HTTP and socket surfaces need from the
// overlay session.
type SessionController interface {
	handlers.Controller
	ws.Controller
}

type Deps struct {
	Config    *config.Config
	Redis     *redis.Client // optional
	Session   SessionController
	Hub       *ws.Hub
	History   racelog.Store
	Operators operator.Directory
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		logger.Named("api").Info("no-cache headers enabled")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Hub))
		v1.GET("/config/options", handlers.GetOptions())
		v1.GET("/config", handlers.GetSettings(d.Session))
		v1.GET("/state", handlers.GetState(d.Session))
		v1.GET("/races", handlers.ListRaces(d.History))
		v1.GET("/viewer/qr.png", handlers.ViewerQR(cfg.PublicURL))
		v1.POST("/auth/login", handlers.Login(d.Operators, d.Redis, cfg))
		v1.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleOverlayWebSocket(d.Hub, d.Session, cfg))

		op := v1.Group("", handlers.OperatorAuth(cfg))
		{
			op.PUT("/config/pace", handlers.UpdatePace(d.Session))
			op.PUT("/config/display", handlers.UpdateDisplay(d.Session))
			op.POST("/race/start", handlers.StartRace(d.Session))
			op.POST("/race/stop", handlers.StopRace(d.Session))
			op.POST("/outline/reset", handlers.ResetOutline(d.Session))
			op.PUT("/view", handlers.SetView(d.Session))
			op.POST("/camera", handlers.SelectCamera(d.Session))
		}
	}
}
