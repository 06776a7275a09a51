package routes

import (
	"messaging_backend/internal/handlers"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/middleware"
	"messaging_backend/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries what the route table needs besides the handlers.
type Options struct {
	Gate        *middleware.AuthGate
	AuthLimiter gin.HandlerFunc
	EnableDocs  bool
}

// RegisterRoutes mounts the HTTP API under /api plus /health, /ws and, outside production, /swagger.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	opts Options,
) {
	limiter := opts.AuthLimiter
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, opts.Gate, limiter)
		appHandlers.UserHandler.RegisterRoutes(api, opts.Gate)
		appHandlers.MessageHandler.RegisterRoutes(api, opts.Gate)
	}

	ginRouter.GET("/health", appHandlers.HealthHandler.Health)

	if wsHandler != nil {
		ginRouter.GET("/ws", ws.TokenFromQuery(), opts.Gate.Authenticate(), wsHandler.ServeWS)
		logger.Info("WebSocket route /ws registered")
	}

	if opts.EnableDocs {
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger UI available at /swagger/index.html")
	}
}
