package ws

import (
	"net/http"
	"net/url"
	"strings"

	"messaging_backend/internal/logger"
	"messaging_backend/internal/middleware"
	"messaging_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from origins; an empty list or "*" allows any origin.
func NewWebSocketHandler(manager *WebSocketManager, origins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// TokenFromQuery copies ?token= into the Authorization header when no header was sent.
// Browsers cannot set headers on a websocket handshake.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// ServeWS upgrades an authenticated request and attaches the connection to the caller.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.AbortWithError(c, apperrors.ErrMissingToken)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.Manager, conn, claims.UserID)
	if !h.Manager.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	logger.CtxInfo(c.Request.Context(), "websocket client connected")

	go client.readPump()
	go client.writePump()
}
