package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
)

// WebSocketHandler upgrades HTTP requests and registers the resulting
// connections as fan-out observers.
type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Browser origins are filtered by the CORS middleware in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Register(conn)
	logger.Info("Observer connected",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("observers", h.hub.Count()),
	)

	// Observers only receive. The read loop exists to detect the close
	// handshake and drain control frames.
	go func() {
		defer h.hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
