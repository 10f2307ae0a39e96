package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"testimonials/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func WSHandler(hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		sub := wsSubscriber(ws)
		if err := hub.join(sub, "websocket"); err != nil {
			return
		}
		logger.Debug("ws client connected", zap.String("remote", c.Request.RemoteAddr))

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.leave(sub)
		logger.Debug("ws client disconnected", zap.String("remote", c.Request.RemoteAddr))
	}
}
