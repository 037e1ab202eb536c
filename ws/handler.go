package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS đã được kiểm soát ở tầng HTTP
	},
}

// HandlePodcastWebSocket upgrades the request and serves query subscriptions.
func (h *Hub) HandlePodcastWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	h.register(client)
	log.WithField("client", conn.RemoteAddr().String()).Info("podcast websocket connected")

	client.push(outbound{Type: "connected"})

	go client.writePump()
	client.readPump()

	log.WithField("client", conn.RemoteAddr().String()).Info("podcast websocket disconnected")
}
