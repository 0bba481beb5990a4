package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"orderflow/internal/broadcast"
)

type WSHTTPHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHTTPHandler(hub *broadcast.Hub, log zerolog.Logger) *WSHTTPHandler {
	return &WSHTTPHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Order updates carry no credentials; any origin may listen.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("handler", "ws").Logger(),
	}
}

// Subscribe upgrades the connection and streams order updates until the
// client disconnects or the hub closes.
func (h *WSHTTPHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := broadcast.NewWSClient(conn)
	h.log.Debug().Str("subscriber_id", client.ID()).Str("remote_addr", c.ClientIP()).Msg("websocket client connected")
	client.Serve(h.hub)
	h.log.Debug().Str("subscriber_id", client.ID()).Msg("websocket client disconnected")
}
