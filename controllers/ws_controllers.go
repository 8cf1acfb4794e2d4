package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dinesync/tablemap/hub"
	"github.com/dinesync/tablemap/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades the connection and services subscribe/unsubscribe
// frames until the peer goes away.
func WSHandler(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		id := h.Register(ws)
		defer h.Unregister(id)

		for {
			var frame hub.Frame
			if err := ws.ReadJSON(&frame); err != nil {
				return
			}
			switch frame.Action {
			case "subscribe":
				h.Subscribe(id, frame.Topic)
			case "unsubscribe":
				h.Unsubscribe(id, frame.Topic)
			default:
				utils.ErrorLogger.Printf("ws: unknown frame action %q", frame.Action)
			}
		}
	}
}
