package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/revisit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/revisit/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access control happens in the CIDR middleware; extension
		// frontends do not send a meaningful Origin.
		return true
	},
}

// Events upgrades the connection and hands it to the push hub.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Warn("websocket upgrade failed", logger.Error(err))
			return
		}
		d.Hub.Register(conn)
	}
}
