package events

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// progress is public; anyone may watch
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades to a websocket and streams progress events until the
// client goes away. Anything the client sends is discarded.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade from %s: %v", c.ClientIP(), err)
			return
		}
		if !hub.Join(ws) {
			return
		}
		log.Printf("[ws] %s watching", c.ClientIP())

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Leave(ws)
		log.Printf("[ws] %s left", c.ClientIP())
	}
}
