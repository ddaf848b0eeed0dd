package sync

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // storefront is served from another origin
	},
}

// WSHandler subscribes a tab to its profile's events. Browsers cannot set
// headers on a websocket handshake, so the profile may also come from the
// "profile" query parameter.
func WSHandler(hub *Hub, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := strings.TrimSpace(c.GetHeader(header))
		if profileID == "" {
			profileID = strings.TrimSpace(c.Query("profile"))
		}
		if profileID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "profile required"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		cl := hub.add(profileID, ws)
		hub.log.Info("ws client connected", zap.String("profile", profileID))

		welcome, _ := json.Marshal(Event{Type: EventWelcome, At: hub.now().UTC()})
		_ = cl.write(welcome)

		// incoming messages are ignored; the read loop only notices the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.remove(profileID, cl)
		hub.log.Info("ws client disconnected", zap.String("profile", profileID))
	}
}
