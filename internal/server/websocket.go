package server

import (
	"encoding/json"
	"net/http"
	"time"

	"auction-engine/internal/broadcast"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are a deployment concern handled upstream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeFrame is the only message clients send: join or leave an
// auction's event stream.
type subscribeFrame struct {
	Action    string `json:"action"` // "subscribe" or "unsubscribe"
	AuctionID string `json:"auction_id"`
}

// WebsocketHandler upgrades GET /ws and bridges the connection to the
// broadcaster. The client authenticates with a user_id query parameter at
// connect time; delivery is best-effort, so a reconnecting client must
// re-fetch auction state through the regular read endpoints.
func WebsocketHandler(broadcaster *broadcast.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Warn("websocket upgrade failed", map[string]any{"error": err.Error()})
			return
		}

		session := broadcaster.Connect(userID)
		utils.Info("websocket session connected", map[string]any{
			"session_id": session.ID,
			"user_id":    userID,
		})

		go writePump(conn, session)
		readPump(conn, broadcaster, session)
	}
}

// readPump consumes subscribe/unsubscribe frames until the connection drops,
// then tears the session down.
func readPump(conn *websocket.Conn, broadcaster *broadcast.Broadcaster, session *broadcast.Session) {
	defer func() {
		broadcaster.Disconnect(session)
		conn.Close()
		utils.Info("websocket session disconnected", map[string]any{
			"session_id": session.ID,
			"user_id":    session.UserID,
		})
	}()

	conn.SetReadLimit(512)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame subscribeFrame
		if err := json.Unmarshal(message, &frame); err != nil || frame.AuctionID == "" {
			continue
		}

		switch frame.Action {
		case "subscribe":
			broadcaster.Subscribe(session, frame.AuctionID)
		case "unsubscribe":
			broadcaster.Unsubscribe(session, frame.AuctionID)
		}
	}
}

// writePump forwards broadcast events to the client and keeps the connection
// alive with pings.
func writePump(conn *websocket.Conn, session *broadcast.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-session.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
