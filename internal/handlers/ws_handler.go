package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"devconnect-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsClient implements realtime.Conn by wrapping a websocket connection.
// gorilla allows one concurrent writer, so Send serializes under mu.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WSHandler upgrades authenticated requests and attaches them to the hub.
type WSHandler struct {
	Hub *realtime.Hub
}

// NewWSHandler constructs a websocket handler.
func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{Hub: hub}
}

// Serve upgrades the connection, registers the session, and runs the read
// loop. It requires JWT middleware to have set "user_id" in context.
func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	fullname := c.GetString("fullname")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "User not authorized",
		})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "user", userID, "error", err)
		return
	}

	client := &wsClient{conn: conn}
	session := h.Hub.Connect(userID, fullname, client)

	// Heartbeat: send periodic pings; close on error
	pingTicker := time.NewTicker(30 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					// ping failed; reader loop will exit on next error
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pingTicker.Stop()
		h.Hub.Disconnect(session)
		client.Close()
	}()

	// Reader loop: a single goroutine drains frames so per-session event
	// handling stays ordered. Pongs extend the read deadline.
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			// Normal close or error; exit loop
			return
		}
		h.Hub.Router.Dispatch(session, message)
	}
}
