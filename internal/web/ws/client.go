package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/skillgomoku/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectators may watch from any origin; the stream is read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope written for every pushed event
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one websocket connection watching a game. Player is empty for spectators.
type Client struct {
	conn   *websocket.Conn
	player model.Player
	send   chan []byte
}

// ServeWS upgrades the request and streams the hub's messages until either
// side closes the connection. Incoming messages are discarded.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, player model.Player, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		conn:   conn,
		player: player,
		send:   make(chan []byte, sendBufferSize),
	}

	hello, _ := json.Marshal(Message{
		Event: "connected",
		Data:  json.RawMessage(`{"status":"connected","game_id":"` + string(hub.gameID) + `"}`),
	})
	client.send <- hello

	if !hub.add(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump(hub)
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
