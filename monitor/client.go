package monitor

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a middleman between one websocket connection and the Hub, built
// on the same shape as the teacher project's own Client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump drains and discards inbound messages so the connection keeps
// processing control frames and notices when the peer goes away (no read
// deadline is set); the monitor is a broadcast-only viewer
// and has no inbound commands to interpret, unlike the teacher project's UI
// client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("monitor: read error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the Hub to the websocket connection. A
// goroutine running writePump is started for each connection and is the
// only goroutine that writes to conn.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("monitor: write error, closing connection: %v", err)
			return
		}
	}
	// The Hub closed c.send; tell the peer we're done.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// the resulting Client with hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("monitor: upgrade error:", err)
		return
	}
	c := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	c.hub.Register <- c

	go c.writePump()
	go c.readPump()
}
