package live

import (
	"context"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is a single WebSocket connection attached to the hub.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// Handler returns an HTTP handler that upgrades connections and runs them as
// hub clients until they disconnect.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // household LAN; any origin may connect
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		c := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize)}
		c.run(r.Context())
	}
}

// run registers the client, starts the write pump, and blocks reading until
// the connection closes.
func (c *Client) run(ctx context.Context) {
	c.hub.register(c)
	defer c.hub.unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)

	// Incoming frames are discarded; the stream is server-to-client only.
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
