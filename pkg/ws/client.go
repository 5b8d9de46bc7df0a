package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait bounds a single frame write. Broadcasts run on request
// goroutines, so a stalled peer must not block the hub indefinitely.
const writeWait = 10 * time.Second

// Client represents a websocket client connection. Writes are
// serialized with a mutex because broadcasts can arrive from
// concurrent requests.
type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	logger *zap.Logger
}

// NewClient constructs a client wrapper.
func NewClient(conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{conn: conn, logger: logger}
}

// Send writes a message to the websocket connection.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.Warn("Websocket send failed", zap.Error(err))
		_ = c.conn.Close()
		return err
	}
	return nil
}

// Close terminates the connection.
func (c *Client) Close() {
	_ = c.conn.Close()
}
