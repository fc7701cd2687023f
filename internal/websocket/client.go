package websocket

import (
	"sync"
	"time"

	"ai-docstore-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// MessageFunc receives every frame read from the peer.
type MessageFunc func(messageType int, data []byte)

// Client is a middleman between the websocket connection and the hub. Clients
// created with NewPeer have no hub and are driven directly by their handler.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserID associated with this connection
	UserID uuid.UUID

	// Buffered channel of outbound messages. Never closed; done ends the writer.
	Send chan []byte

	readLimit int64
	logger    logger.ILogger

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, readLimit int64, log logger.ILogger) *Client {
	if readLimit <= 0 {
		readLimit = maxMessageSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		Hub:       hub,
		Conn:      conn,
		UserID:    userID,
		Send:      make(chan []byte, sendBuffer),
		readLimit: readLimit,
		logger:    log,
		done:      make(chan struct{}),
	}
}

// NewPeer wraps a connection that is not registered with a hub.
func NewPeer(conn *websocket.Conn, userID uuid.UUID, readLimit int64, log logger.ILogger) *Client {
	return newClient(nil, conn, userID, readLimit, log)
}

// Enqueue queues one text frame. It reports false when the client is gone or
// its buffer is full.
func (c *Client) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Done is closed once the connection is shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close stops both pumps. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// Serve runs the write pump in the background and the read pump in the
// calling goroutine until the connection ends.
func (c *Client) Serve(onMessage MessageFunc) {
	go c.writePump()
	c.readPump(onMessage)
}

// readPump pumps messages from the websocket connection to onMessage.
func (c *Client) readPump(onMessage MessageFunc) {
	defer func() {
		if c.Hub != nil {
			c.Hub.unregister <- c
		}
		c.Close()
	}()
	c.Conn.SetReadLimit(c.readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WsClient", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			return
		}
		// any inbound traffic proves the peer is alive
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if onMessage != nil {
			onMessage(messageType, data)
		}
	}
}

// writePump pumps messages from Send to the websocket connection, one frame
// per message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("WsClient", "Ping failed", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
				return
			}
		}
	}
}
