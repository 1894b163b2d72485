package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/messages"
)

// Connection wraps one client WebSocket. The identity assigned here is
// the caller identity for every intent the connection submits.
type Connection struct {
	ID      uuid.UUID
	ws      *websocket.Conn // The underlying WebSocket connection
	hub     *Hub
	send    chan []byte // Buffered channel of outbound messages.
	writeMu sync.Mutex  // Mutex to protect concurrent writes to ws.

	logger *zap.Logger
}

// NewConnection wraps an upgraded WebSocket with a fresh identity.
func NewConnection(ws *websocket.Conn, hub *Hub, logger *zap.Logger) *Connection {
	return &Connection{
		ID:     uuid.New(),
		ws:     ws,
		hub:    hub,
		send:   make(chan []byte, 256), // buffered for outgoing messages
		logger: logger,
	}
}

// ReadPump handles inbound messages from the client. When the read
// loop exits for any reason the connection is unregistered, which
// triggers the coordinator's disconnect handling.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.ws.Close()
	}()

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("read error", zap.Error(err))
			}
			break
		}

		// We only handle text
		if msgType != websocket.TextMessage {
			continue
		}

		var inbound messages.InboundMessage
		if err := json.Unmarshal(msg, &inbound); err != nil {
			c.logger.Error("failed to parse inbound JSON", zap.Error(err))
			continue
		}

		c.hub.Submit(InboundHubMessage{Conn: c, Message: inbound})
	}
}

// WritePump handles outbound messages to the client.
func (c *Connection) WritePump() {
	defer func() {
		c.ws.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel closed
			c.logger.Info(
				"send channel closed for connection",
				zap.String("connection_id", c.ID.String()),
			)
			return
		}
		c.writeMu.Lock()
		err := c.ws.WriteMessage(websocket.TextMessage, message)
		c.writeMu.Unlock()
		if err != nil {
			c.logger.Error("write error", zap.Error(err))
			return
		}
	}
}

// SendJSON is a helper for sending JSON to this connection.
func (c *Connection) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("error marshaling JSON", zap.Error(err))
		return
	}

	c.sendRaw(data)
}

// sendRaw queues pre-marshaled bytes without blocking. A full buffer
// drops the message rather than stalling the coordinator.
func (c *Connection) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping message",
			zap.String("connection_id", c.ID.String()))
	}
}
