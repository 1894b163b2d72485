// Package server owns the WebSocket transport: the hub tracks live
// connections and bridges them to the coordinator.
package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/game"
	"github.com/tecu23/match-server/pkg/messages"
)

// InboundHubMessage are the messages that the hub receives.
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // decoded envelope
}

// Hub keeps track of all active connections, routes their intents to
// the coordinator and fans coordinator events back out. Intent handling
// runs on the hub goroutine; event dispatch arrives from coordinator
// and ticker goroutines, so the connection set is guarded by mu.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection

	register   chan *Connection
	unregister chan *Connection
	inbound    chan InboundHubMessage
	done       chan struct{}

	coordinator *game.Coordinator
	logger      *zap.Logger
}

// NewHub creates a hub and subscribes it to the publisher for outbound
// delivery.
func NewHub(coordinator *game.Coordinator, publisher *events.Publisher, logger *zap.Logger) *Hub {
	h := &Hub{
		connections: make(map[uuid.UUID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		done:        make(chan struct{}),
		coordinator: coordinator,
		logger:      logger,
	}

	publisher.SubscribeAll(h.dispatch)

	return h
}

// Run is the main execution loop of the hub.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case msg := <-h.inbound:
			h.handleInbound(msg)
		}
	}
}

// Register queues a connection for registration.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister queues a connection for removal.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Submit queues an inbound message for routing.
func (h *Hub) Submit(msg InboundHubMessage) {
	h.inbound <- msg
}

// Shutdown stops the hub loop.
func (h *Hub) Shutdown() {
	close(h.done)
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	total := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("connections", total),
	)

	conn.SendJSON(messages.OutboundMessage{
		Event:   string(events.EventConnected),
		Payload: messages.ConnectedPayload{ConnectionID: conn.ID.String()},
	})
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, conn.ID)
	close(conn.send)
	total := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("connection unregistered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("connections", total),
	)

	h.coordinator.Disconnect(conn.ID)
}

// handleInbound decodes and routes one intent from a client. A bad
// payload produces a caller-only error and nothing else.
func (h *Hub) handleInbound(msg InboundHubMessage) {
	conn := msg.Conn

	switch msg.Message.Type {
	case messages.TypeRegister:
		var payload messages.RegisterPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(conn, "invalid REGISTER payload")
			return
		}
		h.coordinator.Register(conn.ID, payload.Name, payload.Rating)

	case messages.TypeFindMatch:
		var payload messages.FindMatchPayload
		if len(msg.Message.Payload) > 0 {
			if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
				h.sendError(conn, "invalid FIND_MATCH payload")
				return
			}
		}
		h.coordinator.FindMatch(conn.ID, payload.RatingRange)

	case messages.TypeCancelSearch:
		h.coordinator.CancelSearch(conn.ID)

	case messages.TypeMakeMove:
		var payload messages.MakeMovePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(conn, "invalid MAKE_MOVE payload")
			return
		}
		sessionID, err := uuid.Parse(payload.SessionID)
		if err != nil {
			h.sendError(conn, "invalid session id")
			return
		}
		h.coordinator.MakeMove(conn.ID, sessionID,
			chess.Square{Row: payload.FromRow, Col: payload.FromCol},
			chess.Square{Row: payload.ToRow, Col: payload.ToCol},
		)

	case messages.TypeResign:
		sessionID, ok := h.parseSessionPayload(conn, msg.Message.Payload)
		if !ok {
			return
		}
		h.coordinator.Resign(conn.ID, sessionID)

	case messages.TypeOfferDraw:
		sessionID, ok := h.parseSessionPayload(conn, msg.Message.Payload)
		if !ok {
			return
		}
		h.coordinator.OfferDraw(conn.ID, sessionID)

	case messages.TypeAcceptDraw:
		sessionID, ok := h.parseSessionPayload(conn, msg.Message.Payload)
		if !ok {
			return
		}
		h.coordinator.AcceptDraw(conn.ID, sessionID)

	case messages.TypeSpectate:
		sessionID, ok := h.parseSessionPayload(conn, msg.Message.Payload)
		if !ok {
			return
		}
		h.coordinator.Spectate(conn.ID, sessionID)

	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *Hub) parseSessionPayload(conn *Connection, raw json.RawMessage) (uuid.UUID, bool) {
	var payload messages.SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(conn, "invalid payload")
		return uuid.Nil, false
	}
	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		h.sendError(conn, "invalid session id")
		return uuid.Nil, false
	}
	return sessionID, true
}

// dispatch delivers one coordinator event to its recipients. It runs
// on the publisher's calling goroutine; per-connection send buffers
// keep it from blocking on slow clients.
func (h *Hub) dispatch(event events.Event) {
	msg := messages.OutboundMessage{
		Event:   string(event.Type),
		Payload: event.Payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("error marshaling event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Broadcast {
		for _, conn := range h.connections {
			conn.sendRaw(data)
		}
		return
	}

	for _, target := range event.Targets {
		if conn, ok := h.connections[target]; ok {
			conn.sendRaw(data)
		}
	}
}

func (h *Hub) sendError(conn *Connection, msg string) {
	conn.SendJSON(messages.OutboundMessage{
		Event:   string(events.EventError),
		Payload: messages.ErrorPayload{Message: msg},
	})
}
