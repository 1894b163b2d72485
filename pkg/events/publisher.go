// Package events decouples the coordinator from the transport layer.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

// Define event types. The string values double as the outbound wire
// event names.
const (
	EventConnected          EventType = "CONNECTED"
	EventRegistered         EventType = "REGISTERED"
	EventLobbyState         EventType = "LOBBY_STATE"
	EventWaitingForMatch    EventType = "WAITING_FOR_MATCH"
	EventGameFound          EventType = "GAME_FOUND"
	EventGameCreated        EventType = "GAME_CREATED"
	EventMoveMade           EventType = "MOVE_MADE"
	EventMoveError          EventType = "MOVE_ERROR"
	EventTimeUpdate         EventType = "TIME_UPDATE"
	EventDrawOffered        EventType = "DRAW_OFFERED"
	EventGameEnded          EventType = "GAME_ENDED"
	EventPlayerDisconnected EventType = "PLAYER_DISCONNECTED"
	EventSpectatingStarted  EventType = "SPECTATING_STARTED"
	EventSpectateError      EventType = "SPECTATE_ERROR"
	EventError              EventType = "ERROR"
)

// Event is one outbound notification with its recipient scope. Targets
// names the individual recipients; Broadcast addresses every connected
// identity instead.
type Event struct {
	Type      EventType
	SessionID string // Optional, empty for non-session events
	Targets   []uuid.UUID
	Broadcast bool
	Payload   interface{}
}

// Handler is a function that processes events.
type Handler func(event Event)

// Publisher is the central event publisher. Dispatch is synchronous so
// that events for one session reach every subscriber in publish order.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher.
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type.
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types.
func (p *Publisher) SubscribeAll(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Special event type for "all events"
	p.subscribers["*"] = append(p.subscribers["*"], handler)
}

// Publish delivers an event to its type subscribers and to "all events"
// handlers, inline on the caller's goroutine.
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := p.subscribers[event.Type]
	allHandlers := p.subscribers["*"]
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
	for _, handler := range allHandlers {
		handler(event)
	}
}
