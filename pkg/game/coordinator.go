package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/messages"
)

// End-of-game reasons carried by GAME_ENDED payloads.
const (
	ReasonResigned     = "resigned"
	ReasonDraw         = "draw"
	ReasonTimeout      = "time_out"
	ReasonDisconnected = "disconnected"
)

// Coordinator translates caller intents into session mutations and the
// outbound events they produce. It is the only component that touches
// more than one of directory, registry, matchmaker and session per
// intent.
type Coordinator struct {
	directory  *Directory
	registry   *Registry
	matchmaker *Matchmaker
	publisher  *events.Publisher
	logger     *zap.Logger

	disconnectGrace time.Duration

	graceMu     sync.Mutex
	graceTimers map[uuid.UUID]*time.Timer // keyed by session id

	done chan struct{}
}

// NewCoordinator wires the coordinator to its state containers. The
// containers are injected so several coordinators can coexist in tests.
func NewCoordinator(
	directory *Directory,
	registry *Registry,
	matchmaker *Matchmaker,
	publisher *events.Publisher,
	disconnectGrace time.Duration,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		directory:       directory,
		registry:        registry,
		matchmaker:      matchmaker,
		publisher:       publisher,
		logger:          logger,
		disconnectGrace: disconnectGrace,
		graceTimers:     make(map[uuid.UUID]*time.Timer),
		done:            make(chan struct{}),
	}
}

// Register creates or replaces the caller's player record and replies
// with the assigned profile plus the current lobby listing.
func (c *Coordinator) Register(id uuid.UUID, name string, rating int) {
	player := c.directory.Register(id, name, rating)

	c.logger.Info("player registered",
		zap.String("connection_id", id.String()),
		zap.String("name", name),
		zap.Int("rating", rating),
	)

	c.publisher.Publish(events.Event{
		Type:    events.EventRegistered,
		Targets: []uuid.UUID{id},
		Payload: messages.RegisteredPayload{
			ConnectionID: player.ID.String(),
			Name:         player.Name,
			Rating:       player.Rating,
		},
	})

	c.publisher.Publish(events.Event{
		Type:    events.EventLobbyState,
		Targets: []uuid.UUID{id},
		Payload: messages.LobbyStatePayload{Sessions: c.registry.Summaries()},
	})
}

// FindMatch enqueues the caller for pairing. A successful pairing is
// announced to both players and to the lobby; otherwise the caller gets
// its queue standing.
func (c *Coordinator) FindMatch(id uuid.UUID, ratingRange int) {
	player, ok := c.directory.Get(id)
	if !ok {
		c.sendError(id, ErrPlayerNotFound.Error())
		return
	}

	session, position, estimate := c.matchmaker.Enqueue(player, ratingRange, time.Now())
	if session == nil {
		c.publisher.Publish(events.Event{
			Type:    events.EventWaitingForMatch,
			Targets: []uuid.UUID{id},
			Payload: messages.WaitingForMatchPayload{
				Position:      position,
				EstimatedWait: int64(estimate / time.Second),
			},
		})
		return
	}

	snapshot := session.Snapshot()
	white := session.Player(chess.White)
	black := session.Player(chess.Black)

	c.publisher.Publish(events.Event{
		Type:      events.EventGameFound,
		SessionID: session.ID.String(),
		Targets:   []uuid.UUID{white.ID},
		Payload: messages.GameFoundPayload{
			SessionID: session.ID.String(),
			Color:     chess.White,
			Opponent:  black.Info(),
			Snapshot:  snapshot,
		},
	})
	c.publisher.Publish(events.Event{
		Type:      events.EventGameFound,
		SessionID: session.ID.String(),
		Targets:   []uuid.UUID{black.ID},
		Payload: messages.GameFoundPayload{
			SessionID: session.ID.String(),
			Color:     chess.Black,
			Opponent:  white.Info(),
			Snapshot:  snapshot,
		},
	})

	c.publisher.Publish(events.Event{
		Type:      events.EventGameCreated,
		SessionID: session.ID.String(),
		Broadcast: true,
		Payload:   messages.GameCreatedPayload{Session: session.Summary()},
	})
}

// CancelSearch drops the caller's matchmaking ticket, if any.
func (c *Coordinator) CancelSearch(id uuid.UUID) {
	c.matchmaker.Dequeue(id)
}

// MakeMove applies a move intent. Accepted moves are broadcast to the
// session room; rejections go back to the caller only. A move that
// exhausts the mover's own clock additionally ends the game on time.
func (c *Coordinator) MakeMove(id uuid.UUID, sessionID uuid.UUID, from, to chess.Square) {
	session, ok := c.registry.Get(sessionID)
	if !ok {
		c.publisher.Publish(events.Event{
			Type:    events.EventMoveError,
			Targets: []uuid.UUID{id},
			Payload: messages.MoveErrorPayload{
				SessionID: sessionID.String(),
				Message:   ErrSessionNotFound.Error(),
			},
		})
		return
	}

	move, err := session.SubmitMove(id, from, to, time.Now())
	if err != nil {
		if errors.Is(err, ErrGameOver) {
			// Terminal sessions reject silently; the result was
			// already announced.
			return
		}
		c.publisher.Publish(events.Event{
			Type:      events.EventMoveError,
			SessionID: sessionID.String(),
			Targets:   []uuid.UUID{id},
			Payload: messages.MoveErrorPayload{
				SessionID: sessionID.String(),
				Message:   err.Error(),
			},
		})
		return
	}

	c.publisher.Publish(events.Event{
		Type:      events.EventMoveMade,
		SessionID: sessionID.String(),
		Targets:   session.Room(),
		Payload: messages.MoveMadePayload{
			SessionID: sessionID.String(),
			Move:      move,
			Snapshot:  session.Snapshot(),
		},
	})

	if session.Status() == StatusTimeout {
		c.endSession(session, ReasonTimeout, session.Winner())
	}
}

// Resign ends the caller's session in the opponent's favor. Resigning
// an already-ended session is a silent no-op.
func (c *Coordinator) Resign(id uuid.UUID, sessionID uuid.UUID) {
	session, ok := c.registry.Get(sessionID)
	if !ok {
		c.sendError(id, ErrSessionNotFound.Error())
		return
	}

	winner, err := session.Resign(id)
	if err != nil {
		if !errors.Is(err, ErrGameOver) {
			c.sendError(id, err.Error())
		}
		return
	}

	c.endSession(session, ReasonResigned, winner)
}

// OfferDraw relays a draw offer to the opponent only.
func (c *Coordinator) OfferDraw(id uuid.UUID, sessionID uuid.UUID) {
	session, ok := c.registry.Get(sessionID)
	if !ok {
		c.sendError(id, ErrSessionNotFound.Error())
		return
	}

	player, ok := c.directory.Get(id)
	if !ok {
		c.sendError(id, ErrPlayerNotFound.Error())
		return
	}

	opponent, err := session.OfferDraw(id)
	if err != nil {
		if !errors.Is(err, ErrGameOver) {
			c.sendError(id, err.Error())
		}
		return
	}

	c.publisher.Publish(events.Event{
		Type:      events.EventDrawOffered,
		SessionID: sessionID.String(),
		Targets:   []uuid.UUID{opponent.ID},
		Payload: messages.DrawOfferedPayload{
			SessionID: sessionID.String(),
			From:      player.Info(),
		},
	})
}

// AcceptDraw concludes the session as a draw.
func (c *Coordinator) AcceptDraw(id uuid.UUID, sessionID uuid.UUID) {
	session, ok := c.registry.Get(sessionID)
	if !ok {
		c.sendError(id, ErrSessionNotFound.Error())
		return
	}

	if err := session.AcceptDraw(id); err != nil {
		if !errors.Is(err, ErrGameOver) {
			c.sendError(id, err.Error())
		}
		return
	}

	c.endSession(session, ReasonDraw, "")
}

// Spectate subscribes the caller to a session's room and replies with a
// snapshot.
func (c *Coordinator) Spectate(id uuid.UUID, sessionID uuid.UUID) {
	session, ok := c.registry.Get(sessionID)
	if !ok {
		c.publisher.Publish(events.Event{
			Type:    events.EventSpectateError,
			Targets: []uuid.UUID{id},
			Payload: messages.SpectateErrorPayload{
				SessionID: sessionID.String(),
				Message:   ErrSessionNotFound.Error(),
			},
		})
		return
	}

	session.AddSpectator(id)

	c.publisher.Publish(events.Event{
		Type:      events.EventSpectatingStarted,
		SessionID: sessionID.String(),
		Targets:   []uuid.UUID{id},
		Payload:   messages.SpectatingStartedPayload{Snapshot: session.Snapshot()},
	})
}

// Disconnect handles an identity dropping at the transport level. The
// matchmaking ticket goes away immediately; sessions the identity
// competes in stay playing for a grace period before being forfeited.
func (c *Coordinator) Disconnect(id uuid.UUID) {
	c.matchmaker.Dequeue(id)

	player, registered := c.directory.Get(id)
	c.directory.Remove(id)

	for _, session := range c.registry.List() {
		session.RemoveSpectator(id)

		if !session.IsCompetitor(id) || session.Status().Terminal() {
			continue
		}

		if registered {
			c.publisher.Publish(events.Event{
				Type:      events.EventPlayerDisconnected,
				SessionID: session.ID.String(),
				Targets:   session.Room(),
				Payload: messages.PlayerDisconnectedPayload{
					SessionID: session.ID.String(),
					Player:    player.Info(),
				},
			})
		}

		c.scheduleGraceForfeit(session.ID, id)
	}

	c.logger.Info("connection closed", zap.String("connection_id", id.String()))
}

// scheduleGraceForfeit arms the deferred disconnect check for a
// session. The timer is keyed by session id so a terminal transition
// from any other path can cancel it; the callback re-checks status at
// fire time as well, so a stale timer can never overwrite a result.
func (c *Coordinator) scheduleGraceForfeit(sessionID, loser uuid.UUID) {
	c.graceMu.Lock()
	defer c.graceMu.Unlock()

	if timer, ok := c.graceTimers[sessionID]; ok {
		timer.Stop()
	}

	c.graceTimers[sessionID] = time.AfterFunc(c.disconnectGrace, func() {
		c.fireGraceForfeit(sessionID, loser)
	})

	c.logger.Info("disconnect grace scheduled",
		zap.String("session_id", sessionID.String()),
		zap.Duration("grace", c.disconnectGrace),
	)
}

func (c *Coordinator) fireGraceForfeit(sessionID, loser uuid.UUID) {
	c.graceMu.Lock()
	delete(c.graceTimers, sessionID)
	c.graceMu.Unlock()

	session, ok := c.registry.Get(sessionID)
	if !ok {
		return
	}

	winner, err := session.ForfeitDisconnected(loser)
	if err != nil {
		// The session ended for another reason during the grace
		// window; the deferred forfeit is stale.
		return
	}

	c.endSession(session, ReasonDisconnected, winner)
}

func (c *Coordinator) cancelGraceForfeit(sessionID uuid.UUID) {
	c.graceMu.Lock()
	defer c.graceMu.Unlock()

	if timer, ok := c.graceTimers[sessionID]; ok {
		timer.Stop()
		delete(c.graceTimers, sessionID)
	}
}

// endSession announces a terminal transition to the session room and
// retires the session. Any pending disconnect forfeit for the session
// is cancelled first.
func (c *Coordinator) endSession(session *Session, reason string, winner chess.Color) {
	c.cancelGraceForfeit(session.ID)

	c.publisher.Publish(events.Event{
		Type:      events.EventGameEnded,
		SessionID: session.ID.String(),
		Targets:   session.Room(),
		Payload: messages.GameEndedPayload{
			SessionID: session.ID.String(),
			Reason:    reason,
			Winner:    winner,
			Snapshot:  session.Snapshot(),
		},
	})

	c.registry.Remove(session.ID)

	c.logger.Info("session ended",
		zap.String("session_id", session.ID.String()),
		zap.String("reason", reason),
		zap.String("winner", string(winner)),
	)
}

// RunTicker advances every playing session's clock once per interval
// and ends games whose active side ran out of time. It is the liveness
// mechanism that concludes games even when nobody moves.
func (c *Coordinator) RunTicker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.tick(now)
		}
	}
}

func (c *Coordinator) tick(now time.Time) {
	for _, session := range c.registry.ListPlaying() {
		remaining, timedOut, winner := session.Tick(now)

		if timedOut {
			c.endSession(session, ReasonTimeout, winner)
			continue
		}

		c.publisher.Publish(events.Event{
			Type:      events.EventTimeUpdate,
			SessionID: session.ID.String(),
			Targets:   session.Room(),
			Payload: messages.TimeUpdatePayload{
				SessionID: session.ID.String(),
				WhiteTime: remaining.White,
				BlackTime: remaining.Black,
			},
		})
	}
}

// Shutdown stops the ticker loop and cancels pending grace timers.
func (c *Coordinator) Shutdown() {
	close(c.done)

	c.graceMu.Lock()
	defer c.graceMu.Unlock()
	for id, timer := range c.graceTimers {
		timer.Stop()
		delete(c.graceTimers, id)
	}
}

func (c *Coordinator) sendError(id uuid.UUID, message string) {
	c.publisher.Publish(events.Event{
		Type:    events.EventError,
		Targets: []uuid.UUID{id},
		Payload: messages.ErrorPayload{Message: message},
	})
}
