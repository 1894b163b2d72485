package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
)

// DefaultRatingRange is the pairing tolerance used when the caller does
// not ask for one.
const DefaultRatingRange = 200

// waitEstimatePerPosition is the informational wait estimate per queue
// slot ahead of a waiting player.
const waitEstimatePerPosition = 30 * time.Second

// Ticket is one queued matchmaking request. A player holds at most one
// ticket; a new search replaces the old ticket.
type Ticket struct {
	Player      *Player
	RatingRange int
	EnqueuedAt  time.Time
}

// Matchmaker pairs waiting players within a rating tolerance. Pairing
// is first-fit in FIFO order: the earliest eligible ticket wins, not
// the closest-rated one.
type Matchmaker struct {
	mu    sync.Mutex
	queue []*Ticket

	registry     *Registry
	timeControl  chess.TimeControl
	defaultRange int
	logger       *zap.Logger
}

// NewMatchmaker creates a matchmaker that registers paired sessions
// with the given registry. defaultRange is the pairing tolerance used
// when a search does not ask for one; values <= 0 fall back to
// DefaultRatingRange.
func NewMatchmaker(registry *Registry, tc chess.TimeControl, defaultRange int, logger *zap.Logger) *Matchmaker {
	if defaultRange <= 0 {
		defaultRange = DefaultRatingRange
	}

	return &Matchmaker{
		registry:     registry,
		timeControl:  tc,
		defaultRange: defaultRange,
		logger:       logger,
	}
}

// Enqueue tries to pair the player against the waiting queue. On a
// match it creates and registers the session, assigning colors by coin
// flip, and returns it. Otherwise it appends a ticket and returns the
// resulting queue position together with an estimated wait. A pairing
// must satisfy both sides' tolerances: the incoming range and the
// waiting ticket's own.
func (m *Matchmaker) Enqueue(player *Player, ratingRange int, now time.Time) (*Session, int, time.Duration) {
	if ratingRange <= 0 {
		ratingRange = m.defaultRange
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(player.ID)

	for i, ticket := range m.queue {
		diff := player.Rating - ticket.Player.Rating
		if diff < 0 {
			diff = -diff
		}
		if diff > ratingRange || diff > ticket.RatingRange {
			continue
		}

		m.queue = append(m.queue[:i], m.queue[i+1:]...)

		white, black := player, ticket.Player
		if rand.IntN(2) == 0 {
			white, black = black, white
		}

		session := NewSession(white, black, m.timeControl, now)
		m.registry.Add(session)

		m.logger.Info("players paired",
			zap.String("session_id", session.ID.String()),
			zap.String("white", white.Name),
			zap.String("black", black.Name),
		)

		return session, 0, 0
	}

	m.queue = append(m.queue, &Ticket{
		Player:      player,
		RatingRange: ratingRange,
		EnqueuedAt:  now,
	})

	position := len(m.queue)
	return nil, position, time.Duration(position) * waitEstimatePerPosition
}

// Dequeue removes the player's ticket if present. Covers both explicit
// cancel and disconnect cleanup.
func (m *Matchmaker) Dequeue(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeLocked(id)
}

func (m *Matchmaker) removeLocked(id uuid.UUID) bool {
	for i, ticket := range m.queue {
		if ticket.Player.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}

	return false
}

// QueueLength returns the number of waiting tickets.
func (m *Matchmaker) QueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queue)
}
