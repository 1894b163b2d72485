package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
)

func testMatchmaker(t *testing.T) (*Matchmaker, *Registry) {
	t.Helper()
	registry := NewRegistry(zap.NewNop())
	mm := NewMatchmaker(registry, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000}, DefaultRatingRange, zap.NewNop())
	return mm, registry
}

func TestEnqueuePairsWithinRatingRange(t *testing.T) {
	mm, registry := testMatchmaker(t)
	now := time.Now()

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	b := &Player{ID: uuid.New(), Name: "b", Rating: 1650}

	session, position, _ := mm.Enqueue(a, 200, now)
	require.Nil(t, session)
	require.Equal(t, 1, position)

	session, _, _ = mm.Enqueue(b, 200, now)
	require.NotNil(t, session)
	require.Equal(t, 0, mm.QueueLength())
	require.Equal(t, 1, registry.Count())

	white := session.Player(chess.White)
	black := session.Player(chess.Black)
	require.NotEqual(t, white.ID, black.ID)
	require.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{white.ID, black.ID})
}

func TestEnqueueSkipsOutOfRangeTickets(t *testing.T) {
	mm, registry := testMatchmaker(t)
	now := time.Now()

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	b := &Player{ID: uuid.New(), Name: "b", Rating: 1900}

	mm.Enqueue(a, 200, now)
	session, position, estimate := mm.Enqueue(b, 200, now)
	require.Nil(t, session)
	require.Equal(t, 2, position)
	require.Equal(t, 60*time.Second, estimate)
	require.Equal(t, 0, registry.Count())
}

func TestEnqueueFirstFitInQueueOrder(t *testing.T) {
	mm, _ := testMatchmaker(t)
	now := time.Now()

	// Both waiting players are eligible; the earliest ticket wins even
	// though the second is closer in rating.
	early := &Player{ID: uuid.New(), Name: "early", Rating: 1400}
	nearer := &Player{ID: uuid.New(), Name: "nearer", Rating: 1505}
	mm.Enqueue(early, 500, now)
	mm.Enqueue(nearer, 500, now.Add(time.Second))

	incoming := &Player{ID: uuid.New(), Name: "c", Rating: 1500}
	session, _, _ := mm.Enqueue(incoming, 500, now.Add(2*time.Second))
	require.NotNil(t, session)
	require.True(t, session.IsCompetitor(early.ID))
	require.False(t, session.IsCompetitor(nearer.ID))
	require.Equal(t, 1, mm.QueueLength())
}

func TestEnqueueReplacesExistingTicket(t *testing.T) {
	mm, _ := testMatchmaker(t)
	now := time.Now()

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	mm.Enqueue(a, 200, now)
	_, position, _ := mm.Enqueue(a, 400, now.Add(time.Second))

	require.Equal(t, 1, position)
	require.Equal(t, 1, mm.QueueLength())
}

func TestEnqueueUsesConfiguredDefaultRange(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	mm := NewMatchmaker(registry, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000}, 400, zap.NewNop())
	now := time.Now()

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	b := &Player{ID: uuid.New(), Name: "b", Rating: 1800}

	// Both searches omit a range; the 300-point gap pairs only because
	// the configured default of 400 applies, not the built-in 200.
	mm.Enqueue(a, 0, now)
	session, _, _ := mm.Enqueue(b, 0, now)
	require.NotNil(t, session)
	require.Equal(t, 0, mm.QueueLength())
}

func TestEnqueueHonorsWaitingTicketRange(t *testing.T) {
	mm, registry := testMatchmaker(t)
	now := time.Now()

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	b := &Player{ID: uuid.New(), Name: "b", Rating: 1650}

	// The waiting player asked for a tight window; the incoming
	// player's wider tolerance alone must not pair them.
	mm.Enqueue(a, 100, now)
	session, position, _ := mm.Enqueue(b, 200, now)
	require.Nil(t, session)
	require.Equal(t, 2, position)
	require.Equal(t, 0, registry.Count())
}

func TestDequeue(t *testing.T) {
	mm, _ := testMatchmaker(t)

	a := &Player{ID: uuid.New(), Name: "a", Rating: 1500}
	mm.Enqueue(a, 200, time.Now())

	require.True(t, mm.Dequeue(a.ID))
	require.Equal(t, 0, mm.QueueLength())
	require.False(t, mm.Dequeue(a.ID))
	require.False(t, mm.Dequeue(uuid.New()))
}
