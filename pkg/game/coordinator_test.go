package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/messages"
)

// eventRecorder collects every published event; grace timers fire on
// their own goroutine, so access is locked.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type coordinatorFixture struct {
	coordinator *Coordinator
	directory   *Directory
	registry    *Registry
	matchmaker  *Matchmaker
	recorder    *eventRecorder
}

func newCoordinatorFixture(t *testing.T, grace time.Duration, tc chess.TimeControl) *coordinatorFixture {
	t.Helper()

	logger := zap.NewNop()
	publisher := events.NewPublisher()
	recorder := &eventRecorder{}
	publisher.SubscribeAll(recorder.record)

	directory := NewDirectory()
	registry := NewRegistry(logger)
	matchmaker := NewMatchmaker(registry, tc, DefaultRatingRange, logger)
	coordinator := NewCoordinator(directory, registry, matchmaker, publisher, grace, logger)
	t.Cleanup(coordinator.Shutdown)

	return &coordinatorFixture{
		coordinator: coordinator,
		directory:   directory,
		registry:    registry,
		matchmaker:  matchmaker,
		recorder:    recorder,
	}
}

func (f *coordinatorFixture) pair(t *testing.T) (*Session, uuid.UUID, uuid.UUID) {
	t.Helper()

	a, b := uuid.New(), uuid.New()
	f.coordinator.Register(a, "alice", 1500)
	f.coordinator.Register(b, "bob", 1650)
	f.coordinator.FindMatch(a, 0)
	f.coordinator.FindMatch(b, 200)

	require.Equal(t, 1, f.registry.Count())
	session := f.registry.List()[0]

	return session, session.Player(chess.White).ID, session.Player(chess.Black).ID
}

func TestRegisterRepliesWithProfileAndLobby(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	id := uuid.New()

	f.coordinator.Register(id, "alice", 1500)

	registered := f.recorder.ofType(events.EventRegistered)
	require.Len(t, registered, 1)
	require.Equal(t, []uuid.UUID{id}, registered[0].Targets)

	payload := registered[0].Payload.(messages.RegisteredPayload)
	require.Equal(t, id.String(), payload.ConnectionID)
	require.Equal(t, "alice", payload.Name)
	require.Equal(t, 1500, payload.Rating)

	lobby := f.recorder.ofType(events.EventLobbyState)
	require.Len(t, lobby, 1)
	require.Equal(t, []uuid.UUID{id}, lobby[0].Targets)
}

func TestFindMatchFlow(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})

	a, b := uuid.New(), uuid.New()
	f.coordinator.Register(a, "alice", 1500)
	f.coordinator.Register(b, "bob", 1650)

	f.coordinator.FindMatch(a, 0)
	waiting := f.recorder.ofType(events.EventWaitingForMatch)
	require.Len(t, waiting, 1)
	payload := waiting[0].Payload.(messages.WaitingForMatchPayload)
	require.Equal(t, 1, payload.Position)
	require.Equal(t, int64(30), payload.EstimatedWait)

	f.coordinator.FindMatch(b, 200)
	found := f.recorder.ofType(events.EventGameFound)
	require.Len(t, found, 2)

	var colors []chess.Color
	var targets []uuid.UUID
	for _, ev := range found {
		p := ev.Payload.(messages.GameFoundPayload)
		colors = append(colors, p.Color)
		targets = append(targets, ev.Targets...)
	}
	require.ElementsMatch(t, []chess.Color{chess.White, chess.Black}, colors)
	require.ElementsMatch(t, []uuid.UUID{a, b}, targets)

	created := f.recorder.ofType(events.EventGameCreated)
	require.Len(t, created, 1)
	require.True(t, created[0].Broadcast)
}

func TestFindMatchRequiresRegistration(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})

	f.coordinator.FindMatch(uuid.New(), 0)
	require.Len(t, f.recorder.ofType(events.EventError), 1)
	require.Equal(t, 0, f.matchmaker.QueueLength())
}

func TestMakeMoveBroadcastsToRoom(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, black := f.pair(t)

	spectator := uuid.New()
	f.coordinator.Register(spectator, "carol", 1200)
	f.coordinator.Spectate(spectator, session.ID)
	require.Len(t, f.recorder.ofType(events.EventSpectatingStarted), 1)

	f.coordinator.MakeMove(white, session.ID,
		chess.Square{Row: 6, Col: 4}, chess.Square{Row: 4, Col: 4})

	made := f.recorder.ofType(events.EventMoveMade)
	require.Len(t, made, 1)
	require.ElementsMatch(t, []uuid.UUID{white, black, spectator}, made[0].Targets)

	payload := made[0].Payload.(messages.MoveMadePayload)
	require.Equal(t, chess.WhitePawn, payload.Move.Piece)
	require.Equal(t, "playing", payload.Snapshot.Status)
	require.Equal(t, chess.Black, payload.Snapshot.Turn)
}

func TestMakeMoveRejectionGoesToCallerOnly(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, _, black := f.pair(t)

	f.coordinator.MakeMove(black, session.ID,
		chess.Square{Row: 1, Col: 4}, chess.Square{Row: 3, Col: 4})

	require.Empty(t, f.recorder.ofType(events.EventMoveMade))
	moveErrors := f.recorder.ofType(events.EventMoveError)
	require.Len(t, moveErrors, 1)
	require.Equal(t, []uuid.UUID{black}, moveErrors[0].Targets)
}

func TestMakeMoveUnknownSession(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	_, white, _ := f.pair(t)

	f.coordinator.MakeMove(white, uuid.New(),
		chess.Square{Row: 6, Col: 4}, chess.Square{Row: 4, Col: 4})

	moveErrors := f.recorder.ofType(events.EventMoveError)
	require.Len(t, moveErrors, 1)
	require.Equal(t, []uuid.UUID{white}, moveErrors[0].Targets)
}

func TestResignEndsGameOnce(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, _ := f.pair(t)

	f.coordinator.Resign(white, session.ID)

	ended := f.recorder.ofType(events.EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(messages.GameEndedPayload)
	require.Equal(t, ReasonResigned, payload.Reason)
	require.Equal(t, chess.Black, payload.Winner)
	require.Equal(t, 0, f.registry.Count())

	// Second resign must not re-announce; the session is already gone
	// from the registry, so the caller gets a not-found error at most.
	f.coordinator.Resign(white, session.ID)
	require.Len(t, f.recorder.ofType(events.EventGameEnded), 1)
}

func TestAcceptDrawEndsGame(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, _, black := f.pair(t)

	f.coordinator.AcceptDraw(black, session.ID)

	ended := f.recorder.ofType(events.EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(messages.GameEndedPayload)
	require.Equal(t, ReasonDraw, payload.Reason)
	require.Equal(t, chess.Color(""), payload.Winner)
}

func TestOfferDrawNotifiesOpponentOnly(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, black := f.pair(t)

	f.coordinator.OfferDraw(white, session.ID)

	offered := f.recorder.ofType(events.EventDrawOffered)
	require.Len(t, offered, 1)
	require.Equal(t, []uuid.UUID{black}, offered[0].Targets)
	require.Equal(t, StatusPlaying, session.Status())
}

func TestDisconnectForfeitsAfterGrace(t *testing.T) {
	f := newCoordinatorFixture(t, 30*time.Millisecond, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, black := f.pair(t)

	f.coordinator.Disconnect(white)

	notices := f.recorder.ofType(events.EventPlayerDisconnected)
	require.Len(t, notices, 1)
	require.Contains(t, notices[0].Targets, black)
	require.Equal(t, StatusPlaying, session.Status())
	require.Equal(t, 1, f.registry.Count())

	require.Eventually(t, func() bool {
		return len(f.recorder.ofType(events.EventGameEnded)) == 1
	}, time.Second, 5*time.Millisecond)

	payload := f.recorder.ofType(events.EventGameEnded)[0].Payload.(messages.GameEndedPayload)
	require.Equal(t, ReasonDisconnected, payload.Reason)
	require.Equal(t, StatusDisconnected, session.Status())
	require.Equal(t, 0, f.registry.Count())
}

func TestGraceForfeitIsStaleAfterOtherTermination(t *testing.T) {
	f := newCoordinatorFixture(t, 30*time.Millisecond, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, black := f.pair(t)

	f.coordinator.Disconnect(white)
	f.coordinator.Resign(black, session.ID)

	require.Equal(t, StatusResigned, session.Status())

	// Wait past the grace window; the deferred forfeit must not fire.
	time.Sleep(100 * time.Millisecond)
	ended := f.recorder.ofType(events.EventGameEnded)
	require.Len(t, ended, 1)
	require.Equal(t, ReasonResigned, ended[0].Payload.(messages.GameEndedPayload).Reason)
	require.Equal(t, StatusResigned, session.Status())
}

func TestDisconnectClearsTicketAndSpectatorship(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, _, _ := f.pair(t)

	watcher := uuid.New()
	f.coordinator.Register(watcher, "carol", 1200)
	f.coordinator.FindMatch(watcher, 0)
	f.coordinator.Spectate(watcher, session.ID)
	require.Equal(t, 1, f.matchmaker.QueueLength())
	require.Contains(t, session.Room(), watcher)

	f.coordinator.Disconnect(watcher)

	require.Equal(t, 0, f.matchmaker.QueueLength())
	require.NotContains(t, session.Room(), watcher)
	require.Empty(t, f.recorder.ofType(events.EventPlayerDisconnected))
	require.Equal(t, StatusPlaying, session.Status())
}

func TestTickerBroadcastsTimeUpdates(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	session, white, black := f.pair(t)

	f.coordinator.tick(time.Now().Add(time.Second))

	updates := f.recorder.ofType(events.EventTimeUpdate)
	require.Len(t, updates, 1)
	require.ElementsMatch(t, []uuid.UUID{white, black}, updates[0].Targets)

	payload := updates[0].Payload.(messages.TimeUpdatePayload)
	require.Equal(t, session.ID.String(), payload.SessionID)
	require.LessOrEqual(t, payload.WhiteTime, int64(900000))
	require.Equal(t, int64(900000), payload.BlackTime)
}

func TestTickerEndsGameOnTimeForfeit(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 50, BlackTime: 50})
	session, _, _ := f.pair(t)

	f.coordinator.tick(time.Now().Add(time.Second))

	require.Empty(t, f.recorder.ofType(events.EventTimeUpdate))
	ended := f.recorder.ofType(events.EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(messages.GameEndedPayload)
	require.Equal(t, ReasonTimeout, payload.Reason)
	require.Equal(t, chess.Black, payload.Winner)
	require.Equal(t, StatusTimeout, session.Status())
	require.Equal(t, 0, f.registry.Count())
}

func TestSpectateUnknownSession(t *testing.T) {
	f := newCoordinatorFixture(t, time.Minute, chess.TimeControl{WhiteTime: 900000, BlackTime: 900000})
	id := uuid.New()
	f.coordinator.Register(id, "carol", 1200)

	f.coordinator.Spectate(id, uuid.New())

	errs := f.recorder.ofType(events.EventSpectateError)
	require.Len(t, errs, 1)
	require.Equal(t, []uuid.UUID{id}, errs[0].Targets)
}
