package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/messages"
)

// Status is the lifecycle state of a session. StatusPlaying is the
// initial state; every other status is terminal. StatusCheck and
// StatusCheckmate are part of the taxonomy but no code path produces
// them while move legality stays reduced.
type Status string

// All session statuses.
const (
	StatusPlaying      Status = "playing"
	StatusCheck        Status = "check"
	StatusCheckmate    Status = "checkmate"
	StatusDraw         Status = "draw"
	StatusResigned     Status = "resigned"
	StatusTimeout      Status = "time_out"
	StatusDisconnected Status = "disconnected"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusPlaying
}

// Session is one game's canonical state. All mutation goes through the
// session mutex; operations on different sessions are independent.
type Session struct {
	ID uuid.UUID

	white *Player
	black *Player

	board  chess.Board
	turn   chess.Color
	moves  []chess.Move
	status Status
	winner chess.Color

	clock *chess.Clock

	spectators map[uuid.UUID]struct{}

	createdAt time.Time

	mu sync.Mutex
}

// NewSession creates a playing session between two players with the
// given time control. White moves first.
func NewSession(white, black *Player, tc chess.TimeControl, now time.Time) *Session {
	return &Session{
		ID:         uuid.New(),
		white:      white,
		black:      black,
		board:      chess.NewBoard(),
		turn:       chess.White,
		status:     StatusPlaying,
		clock:      chess.NewClock(tc, now),
		spectators: make(map[uuid.UUID]struct{}),
		createdAt:  now,
	}
}

// PlayerColor returns the side an identity plays, if it is a competitor.
func (s *Session) PlayerColor(id uuid.UUID) (chess.Color, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.playerColorLocked(id)
}

func (s *Session) playerColorLocked(id uuid.UUID) (chess.Color, bool) {
	switch id {
	case s.white.ID:
		return chess.White, true
	case s.black.ID:
		return chess.Black, true
	}

	return "", false
}

// IsCompetitor reports whether an identity is one of the two players.
func (s *Session) IsCompetitor(id uuid.UUID) bool {
	_, ok := s.PlayerColor(id)
	return ok
}

// Player returns the competitor playing the given side.
func (s *Session) Player(color chess.Color) *Player {
	if color == chess.White {
		return s.white
	}
	return s.black
}

// SubmitMove validates and applies one move for the requester.
// Rejections leave the session untouched. On acceptance the elapsed
// interval is charged to the mover before the side flips; if that
// charge exhausts the mover's clock the session transitions to
// time_out with the opponent as winner, which callers detect through
// Result.
func (s *Session) SubmitMove(id uuid.UUID, from, to chess.Square, now time.Time) (chess.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return chess.Move{}, ErrGameOver
	}

	color, ok := s.playerColorLocked(id)
	if !ok {
		return chess.Move{}, ErrNotParticipant
	}
	if color != s.turn {
		return chess.Move{}, ErrWrongTurn
	}
	if !from.InBounds() || !to.InBounds() {
		return chess.Move{}, ErrOutOfBounds
	}

	piece := s.board.At(from)
	if piece.IsEmpty() {
		return chess.Move{}, ErrEmptySquare
	}
	if piece.Color() != s.turn {
		return chess.Move{}, ErrWrongPiece
	}
	if target := s.board.At(to); !target.IsEmpty() && target.Color() == s.turn {
		return chess.Move{}, ErrOwnCapture
	}

	s.clock.Checkpoint(now)

	captured := s.board.Move(from, to)
	move := chess.Move{
		From:     from,
		To:       to,
		Piece:    piece,
		Captured: captured,
		Color:    color,
		PlayedAt: now,
	}
	s.moves = append(s.moves, move)

	s.clock.Switch()
	s.turn = s.turn.Opp()

	if flagged, ok := s.clock.Flagged(); ok {
		s.status = StatusTimeout
		s.winner = flagged.Opp()
	}

	return move, nil
}

// Tick checkpoints the clock against the side to move and detects time
// forfeit. It reports the remaining times and, when the active side's
// budget ran out, the terminal transition it performed.
func (s *Session) Tick(now time.Time) (chess.RemainingTime, bool, chess.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return s.clock.GetRemainingTime(), false, ""
	}

	remaining := s.clock.Checkpoint(now)

	if flagged, ok := s.clock.Flagged(); ok {
		s.status = StatusTimeout
		s.winner = flagged.Opp()
		return remaining, true, s.winner
	}

	return remaining, false, ""
}

// Resign ends the session in favor of the opponent. A second call on a
// terminal session is rejected with ErrGameOver so callers never
// re-announce the result.
func (s *Session) Resign(id uuid.UUID) (chess.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return "", ErrGameOver
	}

	color, ok := s.playerColorLocked(id)
	if !ok {
		return "", ErrNotParticipant
	}

	s.status = StatusResigned
	s.winner = color.Opp()

	return s.winner, nil
}

// OfferDraw validates the offer and returns the opponent to notify. The
// offer itself changes no state.
func (s *Session) OfferDraw(id uuid.UUID) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return nil, ErrGameOver
	}

	color, ok := s.playerColorLocked(id)
	if !ok {
		return nil, ErrNotParticipant
	}

	if color == chess.White {
		return s.black, nil
	}
	return s.white, nil
}

// AcceptDraw ends the session as a draw. No outstanding offer is
// verified; any competitor's acceptance concludes the game.
func (s *Session) AcceptDraw(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return ErrGameOver
	}

	if _, ok := s.playerColorLocked(id); !ok {
		return ErrNotParticipant
	}

	s.status = StatusDraw
	s.winner = ""

	return nil
}

// ForfeitDisconnected ends a still-playing session against the
// competitor that dropped. Terminal sessions are left untouched so a
// late grace timer can never overwrite an earlier result.
func (s *Session) ForfeitDisconnected(id uuid.UUID) (chess.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return "", ErrGameOver
	}

	color, ok := s.playerColorLocked(id)
	if !ok {
		return "", ErrNotParticipant
	}

	s.status = StatusDisconnected
	s.winner = color.Opp()

	return s.winner, nil
}

// AddSpectator adds an observing identity. Spectators never gain move
// rights and never affect clocks.
func (s *Session) AddSpectator(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spectators[id] = struct{}{}
}

// RemoveSpectator drops an observing identity, if present.
func (s *Session) RemoveSpectator(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.spectators, id)
}

// Room returns every identity entitled to receive broadcasts for this
// session: both competitors plus all spectators.
func (s *Session) Room() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := make([]uuid.UUID, 0, 2+len(s.spectators))
	room = append(room, s.white.ID, s.black.ID)
	for id := range s.spectators {
		room = append(room, id)
	}

	return room
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Winner returns the declared winner for terminal states that have one.
func (s *Session) Winner() chess.Color {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.winner
}

// MoveCount returns the number of accepted moves.
func (s *Session) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.moves)
}

// Snapshot produces the immutable observer view of the session.
func (s *Session) Snapshot() messages.SnapshotPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	moves := make([]chess.Move, len(s.moves))
	copy(moves, s.moves)

	remaining := s.clock.GetRemainingTime()

	return messages.SnapshotPayload{
		SessionID:  s.ID.String(),
		Board:      s.board,
		Turn:       s.turn,
		Status:     string(s.status),
		Winner:     s.winner,
		WhiteTime:  remaining.White,
		BlackTime:  remaining.Black,
		Moves:      moves,
		White:      s.white.Info(),
		Black:      s.black.Info(),
		Spectators: len(s.spectators),
	}
}

// Summary produces the lobby listing entry for the session.
func (s *Session) Summary() messages.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return messages.SessionSummary{
		SessionID: s.ID.String(),
		White:     s.white.Info(),
		Black:     s.black.Info(),
		Moves:     len(s.moves),
		Status:    string(s.status),
	}
}
