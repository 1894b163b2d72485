package messages

import "github.com/tecu23/match-server/pkg/chess"

// OutboundMessage is how we wrap events before sending them to the
// client.
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// ConnectedPayload carries the identity assigned at upgrade time.
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// PlayerInfo is the public view of a player.
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// RegisteredPayload confirms a registration.
type RegisteredPayload struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
	Rating       int    `json:"rating"`
}

// SessionSummary is one lobby listing entry.
type SessionSummary struct {
	SessionID string     `json:"session_id"`
	White     PlayerInfo `json:"white"`
	Black     PlayerInfo `json:"black"`
	Moves     int        `json:"moves"`
	Status    string     `json:"status"`
}

// LobbyStatePayload lists the sessions visible in the lobby.
type LobbyStatePayload struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SnapshotPayload is the full observable state of a session.
type SnapshotPayload struct {
	SessionID  string       `json:"session_id"`
	Board      chess.Board  `json:"board"`
	Turn       chess.Color  `json:"turn"`
	Status     string       `json:"status"`
	Winner     chess.Color  `json:"winner,omitempty"`
	WhiteTime  int64        `json:"white_time"`
	BlackTime  int64        `json:"black_time"`
	Moves      []chess.Move `json:"moves"`
	White      PlayerInfo   `json:"white"`
	Black      PlayerInfo   `json:"black"`
	Spectators int          `json:"spectators"`
}

// WaitingForMatchPayload reports queue standing after an unmatched
// search. The estimate is informational only.
type WaitingForMatchPayload struct {
	Position      int   `json:"position"`
	EstimatedWait int64 `json:"estimated_wait_seconds"`
}

// GameFoundPayload tells a paired player about their new session.
type GameFoundPayload struct {
	SessionID string          `json:"session_id"`
	Color     chess.Color     `json:"color"`
	Opponent  PlayerInfo      `json:"opponent"`
	Snapshot  SnapshotPayload `json:"snapshot"`
}

// GameCreatedPayload announces a new session to the lobby.
type GameCreatedPayload struct {
	Session SessionSummary `json:"session"`
}

// MoveMadePayload broadcasts an accepted move to the session room.
type MoveMadePayload struct {
	SessionID string          `json:"session_id"`
	Move      chess.Move      `json:"move"`
	Snapshot  SnapshotPayload `json:"snapshot"`
}

// MoveErrorPayload reports a rejected move to the acting caller only.
type MoveErrorPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TimeUpdatePayload carries both remaining clocks, pushed once per tick.
type TimeUpdatePayload struct {
	SessionID string `json:"session_id"`
	WhiteTime int64  `json:"white_time"`
	BlackTime int64  `json:"black_time"`
}

// DrawOfferedPayload notifies the opponent of a draw offer.
type DrawOfferedPayload struct {
	SessionID string     `json:"session_id"`
	From      PlayerInfo `json:"from"`
}

// GameEndedPayload announces a terminal transition to the session room.
type GameEndedPayload struct {
	SessionID string          `json:"session_id"`
	Reason    string          `json:"reason"`
	Winner    chess.Color     `json:"winner,omitempty"`
	Snapshot  SnapshotPayload `json:"snapshot"`
}

// PlayerDisconnectedPayload notifies the room that a competitor dropped.
type PlayerDisconnectedPayload struct {
	SessionID string     `json:"session_id"`
	Player    PlayerInfo `json:"player"`
}

// SpectatingStartedPayload confirms a spectate request.
type SpectatingStartedPayload struct {
	Snapshot SnapshotPayload `json:"snapshot"`
}

// SpectateErrorPayload reports a failed spectate request.
type SpectateErrorPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ErrorPayload is the generic caller-only error.
type ErrorPayload struct {
	Message string `json:"message"`
}
