// Package messages defines the JSON envelopes exchanged with clients.
package messages

import "encoding/json"

// InboundMessage is the generic wrapper for messages coming from the
// client. The "type" field tells us the intent; "payload" is the data
// we parse further.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Inbound intent types.
const (
	TypeRegister     = "REGISTER"
	TypeFindMatch    = "FIND_MATCH"
	TypeCancelSearch = "CANCEL_SEARCH"
	TypeMakeMove     = "MAKE_MOVE"
	TypeResign       = "RESIGN"
	TypeOfferDraw    = "OFFER_DRAW"
	TypeAcceptDraw   = "ACCEPT_DRAW"
	TypeSpectate     = "SPECTATE"
)

// RegisterPayload carries the caller's display profile.
type RegisterPayload struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// FindMatchPayload carries an optional rating tolerance. Zero means
// the server default.
type FindMatchPayload struct {
	RatingRange int `json:"rating_range"`
}

// MakeMovePayload represents a move attempt in a session.
type MakeMovePayload struct {
	SessionID string `json:"session_id"`
	FromRow   int    `json:"from_row"`
	FromCol   int    `json:"from_col"`
	ToRow     int    `json:"to_row"`
	ToCol     int    `json:"to_col"`
}

// SessionPayload addresses a session for resign, draw offer/accept and
// spectate intents.
type SessionPayload struct {
	SessionID string `json:"session_id"`
}
