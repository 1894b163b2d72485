package chess

import "time"

// Move is one accepted move. Immutable once recorded; the session's
// move log is append-only in play order.
type Move struct {
	From     Square    `json:"from"`
	To       Square    `json:"to"`
	Piece    Piece     `json:"piece"`
	Captured Piece     `json:"captured,omitempty"`
	Color    Color     `json:"color"`
	PlayedAt time.Time `json:"played_at"`
}
