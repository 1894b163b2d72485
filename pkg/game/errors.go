package game

import "errors"

// Rejection reasons surfaced to the acting caller. None of these are
// fatal; the coordinator converts them into caller-only error events.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not registered")
	ErrNotParticipant  = errors.New("requester is not a player in this session")
	ErrWrongTurn       = errors.New("not requester's turn")
	ErrOutOfBounds     = errors.New("coordinates out of bounds")
	ErrEmptySquare     = errors.New("origin square is empty")
	ErrWrongPiece      = errors.New("piece does not belong to the side to move")
	ErrOwnCapture      = errors.New("destination holds a piece of the same side")
	ErrGameOver        = errors.New("session already ended")
)
