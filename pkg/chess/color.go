// Package chess defines the board-game entities: colors, piece symbols,
// the 8x8 board and the two-sided countdown clock.
package chess

// Color represents a playing side.
type Color string

// Possible sides of a game.
const (
	White Color = "w"
	Black Color = "b"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}
