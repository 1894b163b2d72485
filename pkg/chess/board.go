package chess

// Size is the number of rows and columns of the board.
const Size = 8

// Square addresses a board cell. Row 0 is black's back rank, row 7 is
// white's, matching the rank order of a FEN string read top to bottom.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the square lies on the board.
func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// Board is the full 8x8 grid of piece symbols.
type Board [Size][Size]Piece

// NewBoard returns a board in the standard starting position.
func NewBoard() Board {
	var b Board

	blackBack := [Size]Piece{BlackRook, BlackKnight, BlackBishop, BlackQueen, BlackKing, BlackBishop, BlackKnight, BlackRook}
	whiteBack := [Size]Piece{WhiteRook, WhiteKnight, WhiteBishop, WhiteQueen, WhiteKing, WhiteBishop, WhiteKnight, WhiteRook}

	for col := 0; col < Size; col++ {
		b[0][col] = blackBack[col]
		b[1][col] = BlackPawn
		b[6][col] = WhitePawn
		b[7][col] = whiteBack[col]
	}

	return b
}

// At returns the piece on the given square.
func (b *Board) At(s Square) Piece {
	return b[s.Row][s.Col]
}

// Move transfers the piece from one square to another, returning the
// captured piece if the destination was occupied. Bounds and ownership
// are the caller's responsibility.
func (b *Board) Move(from, to Square) Piece {
	captured := b[to.Row][to.Col]
	b[to.Row][to.Col] = b[from.Row][from.Col]
	b[from.Row][from.Col] = Empty

	return captured
}
