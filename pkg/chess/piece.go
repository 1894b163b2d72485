package chess

// Piece is a single piece symbol in FEN letter notation. Uppercase
// letters are white pieces, lowercase are black. The empty string marks
// an empty square.
type Piece string

// Empty is the absence of a piece on a square.
const Empty Piece = ""

// The twelve piece symbols.
const (
	WhitePawn   Piece = "P"
	WhiteKnight Piece = "N"
	WhiteBishop Piece = "B"
	WhiteRook   Piece = "R"
	WhiteQueen  Piece = "Q"
	WhiteKing   Piece = "K"
	BlackPawn   Piece = "p"
	BlackKnight Piece = "n"
	BlackBishop Piece = "b"
	BlackRook   Piece = "r"
	BlackQueen  Piece = "q"
	BlackKing   Piece = "k"
)

// IsEmpty reports whether the symbol marks an empty square.
func (p Piece) IsEmpty() bool {
	return p == Empty
}

// Color returns the side a piece belongs to. Calling Color on Empty is
// invalid; callers check IsEmpty first.
func (p Piece) Color() Color {
	if p >= "A" && p <= "Z" {
		return White
	}

	return Black
}
