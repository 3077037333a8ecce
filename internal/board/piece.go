package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// ParseColor parses "white"/"w" or "black"/"b".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "White", "w":
		return White, true
	case "black", "Black", "b":
		return Black, true
	}
	return NoColor, false
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// PieceValue is the capture score of each piece type. Kings are never captured.
var PieceValue = [7]int{1, 3, 3, 5, 9, 0, 0}

// Piece combines PieceType and Color into a single value.
// Encoded as: 1 + pieceType + color*6, so the zero value is an empty square.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1 + Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = 1 + Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = 1 + Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = 1 + Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = 1 + Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = 1 + Piece(King) + Piece(White)*6
	BlackPawn   Piece = 1 + Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = 1 + Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = 1 + Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = 1 + Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = 1 + Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = 1 + Piece(King) + Piece(Black)*6
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return 1 + Piece(pt) + Piece(c)*6
}

func (p Piece) valid() bool {
	return p > NoPiece && p <= BlackKing
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if !p.valid() {
		return NoPieceType
	}
	return PieceType((p - 1) % 6)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if !p.valid() {
		return NoColor
	}
	return Color((p - 1) / 6)
}

// IsWhite reports whether the square occupant belongs to white.
func (p Piece) IsWhite() bool {
	return p.Color() == White
}

// IsBlack reports whether the square occupant belongs to black.
func (p Piece) IsBlack() bool {
	return p.Color() == Black
}

// Is reports whether p is a piece of color c.
func (p Piece) Is(c Color) bool {
	return p.valid() && p.Color() == c
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if !p.valid() {
		return " "
	}
	chars := "PNBRQKpnbrqk"
	return string(chars[p-1])
}

// Glyph returns the Unicode chess symbol for the piece.
func (p Piece) Glyph() string {
	if !p.valid() {
		return " "
	}
	glyphs := []string{"♙", "♘", "♗", "♖", "♕", "♔", "♟", "♞", "♝", "♜", "♛", "♚"}
	return glyphs[p-1]
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// Value returns the capture score of the piece.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
