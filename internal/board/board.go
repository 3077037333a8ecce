package board

import (
	"fmt"
	"strings"
)

// Board is an 8x8 grid of squares indexed by Square. The zero value is an empty board.
// Board is a value type: assigning it makes an independent scratch copy.
type Board [64]Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var b Board
	for file := 0; file < 8; file++ {
		b[NewSquare(file, 0)] = NewPiece(backRank[file], White)
		b[NewSquare(file, 1)] = WhitePawn
		b[NewSquare(file, 6)] = BlackPawn
		b[NewSquare(file, 7)] = NewPiece(backRank[file], Black)
	}
	return b
}

// PieceAt returns the piece at the given square, or NoPiece if empty or off the board.
func (b *Board) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return b[sq]
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.PieceAt(sq) == NoPiece
}

// FindKing locates the king of color c.
// A missing king means the board was corrupted outside the legal-move pipeline.
func (b *Board) FindKing(c Color) (Square, error) {
	king := NewPiece(King, c)
	for sq := Square(0); sq < NoSquare; sq++ {
		if b[sq] == king {
			return sq, nil
		}
	}
	return NoSquare, fmt.Errorf("%w: %s", ErrNoKing, c)
}

// Count returns the number of pieces on the board.
func (b *Board) Count() int {
	n := 0
	for _, p := range b {
		if p != NoPiece {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants a position must satisfy before play.
func (b *Board) Validate() error {
	var kings [2]int
	for sq, p := range b {
		if p == NoPiece {
			continue
		}
		if !p.valid() {
			return fmt.Errorf("board: corrupt piece value %d on %s", p, Square(sq))
		}
		switch p.Type() {
		case King:
			kings[p.Color()]++
		case Pawn:
			if r := Square(sq).Rank(); r == 0 || r == 7 {
				return fmt.Errorf("%w: %s", ErrPawnBackRank, Square(sq))
			}
		}
	}
	for c := White; c <= Black; c++ {
		switch {
		case kings[c] == 0:
			return fmt.Errorf("%w: %s", ErrNoKing, c)
		case kings[c] > 1:
			return fmt.Errorf("%w: %s", ErrTooManyKings, c)
		}
	}
	return nil
}

// String returns a visual representation of the board, white at the bottom.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := b[NewSquare(file, rank)]
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
