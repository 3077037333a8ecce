package board

import (
	"fmt"
	"slices"
)

// Move encodes a from/to square pair in 16 bits:
// bits 0-5:  from square (0-63)
// bits 6-11: to square (0-63)
// Castling, en passant and promotion are derived from the position the move is played in.
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0xFFFF

// NewMove creates a move.
func NewMove(from, to Square) Move {
	if !from.IsValid() || !to.IsValid() {
		return NoMove
	}
	return Move(from) | Move(to)<<6
}

// From returns the origin square.
func (m Move) From() Square {
	if m == NoMove {
		return NoSquare
	}
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	if m == NoMove {
		return NoSquare
	}
	return Square((m >> 6) & 0x3F)
}

// String returns the coordinate form of the move (e.g., "e2e4").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From().String() + m.To().String()
}

// ParseMove parses a coordinate move string such as "e2e4".
// A trailing promotion letter is accepted and ignored; pawns always promote to a queen.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 && s[4] != 'q' && s[4] != 'Q' {
		return NoMove, fmt.Errorf("%w: only queen promotion is supported: %q", ErrInvalidMove, s)
	}

	return NewMove(from, to), nil
}

// MoveKind classifies a move in the position it is played in.
type MoveKind uint8

const (
	KindNormal MoveKind = iota
	KindCastleKingSide
	KindCastleQueenSide
	KindEnPassant
	KindPromotion
)

// Classify returns the kind of move m is on board b. It does not check legality.
func Classify(b *Board, m Move) MoveKind {
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() {
		return KindNormal
	}
	p := b[from]
	switch p.Type() {
	case King:
		if from.Rank() == to.Rank() {
			switch to.File() - from.File() {
			case 2:
				return KindCastleKingSide
			case -2:
				return KindCastleQueenSide
			}
		}
	case Pawn:
		if from.File() != to.File() && b[to] == NoPiece {
			return KindEnPassant
		}
		if to.RelativeRank(p.Color()) == 7 {
			return KindPromotion
		}
	}
	return KindNormal
}

// IsCapture returns true if this move captures a piece on board b, en passant included.
func (m Move) IsCapture(b *Board) bool {
	to := m.To()
	if !to.IsValid() {
		return false
	}
	if b[to] != NoPiece {
		return true
	}
	return Classify(b, m) == KindEnPassant
}

// SortMoves orders moves by origin then destination square, giving a stable
// order for display and comparisons.
func SortMoves(moves []Move) {
	slices.SortFunc(moves, func(a, b Move) int {
		if a.From() != b.From() {
			return int(a.From()) - int(b.From())
		}
		return int(a.To()) - int(b.To())
	})
}
