package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a GameState.
// The en passant field becomes a synthesised LastMove for the double step that allowed it,
// and the castling field becomes has-moved flags. Scores start at zero.
func ParseFEN(fen string) (GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return GameState{}, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	var s GameState

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(&s.Board, parts[0]); err != nil {
		return GameState{}, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		s.Turn = White
	case "b":
		s.Turn = Black
	default:
		return GameState{}, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	// Parse castling rights (field 2)
	rights, err := parseCastlingRights(parts[2])
	if err != nil {
		return GameState{}, err
	}
	s.Castling = rights

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		last, err := parseEnPassant(parts[3], s.Turn)
		if err != nil {
			return GameState{}, err
		}
		s.LastMove = last
	}

	// Half-move clock (field 4) is accepted but not tracked.
	if len(parts) > 4 {
		if _, err := strconv.Atoi(parts[4]); err != nil {
			return GameState{}, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
	}

	// Full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return GameState{}, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		s.Ply = (fmn - 1) * 2
	}
	if s.Turn == Black {
		s.Ply++
	}

	return s, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("%w: piece character %q", ErrInvalidFEN, c)
			}
			b[NewSquare(file, rank)] = piece
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights turns the FEN castling field into has-moved flags.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return AllMoved, nil
	}

	rights := AllMoved
	for _, c := range castling {
		switch c {
		case 'K':
			rights &^= WhiteKingMoved | WhiteKingRookMoved
		case 'Q':
			rights &^= WhiteKingMoved | WhiteQueenRookMoved
		case 'k':
			rights &^= BlackKingMoved | BlackKingRookMoved
		case 'q':
			rights &^= BlackKingMoved | BlackQueenRookMoved
		default:
			return AllMoved, fmt.Errorf("%w: castling character %q", ErrInvalidFEN, c)
		}
	}

	return rights, nil
}

// parseEnPassant rebuilds the double step implied by an en passant target square.
func parseEnPassant(field string, toMove Color) (LastMove, error) {
	sq, err := ParseSquare(field)
	if err != nil {
		return LastMove{}, fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, field)
	}
	mover := toMove.Other()
	if sq.RelativeRank(mover) != 2 {
		return LastMove{}, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, sq)
	}
	dir := pawnDir(mover)
	return LastMove{
		From:  sq.Offset(0, -dir),
		To:    sq.Offset(0, dir),
		Piece: NewPiece(Pawn, mover),
	}, nil
}

// EnPassantTarget returns the square skipped by a pawn double step on the last ply, or NoSquare.
func (s GameState) EnPassantTarget() Square {
	lm := s.LastMove
	if lm.Piece.Type() != Pawn || lm.From.File() != lm.To.File() || abs(lm.To.Rank()-lm.From.Rank()) != 2 {
		return NoSquare
	}
	return NewSquare(lm.From.File(), (lm.From.Rank()+lm.To.Rank())/2)
}

// ToFEN returns the FEN representation of the state.
// The half-move clock is not tracked and is always written as 0.
func (s GameState) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := s.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if s.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(s.Castling.String())

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(s.EnPassantTarget().String())

	// Half-move clock and full-move number
	sb.WriteString(" 0 ")
	sb.WriteString(strconv.Itoa(s.Ply/2 + 1))

	return sb.String()
}
