package board

import (
	"fmt"
	"strings"
)

// ToSAN converts a legal move to Standard Algebraic Notation in state s.
func (s GameState) ToSAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := s.Board.PieceAt(from)

	if piece == NoPiece {
		return m.String() // Fallback to coordinates
	}

	var sb strings.Builder

	switch kind := Classify(&s.Board, m); kind {
	case KindCastleKingSide:
		sb.WriteString("O-O")
	case KindCastleQueenSide:
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()

		// Piece letter (not for pawns)
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(s.disambiguation(m, pt))
		}

		if m.IsCapture(&s.Board) {
			if pt == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(to.String())

		if kind == KindPromotion {
			sb.WriteString("=Q")
		}
	}

	// Check/checkmate marker
	next, _ := s.Apply(m)
	switch next.Status() {
	case Checkmate:
		sb.WriteByte('#')
	case Check:
		sb.WriteByte('+')
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to make m unambiguous.
func (s GameState) disambiguation(m Move, pt PieceType) string {
	from := m.From()
	to := m.To()
	mover := s.Board[from]

	var candidates []Square
	for _, other := range GenerateLegalMoves(&s.Board, s.LastMove, s.Castling, mover.Color()) {
		if other.To() != to || other.From() == from {
			continue
		}
		if s.Board[other.From()].Type() == pt {
			candidates = append(candidates, other.From())
		}
	}

	// No ambiguity
	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + from.File()))
	}
	if !sameRank {
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN resolves a SAN string against the legal moves of the side to move.
func (s GameState) ParseSAN(san string) (Move, error) {
	str := strings.TrimSpace(san)
	str = strings.TrimRight(str, "+#!?")

	home := E1
	if s.Turn == Black {
		home = E8
	}
	switch str {
	case "O-O", "0-0":
		return s.matchLegal(NewMove(home, home.Offset(2, 0)), san)
	case "O-O-O", "0-0-0":
		return s.matchLegal(NewMove(home, home.Offset(-2, 0)), san)
	}

	// Promotion is always to a queen
	if idx := strings.Index(str, "="); idx >= 0 {
		if idx+1 >= len(str) || str[idx+1] != 'Q' {
			return NoMove, fmt.Errorf("%w: only queen promotion is supported: %q", ErrInvalidMove, san)
		}
		str = str[:idx]
	}

	isCapture := strings.Contains(str, "x")
	str = strings.ReplaceAll(str, "x", "")

	pt := Pawn
	if len(str) > 0 && str[0] >= 'A' && str[0] <= 'Z' {
		switch str[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		default:
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, san)
		}
		str = str[1:]
	}

	if len(str) < 2 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, san)
	}
	dest, err := ParseSquare(str[len(str)-2:])
	if err != nil {
		return NoMove, err
	}
	str = str[:len(str)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range str {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		}
	}

	for _, m := range s.LegalMoves() {
		if m.To() != dest {
			continue
		}
		from := m.From()
		if s.Board[from].Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(&s.Board) {
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, san)
}

func (s GameState) matchLegal(m Move, san string) (Move, error) {
	if s.Board[m.From()] != NewPiece(King, s.Turn) || !s.IsLegal(m) {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, san)
	}
	return m, nil
}

// MovesToSAN converts a sequence of moves played from s to SAN.
func MovesToSAN(s GameState, moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = s.ToSAN(m)
		s, _ = s.Apply(m)
	}
	return result
}
