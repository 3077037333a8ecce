package board

// Status is the game state for the side to move.
type Status uint8

const (
	InProgress Status = iota
	Check             // in progress, side to move is in check
	Checkmate
	Stalemate
)

// String returns the status name.
func (st Status) String() string {
	switch st {
	case InProgress:
		return "in_progress"
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further moves are accepted.
func (st Status) Terminal() bool {
	return st == Checkmate || st == Stalemate
}

// Evaluate computes the status of color c: checkmate, stalemate, check or in progress.
func Evaluate(b *Board, last LastMove, rights CastlingRights, c Color) Status {
	inCheck := IsInCheck(b, c)
	if !HasLegalMoves(b, last, rights, c) {
		if inCheck {
			return Checkmate
		}
		return Stalemate
	}
	if inCheck {
		return Check
	}
	return InProgress
}

// Winner returns the winning color for a checkmated side to move, or NoColor.
func Winner(st Status, toMove Color) Color {
	if st != Checkmate {
		return NoColor
	}
	return toMove.Other()
}
