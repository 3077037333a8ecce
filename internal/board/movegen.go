package board

// IsPseudoLegalMove returns true if the piece on from may move to to by its movement
// pattern, without checking whether the move leaves the mover's own king in check.
// Castling is included, with its full never-moved, empty-path and not-through-check rules.
func IsPseudoLegalMove(b *Board, last LastMove, rights CastlingRights, from, to Square) bool {
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}
	p := b[from]
	if p == NoPiece {
		return false
	}
	us := p.Color()
	if b[to].Is(us) {
		return false
	}

	df, dr := to.File()-from.File(), to.Rank()-from.Rank()

	switch p.Type() {
	case Pawn:
		return pawnMove(b, last, us, from, to, df, dr)
	case Knight:
		return knightPattern(df, dr)
	case Bishop:
		return abs(df) == abs(dr) && pathClear(b, from, to)
	case Rook:
		return (df == 0 || dr == 0) && pathClear(b, from, to)
	case Queen:
		return (df == 0 || dr == 0 || abs(df) == abs(dr)) && pathClear(b, from, to)
	case King:
		if abs(df) <= 1 && abs(dr) <= 1 {
			return true
		}
		if dr == 0 && abs(df) == 2 {
			return castleAllowed(b, rights, us, from, to)
		}
	}
	return false
}

// pawnMove covers pushes, double pushes, diagonal captures and en passant.
func pawnMove(b *Board, last LastMove, us Color, from, to Square, df, dr int) bool {
	dir := pawnDir(us)
	target := b[to]

	if df == 0 {
		if target != NoPiece {
			return false
		}
		if dr == dir {
			return true
		}
		return dr == 2*dir && from.RelativeRank(us) == 1 && b.IsEmpty(from.Offset(0, dir))
	}

	if abs(df) != 1 || dr != dir {
		return false
	}
	if target.Is(us.Other()) {
		return true
	}
	return target == NoPiece && enPassantAllowed(b, last, us, from, to)
}

// enPassantAllowed reports whether the previous ply was an enemy pawn double step
// landing beside from on the file of to.
func enPassantAllowed(b *Board, last LastMove, us Color, from, to Square) bool {
	enemyPawn := NewPiece(Pawn, us.Other())
	if last.Piece != enemyPawn {
		return false
	}
	if last.From.File() != last.To.File() || abs(last.To.Rank()-last.From.Rank()) != 2 {
		return false
	}
	victim := NewSquare(to.File(), from.Rank())
	return last.To == victim && b[victim] == enemyPawn
}

// castleAllowed checks a two-square king move toward an unmoved rook.
func castleAllowed(b *Board, rights CastlingRights, us Color, from, to Square) bool {
	home, rookFrom := E1, H1
	if us == Black {
		home = E8
	}
	kingSide := to > from
	if !kingSide {
		rookFrom = A1
	}
	if us == Black {
		rookFrom += A8
	}

	if from != home || !rights.CanCastle(us, kingSide) {
		return false
	}
	if b[rookFrom] != NewPiece(Rook, us) {
		return false
	}

	step := 1
	if !kingSide {
		step = -1
	}
	for sq := from.Offset(step, 0); sq != rookFrom; sq = sq.Offset(step, 0) {
		if b[sq] != NoPiece {
			return false
		}
	}

	// Not out of, through, or into check.
	them := us.Other()
	for _, sq := range [3]Square{from, from.Offset(step, 0), to} {
		if IsSquareAttacked(b, sq, them) {
			return false
		}
	}
	return true
}

// attacks reports whether the piece on from attacks to by its basic movement pattern.
// Pawns attack diagonally whether or not to is occupied; castling is never an attack.
func attacks(b *Board, from, to Square) bool {
	if from == to {
		return false
	}
	p := b[from]
	df, dr := to.File()-from.File(), to.Rank()-from.Rank()

	switch p.Type() {
	case Pawn:
		return abs(df) == 1 && dr == pawnDir(p.Color())
	case Knight:
		return knightPattern(df, dr)
	case Bishop:
		return abs(df) == abs(dr) && pathClear(b, from, to)
	case Rook:
		return (df == 0 || dr == 0) && pathClear(b, from, to)
	case Queen:
		return (df == 0 || dr == 0 || abs(df) == abs(dr)) && pathClear(b, from, to)
	case King:
		return abs(df) <= 1 && abs(dr) <= 1
	}
	return false
}

// IsSquareAttacked returns true if any piece of color by attacks sq.
func IsSquareAttacked(b *Board, sq Square, by Color) bool {
	if !sq.IsValid() {
		return false
	}
	for from := Square(0); from < NoSquare; from++ {
		if b[from].Is(by) && attacks(b, from, sq) {
			return true
		}
	}
	return false
}

// IsInCheck returns true if the king of color c is attacked.
// A board without that king reports false; see Board.FindKing and Board.Validate.
func IsInCheck(b *Board, c Color) bool {
	ksq, err := b.FindKing(c)
	if err != nil {
		return false
	}
	return IsSquareAttacked(b, ksq, c.Other())
}

// IsLegalMove returns true if the move is pseudo-legal and, once played on a scratch
// copy of the board (rook relocation and en passant removal included), does not leave
// the mover's king in check.
func IsLegalMove(b *Board, last LastMove, rights CastlingRights, from, to Square) bool {
	if !IsPseudoLegalMove(b, last, rights, from, to) {
		return false
	}
	us := b[from].Color()
	scratch := *b
	scratch.play(NewMove(from, to))
	return !IsInCheck(&scratch, us)
}

// GenerateLegalMoves returns every legal move for color c, ordered by origin then destination.
func GenerateLegalMoves(b *Board, last LastMove, rights CastlingRights, c Color) []Move {
	var moves []Move
	for from := Square(0); from < NoSquare; from++ {
		if !b[from].Is(c) {
			continue
		}
		moves = appendLegalFrom(moves, b, last, rights, from)
	}
	return moves
}

// LegalMovesFrom returns the legal moves of the piece on from.
func LegalMovesFrom(b *Board, last LastMove, rights CastlingRights, from Square) []Move {
	if !from.IsValid() || b[from] == NoPiece {
		return nil
	}
	return appendLegalFrom(nil, b, last, rights, from)
}

func appendLegalFrom(moves []Move, b *Board, last LastMove, rights CastlingRights, from Square) []Move {
	for to := Square(0); to < NoSquare; to++ {
		if IsLegalMove(b, last, rights, from, to) {
			moves = append(moves, NewMove(from, to))
		}
	}
	return moves
}

// HasLegalMoves returns true if color c has at least one legal move.
func HasLegalMoves(b *Board, last LastMove, rights CastlingRights, c Color) bool {
	for from := Square(0); from < NoSquare; from++ {
		if !b[from].Is(c) {
			continue
		}
		for to := Square(0); to < NoSquare; to++ {
			if IsLegalMove(b, last, rights, from, to) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate returns true if color c is in check and has no legal move.
func IsCheckmate(b *Board, last LastMove, rights CastlingRights, c Color) bool {
	return IsInCheck(b, c) && !HasLegalMoves(b, last, rights, c)
}

// IsStalemate returns true if color c is not in check and has no legal move.
func IsStalemate(b *Board, last LastMove, rights CastlingRights, c Color) bool {
	return !IsInCheck(b, c) && !HasLegalMoves(b, last, rights, c)
}

// pathClear reports whether every square strictly between from and to on a
// rank, file or diagonal is empty.
func pathClear(b *Board, from, to Square) bool {
	df, dr := sign(to.File()-from.File()), sign(to.Rank()-from.Rank())
	for sq := from.Offset(df, dr); sq != to; sq = sq.Offset(df, dr) {
		if !sq.IsValid() {
			return false
		}
		if b[sq] != NoPiece {
			return false
		}
	}
	return true
}

func knightPattern(df, dr int) bool {
	adf, adr := abs(df), abs(dr)
	return (adf == 1 && adr == 2) || (adf == 2 && adr == 1)
}

func pawnDir(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
