package board

import "fmt"

// LastMove records the immediately preceding ply. Only one ply is kept, which is
// enough to decide en passant. The zero value means no move has been played.
type LastMove struct {
	From  Square `json:"from"`
	To    Square `json:"to"`
	Piece Piece  `json:"piece"`
}

// IsZero reports whether no previous move is recorded.
func (lm LastMove) IsZero() bool {
	return lm.Piece == NoPiece
}

// Move returns the recorded move, or NoMove.
func (lm LastMove) Move() Move {
	if lm.IsZero() {
		return NoMove
	}
	return NewMove(lm.From, lm.To)
}

// Capture describes the piece a move took off the board.
type Capture struct {
	Piece  Piece
	Square Square
}

// GameState is everything the rules need to judge the next move, plus the running
// capture scores. It is a value: Apply returns a new state and never mutates the receiver.
type GameState struct {
	Board    Board          `json:"-"`
	LastMove LastMove       `json:"last_move"`
	Castling CastlingRights `json:"castling"`
	Turn     Color          `json:"turn"`
	Scores   [2]int         `json:"scores"`
	Ply      int            `json:"ply"`
}

// NewGameState returns the standard starting position with white to move.
func NewGameState() GameState {
	return GameState{
		Board: NewBoard(),
		Turn:  White,
	}
}

// IsPseudoLegal reports whether m matches the moving piece's pattern.
func (s GameState) IsPseudoLegal(m Move) bool {
	return IsPseudoLegalMove(&s.Board, s.LastMove, s.Castling, m.From(), m.To())
}

// IsLegal reports whether m is legal in this state, for whichever side owns the piece.
func (s GameState) IsLegal(m Move) bool {
	return IsLegalMove(&s.Board, s.LastMove, s.Castling, m.From(), m.To())
}

// LegalMoves returns the legal moves of the side to move.
func (s GameState) LegalMoves() []Move {
	return GenerateLegalMoves(&s.Board, s.LastMove, s.Castling, s.Turn)
}

// LegalMovesFor returns the legal moves of color c.
func (s GameState) LegalMovesFor(c Color) []Move {
	return GenerateLegalMoves(&s.Board, s.LastMove, s.Castling, c)
}

// LegalMovesFrom returns the legal destinations of the piece on sq as moves.
func (s GameState) LegalMovesFrom(sq Square) []Move {
	return LegalMovesFrom(&s.Board, s.LastMove, s.Castling, sq)
}

// InCheck reports whether the side to move is in check.
func (s GameState) InCheck() bool {
	return IsInCheck(&s.Board, s.Turn)
}

// Status evaluates the position for the side to move.
func (s GameState) Status() Status {
	return Evaluate(&s.Board, s.LastMove, s.Castling, s.Turn)
}

// Apply plays m without any legality check and returns the resulting state.
// The steps run in a fixed order: castling rook relocation, en passant removal,
// the piece move itself (promoting pawns to queens), castling flag updates,
// the last-move record, and finally the capture score.
func (s GameState) Apply(m Move) (GameState, Capture) {
	next := s
	from := m.From()
	mover := next.Board[from]

	captured, capSq := next.Board.play(m)

	next.Castling = next.Castling.Mark(touched(mover, from, captured, capSq))
	next.LastMove = LastMove{From: from, To: m.To(), Piece: mover}
	if captured != NoPiece {
		next.Scores[mover.Color()] += captured.Value()
	}
	next.Turn = mover.Color().Other()
	next.Ply++

	return next, Capture{Piece: captured, Square: capSq}
}

// Play validates m for the side to move and applies it.
// On error the receiver is returned unchanged.
func (s GameState) Play(m Move) (GameState, Capture, error) {
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() {
		return s, Capture{}, fmt.Errorf("%w: %s", ErrInvalidSquare, m)
	}
	if s.Status().Terminal() {
		return s, Capture{}, ErrGameOver
	}
	p := s.Board[from]
	if p == NoPiece {
		return s, Capture{}, fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if p.Color() != s.Turn {
		return s, Capture{}, fmt.Errorf("%w: %s on %s", ErrWrongTurn, p.Color(), from)
	}
	if !s.IsLegal(m) {
		return s, Capture{}, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	next, c := s.Apply(m)
	return next, c, nil
}

// play performs the board mechanics of m and returns the captured piece and its square.
func (b *Board) play(m Move) (Piece, Square) {
	from, to := m.From(), m.To()
	mover := b[from]
	kind := Classify(b, m)

	var captured Piece
	capSq := to

	switch kind {
	case KindCastleKingSide, KindCastleQueenSide:
		rookFrom, rookTo := castleRookSquares(from, kind)
		b[rookTo] = b[rookFrom]
		b[rookFrom] = NoPiece
	case KindEnPassant:
		capSq = NewSquare(to.File(), from.Rank())
		captured = b[capSq]
		b[capSq] = NoPiece
	default:
		captured = b[to]
	}

	b[to] = mover
	b[from] = NoPiece
	if kind == KindPromotion {
		b[to] = NewPiece(Queen, mover.Color())
	}

	if captured == NoPiece {
		capSq = NoSquare
	}
	return captured, capSq
}

// castleRookSquares returns where the rook starts and lands for a castling king move from kingFrom.
func castleRookSquares(kingFrom Square, kind MoveKind) (Square, Square) {
	if kind == KindCastleKingSide {
		return kingFrom.Offset(3, 0), kingFrom.Offset(1, 0)
	}
	return kingFrom.Offset(-4, 0), kingFrom.Offset(-1, 0)
}

// String returns the board diagram followed by the state fields.
func (s GameState) String() string {
	out := s.Board.String()
	out += fmt.Sprintf("\nSide to move: %s\n", s.Turn)
	out += fmt.Sprintf("Castling: %s\n", s.Castling)
	out += fmt.Sprintf("En passant: %s\n", s.EnPassantTarget())
	out += fmt.Sprintf("Scores: white %d, black %d\n", s.Scores[White], s.Scores[Black])
	return out
}
