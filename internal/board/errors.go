package board

import "errors"

var (
	ErrInvalidSquare = errors.New("board: invalid square")
	ErrInvalidMove   = errors.New("board: invalid move string")
	ErrInvalidFEN    = errors.New("board: invalid FEN")
	ErrNoKing        = errors.New("board: no king for color")
	ErrTooManyKings  = errors.New("board: more than one king for color")
	ErrPawnBackRank  = errors.New("board: pawn on first or last rank")

	ErrNoPiece     = errors.New("board: no piece on origin square")
	ErrWrongTurn   = errors.New("board: piece does not belong to side to move")
	ErrIllegalMove = errors.New("board: illegal move")
	ErrGameOver    = errors.New("board: game is over")
)
