package game

import (
	"fmt"
	"time"

	"github.com/hailam/funzone/internal/board"
)

// Record is the serialisable form of a session. It is what the store keeps
// and what a restored session is rebuilt from.
type Record struct {
	ID        string               `json:"id"`
	Mode      Mode                 `json:"mode"`
	Players   [2]string            `json:"players"`
	FEN       string               `json:"fen"`
	LastMove  board.LastMove       `json:"last_move"`
	Castling  board.CastlingRights `json:"castling"`
	Scores    [2]int               `json:"scores"`
	Turn      board.Color          `json:"turn"`
	Status    board.Status         `json:"status"`
	Winner    board.Color          `json:"winner"`
	Moves     []string             `json:"moves"`
	SAN       []string             `json:"san"`
	StartedAt time.Time            `json:"started_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Result summarises a finished game for the statistics.
type Result struct {
	GameID   string        `json:"game_id"`
	Mode     Mode          `json:"mode"`
	Status   board.Status  `json:"status"`
	Winner   board.Color   `json:"winner"`
	Scores   [2]int        `json:"scores"`
	Plies    int           `json:"plies"`
	Duration time.Duration `json:"duration"`
}

// Draw reports whether the game ended without a winner.
func (r Result) Draw() bool {
	return r.Winner == board.NoColor
}

// HumanWon reports whether the human beat the computer in a one-player game.
func (r Result) HumanWon() bool {
	return r.Mode == OnePlayer && r.Winner == board.White
}

// State rebuilds the rules state held by the record. The FEN carries the board,
// side to move and ply; the castling flags, last move and scores come from
// their own fields since the FEN cannot express them exactly.
func (r *Record) State() (board.GameState, error) {
	s, err := board.ParseFEN(r.FEN)
	if err != nil {
		return board.GameState{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if err := s.Board.Validate(); err != nil {
		return board.GameState{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	s.Castling = r.Castling
	s.Scores = r.Scores
	if !r.LastMove.IsZero() {
		lm := r.LastMove
		if !lm.From.IsValid() || !lm.To.IsValid() || s.Board[lm.To] != lm.Piece && lm.Piece.Type() != board.Pawn {
			return board.GameState{}, fmt.Errorf("%w: last move %s does not match the board", ErrBadRecord, lm.Move())
		}
		s.LastMove = lm
	}
	return s, nil
}
