// Package engine implements the computer opponent: a one-ply greedy-capture
// chooser and the paced scheduler that plays it.
package engine

import (
	"math/rand/v2"

	"github.com/hailam/funzone/internal/board"
)

// Captures returns the legal moves of the side to move that take a piece,
// en passant included.
func Captures(s board.GameState) []board.Move {
	var out []board.Move
	for _, m := range s.LegalMoves() {
		if m.IsCapture(&s.Board) {
			out = append(out, m)
		}
	}
	return out
}

// ChooseMove picks the reply for the side to move. If any capture is legal it
// picks uniformly among the captures, otherwise uniformly among all legal moves.
// There is no look-ahead beyond the legality filter.
// It returns false when the side to move has no legal move.
func ChooseMove(s board.GameState, rng *rand.Rand) (board.Move, bool) {
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return board.NoMove, false
	}

	var captures []board.Move
	for _, m := range moves {
		if m.IsCapture(&s.Board) {
			captures = append(captures, m)
		}
	}
	if len(captures) > 0 {
		moves = captures
	}

	return moves[rng.IntN(len(moves))], true
}
