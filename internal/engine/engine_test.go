package engine

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/hailam/funzone/internal/board"
)

func mustFEN(t *testing.T, fen string) board.GameState {
	t.Helper()
	s, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}
	return s
}

func TestChooseMovePrefersCaptures(t *testing.T) {
	// Black can take the white knight on d4 with the c5 pawn or the queen.
	s := mustFEN(t, "3qk3/8/8/2p5/3N4/8/8/4K3 b - - 0 1")

	captures := Captures(s)
	if len(captures) != 2 {
		t.Fatalf("Captures = %v, want 2 moves onto d4", captures)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	seen := map[board.Move]bool{}
	for i := 0; i < 200; i++ {
		m, ok := ChooseMove(s, rng)
		if !ok {
			t.Fatal("ChooseMove found no move")
		}
		if m.To() != board.NewSquare(3, 3) {
			t.Fatalf("ChooseMove picked non-capture %s while captures exist", m)
		}
		seen[m] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected both captures to be picked over 200 draws, saw %v", seen)
	}
}

func TestChooseMoveEnPassantCounts(t *testing.T) {
	s := mustFEN(t, "4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 1")

	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 50; i++ {
		m, _ := ChooseMove(s, rng)
		if m.String() != "e4d3" {
			t.Fatalf("ChooseMove = %s, want the en passant capture e4d3", m)
		}
	}
}

func TestChooseMoveUniformWithoutCaptures(t *testing.T) {
	s := board.NewGameState()
	legal := s.LegalMoves()

	rng := rand.New(rand.NewPCG(42, 0))
	seen := map[board.Move]int{}
	for i := 0; i < 2000; i++ {
		m, ok := ChooseMove(s, rng)
		if !ok {
			t.Fatal("ChooseMove found no move from the start")
		}
		if !s.IsLegal(m) {
			t.Fatalf("ChooseMove returned illegal %s", m)
		}
		seen[m]++
	}
	if len(seen) != len(legal) {
		t.Errorf("picked %d distinct moves out of %d legal", len(seen), len(legal))
	}
}

func TestChooseMoveDeterministic(t *testing.T) {
	s := board.NewGameState()

	a := rand.New(rand.NewPCG(99, 1))
	b := rand.New(rand.NewPCG(99, 1))
	for i := 0; i < 20; i++ {
		ma, _ := ChooseMove(s, a)
		mb, _ := ChooseMove(s, b)
		if ma != mb {
			t.Fatalf("same seed diverged at draw %d: %s vs %s", i, ma, mb)
		}
		s, _ = s.Apply(ma)
	}
}

func TestChooseMoveNoMoves(t *testing.T) {
	s := mustFEN(t, "7k/8/6Q1/8/8/8/8/K7 b - - 0 1")
	if m, ok := ChooseMove(s, rand.New(rand.NewPCG(1, 1))); ok {
		t.Errorf("ChooseMove in stalemate = %s, want none", m)
	}
}

func TestOpponentThink(t *testing.T) {
	s := board.NewGameState()
	s, _ = s.Apply(board.NewMove(board.NewSquare(4, 1), board.NewSquare(4, 3)))

	o := NewOpponent(20*time.Millisecond, 5)
	start := time.Now()

	m, ok := <-o.Think(context.Background(), s)
	if !ok {
		t.Fatal("Think closed without a move")
	}
	if elapsed := time.Since(start); elapsed < o.Delay {
		t.Errorf("Think answered after %v, before the %v delay", elapsed, o.Delay)
	}
	if s.Board[m.From()].Color() != board.Black || !s.IsLegal(m) {
		t.Errorf("Think returned %s, want a legal black move", m)
	}
}

func TestOpponentThinkCancelled(t *testing.T) {
	o := NewOpponent(time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())

	ch := o.Think(ctx, board.NewGameState())
	cancel()

	select {
	case m, ok := <-ch:
		if ok {
			t.Errorf("cancelled Think delivered %s", m)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Think did not close its channel")
	}
}

func TestOpponentSeedReproducible(t *testing.T) {
	s := board.NewGameState()
	a := NewOpponent(0, 123)
	b := NewOpponent(0, 123)

	for i := 0; i < 10; i++ {
		ma, _ := a.Choose(s)
		mb, _ := b.Choose(s)
		if ma != mb {
			t.Fatalf("seeded opponents diverged at move %d: %s vs %s", i, ma, mb)
		}
		s, _ = s.Apply(ma)
	}
}
