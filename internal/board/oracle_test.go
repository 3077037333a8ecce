package board

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

// referenceMoves lists the legal moves another move generator finds for fen,
// dropping underpromotions since pawns here always become queens.
func referenceMoves(t *testing.T, fen string) []string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("reference rejected FEN %q: %v", fen, err)
	}
	g := chess.NewGame(opt)

	var out []string
	for _, m := range g.ValidMoves() {
		if p := m.Promo(); p != chess.NoPieceType && p != chess.Queen {
			continue
		}
		out = append(out, m.S1().String()+m.S2().String())
	}
	slices.Sort(out)
	return out
}

func moveStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	slices.Sort(out)
	return out
}

// TestRandomPlayoutsMatchReference walks random games and compares every
// position's legal moves against an independent generator.
func TestRandomPlayoutsMatchReference(t *testing.T) {
	games, plies := 24, 120
	if testing.Short() {
		games, plies = 4, 60
	}

	for seed := range uint64(games) {
		rng := rand.New(rand.NewPCG(seed, 0x5eed))
		s := NewGameState()

		for ply := 0; ply < plies; ply++ {
			fen := s.ToFEN()
			ours := s.LegalMoves()
			if got, want := moveStrings(ours), referenceMoves(t, fen); !slices.Equal(got, want) {
				t.Fatalf("seed %d ply %d %s\nours: %v\nwant: %v", seed, ply, fen, got, want)
			}
			if len(ours) == 0 {
				break
			}

			// Prefer captures so games reach sparse endings with promotions.
			m := ours[rng.IntN(len(ours))]
			for _, c := range ours {
				if c.IsCapture(&s.Board) && rng.IntN(2) == 0 {
					m = c
					break
				}
			}
			s, _ = s.Apply(m)
		}
	}
}

// dtPerft counts leaves with the bitboard generator, keeping only queen promotions.
func dtPerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range b.GenerateLegalMoves() {
		if p := m.Promote(); p != dragontoothmg.Nothing && p != dragontoothmg.Queen {
			continue
		}
		if depth == 1 {
			nodes++
			continue
		}
		unapply := b.Apply(m)
		nodes += dtPerft(b, depth-1)
		unapply()
	}
	return nodes
}

func TestPerftMatchesBitboardGenerator(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 8",
		"8/P1k5/K7/8/8/8/6p1/8 b - - 0 1",
	}
	depth := 3
	if testing.Short() {
		depth = 2
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			s := mustFEN(t, fen)
			b := dragontoothmg.ParseFen(fen)

			got := s.Perft(depth)
			want := dtPerft(&b, depth)
			if got != want {
				t.Errorf("perft(%d) = %d, bitboard generator says %d", depth, got, want)
			}
		})
	}
}
