package board

import (
	"errors"
	"slices"
	"testing"
)

func TestToSAN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{"pawn push", StartFEN, "e2e4", "e4"},
		{"knight", StartFEN, "g1f3", "Nf3"},
		{"file disambiguation", "4k3/8/8/8/8/5N2/8/1N2K3 w - - 0 1", "b1d2", "Nbd2"},
		{"rank disambiguation", "4k3/8/8/8/R7/8/8/R3K3 w - - 0 1", "a1a2", "R1a2"},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", "exd5"},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", "exd6"},
		{"kingside castle", "5k2/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", "O-O+"},
		{"queenside castle", "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1", "e1c1", "O-O-O"},
		{"mate", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		{"capture promotion", "1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7b8", "axb8=Q+"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustFEN(t, tc.fen)
			m, err := ParseMove(tc.move)
			if err != nil {
				t.Fatal(err)
			}
			if !s.IsLegal(m) {
				t.Fatalf("%s is not legal in %s", tc.move, tc.fen)
			}
			if got := s.ToSAN(m); got != tc.want {
				t.Errorf("ToSAN(%s) = %q, want %q", tc.move, got, tc.want)
			}
			back, err := s.ParseSAN(tc.want)
			if err != nil {
				t.Fatalf("ParseSAN(%q): %v", tc.want, err)
			}
			if back != m {
				t.Errorf("ParseSAN(%q) = %s, want %s", tc.want, back, m)
			}
		})
	}
}

func TestParseSANErrors(t *testing.T) {
	s := NewGameState()

	for _, san := range []string{"", "e5", "Nd4", "O-O", "Zf3", "e8=N"} {
		if _, err := s.ParseSAN(san); err == nil {
			t.Errorf("ParseSAN(%q) should fail from the start position", san)
		}
	}

	if _, err := s.ParseSAN("Ke2"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("ParseSAN(Ke2) err = %v, want ErrIllegalMove", err)
	}
}

func TestMovesToSAN(t *testing.T) {
	var moves []Move
	for _, str := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		m, err := ParseMove(str)
		if err != nil {
			t.Fatal(err)
		}
		moves = append(moves, m)
	}

	got := MovesToSAN(NewGameState(), moves)
	want := []string{"f3", "e5", "g4", "Qh4#"}
	if !slices.Equal(got, want) {
		t.Errorf("MovesToSAN = %v, want %v", got, want)
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e7e8q")
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "e7e8" {
		t.Errorf("ParseMove(e7e8q) = %s", m)
	}

	for _, in := range []string{"e2", "e2e9", "e7e8n", "z2e4", "e2e4e5"} {
		if _, err := ParseMove(in); err == nil {
			t.Errorf("ParseMove(%q) should fail", in)
		}
	}
}

func TestSortMoves(t *testing.T) {
	moves := []Move{NewMove(G1, F1), NewMove(A1, B1), NewMove(G1, E1), NewMove(B1, C1)}
	SortMoves(moves)
	want := []Move{NewMove(A1, B1), NewMove(B1, C1), NewMove(G1, E1), NewMove(G1, F1)}
	if !slices.Equal(moves, want) {
		t.Errorf("SortMoves = %v, want %v", moves, want)
	}
}
