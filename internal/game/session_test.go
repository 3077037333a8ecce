package game

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hailam/funzone/internal/board"
	"github.com/hailam/funzone/internal/engine"
	"github.com/hailam/funzone/internal/notify"
)

type memStore struct {
	mu      sync.Mutex
	games   map[string]*Record
	saves   int
	results []Result
}

func newMemStore() *memStore {
	return &memStore{games: make(map[string]*Record)}
}

func (m *memStore) SaveGame(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.games[rec.ID] = rec
	return nil
}

func (m *memStore) LoadGame(id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

func (m *memStore) RecordResult(res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Kind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func sq(t *testing.T, s string) board.Square {
	t.Helper()
	v, err := board.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func mv(t *testing.T, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func quickOpponent(delay time.Duration) Option {
	return WithOpponent(engine.NewOpponent(delay, 11))
}

func TestNewSession(t *testing.T) {
	s := NewSession(OnePlayer, quickOpponent(0))

	if s.ID() == "" {
		t.Error("session should get a generated id")
	}
	if p := s.Players(); p[board.White] == "" || p[board.Black] != "computer" {
		t.Errorf("players = %q", p)
	}
	if s.Message() != "Your turn! (White pieces)" {
		t.Errorf("message = %q", s.Message())
	}
	if s.Status() != board.InProgress || s.Selected() != board.NoSquare {
		t.Error("fresh session should be in progress with nothing selected")
	}

	two := NewSession(TwoPlayer)
	if two.Message() != "White's turn" {
		t.Errorf("two-player message = %q", two.Message())
	}
	if p := two.Players(); p[board.Black] == "computer" || p[board.Black] == "" {
		t.Errorf("two-player players = %q", p)
	}
}

func TestClickSelectsAndHints(t *testing.T) {
	s := NewSession(OnePlayer, quickOpponent(time.Hour))
	defer s.Close()

	if s.Click(sq(t, "e7")) || s.Selected() != board.NoSquare {
		t.Fatal("black pieces must not be selectable in one-player mode")
	}
	if s.Click(sq(t, "e4")) || s.Selected() != board.NoSquare {
		t.Fatal("empty squares must not be selectable")
	}

	s.Click(sq(t, "e2"))
	if s.Selected() != sq(t, "e2") {
		t.Fatalf("selected = %s, want e2", s.Selected())
	}
	if s.Message() != "Select where to move" {
		t.Errorf("message = %q", s.Message())
	}
	want := []board.Square{sq(t, "e3"), sq(t, "e4")}
	if got := s.Hints(); !slices.Equal(got, want) {
		t.Errorf("hints = %v, want %v", got, want)
	}
}

func TestClickInvalidMove(t *testing.T) {
	st := newMemStore()
	s := NewSession(TwoPlayer, WithStore(st))

	s.Click(sq(t, "e2"))
	if s.Click(sq(t, "e5")) {
		t.Fatal("e2e5 must be rejected")
	}
	if s.Message() != "Invalid move! Try again." {
		t.Errorf("message = %q", s.Message())
	}
	if s.Selected() != board.NoSquare || len(s.Hints()) != 0 {
		t.Error("a failed attempt clears the selection")
	}
	if s.State() != board.NewGameState() {
		t.Error("a failed attempt must not change the position")
	}
	if st.saves != 0 {
		t.Errorf("rejected move was saved %d times", st.saves)
	}
}

func TestOnePlayerComputerReplies(t *testing.T) {
	st := newMemStore()
	rec := &recorder{}
	s := NewSession(OnePlayer, quickOpponent(10*time.Millisecond), WithStore(st), WithNotifier(rec))

	s.Click(sq(t, "e2"))
	if !s.Click(sq(t, "e4")) {
		t.Fatal("e2e4 should be played")
	}
	if s.Message() != "Computer is thinking..." {
		t.Errorf("message = %q", s.Message())
	}
	if !s.Thinking() {
		t.Fatal("computer should be thinking after the human move")
	}
	if err := s.Move(mv(t, "d2d4")); !errors.Is(err, ErrComputerTurn) {
		t.Errorf("Move during computer turn err = %v, want ErrComputerTurn", err)
	}
	if s.Click(sq(t, "d2")) || s.Selected() != board.NoSquare {
		t.Error("clicks are ignored while the computer is to move")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, ok, err := s.AwaitComputerMove(ctx)
	if err != nil || !ok {
		t.Fatalf("AwaitComputerMove = %s %v %v", m, ok, err)
	}

	state := s.State()
	if state.Turn != board.White || state.LastMove.Piece.Color() != board.Black {
		t.Errorf("after reply: turn %s, last move %+v", state.Turn, state.LastMove)
	}
	if s.Message() != "Your turn! (White pieces)" {
		t.Errorf("message = %q", s.Message())
	}
	if s.Thinking() {
		t.Error("no reply should be pending")
	}
	if len(s.History()) != 2 || s.History()[0] != "e4" {
		t.Errorf("history = %v", s.History())
	}
	if st.saves != 2 {
		t.Errorf("saves = %d, want one per ply", st.saves)
	}
	if got := rec.kinds(); !slices.Equal(got, []notify.Kind{notify.KindMove, notify.KindMove}) {
		t.Errorf("events = %v", got)
	}
}

func TestPollComputerMove(t *testing.T) {
	s := NewSession(OnePlayer, quickOpponent(0))
	if _, ok := s.PollComputerMove(); ok {
		t.Fatal("nothing should be pending before the first move")
	}
	if err := s.Move(mv(t, "g1f3")); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := s.PollComputerMove(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("computer reply never arrived")
		}
		time.Sleep(time.Millisecond)
	}
	if s.State().Ply != 2 {
		t.Errorf("ply = %d, want 2", s.State().Ply)
	}
}

func TestResetDiscardsPendingReply(t *testing.T) {
	rec := &recorder{}
	s := NewSession(OnePlayer, quickOpponent(time.Hour), WithNotifier(rec))
	if err := s.Move(mv(t, "e2e4")); err != nil {
		t.Fatal(err)
	}

	s.Reset()

	if s.Thinking() {
		t.Error("reset should cancel the computer reply")
	}
	if _, ok, err := s.AwaitComputerMove(context.Background()); ok || err != nil {
		t.Errorf("AwaitComputerMove after reset = %v %v", ok, err)
	}
	state := s.State()
	if state != board.NewGameState() {
		t.Errorf("reset state differs from the initial position:\n%s", state)
	}
	if state.Castling != board.NoneMoved || !state.LastMove.IsZero() {
		t.Error("reset must restore castling rights and clear the last move")
	}
	if s.Message() != "Your turn! (White pieces)" || len(s.History()) != 0 {
		t.Errorf("message %q history %v", s.Message(), s.History())
	}
	if got := rec.kinds(); !slices.Equal(got, []notify.Kind{notify.KindMove, notify.KindReset}) {
		t.Errorf("events = %v", got)
	}
}

func TestTwoPlayerFoolsMate(t *testing.T) {
	st := newMemStore()
	rec := &recorder{}
	s := NewSession(TwoPlayer, WithStore(st), WithNotifier(rec))

	steps := []struct {
		move, message string
	}{
		{"f2f3", "Black's turn"},
		{"e7e5", "White's turn"},
		{"g2g4", "Black's turn"},
		{"d8h4", "Checkmate! Black wins! 🎉"},
	}
	for _, step := range steps {
		m := mv(t, step.move)
		s.Click(m.From())
		if s.Message() != s.State().Turn.String()+": Select where to move" {
			t.Errorf("%s: select message = %q", step.move, s.Message())
		}
		if !s.Click(m.To()) {
			t.Fatalf("%s was rejected: %s", step.move, s.Message())
		}
		if s.Message() != step.message {
			t.Errorf("after %s message = %q, want %q", step.move, s.Message(), step.message)
		}
	}

	if !s.Over() || s.Status() != board.Checkmate {
		t.Fatalf("status = %s, want checkmate", s.Status())
	}
	if s.Click(sq(t, "a2")) || s.Selected() != board.NoSquare {
		t.Error("clicks are ignored after the game ended")
	}
	if err := s.Move(mv(t, "a2a3")); !errors.Is(err, board.ErrGameOver) {
		t.Errorf("Move after mate err = %v, want ErrGameOver", err)
	}
	if s.Message() != "Checkmate! Black wins! 🎉" {
		t.Errorf("terminal message overwritten: %q", s.Message())
	}

	if len(st.results) != 1 {
		t.Fatalf("results = %v, want one", st.results)
	}
	res := st.results[0]
	if res.Winner != board.Black || res.Draw() || res.Plies != 4 || res.HumanWon() {
		t.Errorf("result = %+v", res)
	}
	if k := rec.kinds(); k[len(k)-1] != notify.KindEnd {
		t.Errorf("last event kind = %s, want end", k[len(k)-1])
	}
	snap := st.games[s.ID()]
	if snap.Status != board.Checkmate || snap.Winner != board.Black {
		t.Errorf("stored record status %s winner %s", snap.Status, snap.Winner)
	}
}

func TestTwoPlayerCheckMessage(t *testing.T) {
	s := NewSession(TwoPlayer)
	for _, str := range []string{"e2e4", "f7f6", "d1h5"} {
		if err := s.Move(mv(t, str)); err != nil {
			t.Fatal(err)
		}
	}
	if s.Message() != "Check! Black's turn" {
		t.Errorf("message = %q", s.Message())
	}
}

func TestOnePlayerHumanMates(t *testing.T) {
	st := newMemStore()
	rec := &Record{
		ID:       "back-rank",
		Mode:     OnePlayer,
		FEN:      "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
		Castling: board.AllMoved,
	}
	s, err := Restore(rec, quickOpponent(0), WithStore(st))
	if err != nil {
		t.Fatal(err)
	}
	if s.Message() != "Your turn! (White pieces)" {
		t.Errorf("restored message = %q", s.Message())
	}

	if err := s.Move(mv(t, "a1a8")); err != nil {
		t.Fatal(err)
	}
	if s.Message() != "Checkmate! You win! 🎉" {
		t.Errorf("message = %q", s.Message())
	}
	if s.Thinking() {
		t.Error("the computer must not think after being mated")
	}
	if len(st.results) != 1 || !st.results[0].HumanWon() {
		t.Errorf("results = %+v", st.results)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewSession(TwoPlayer, WithPlayers("ada", "grace"))
	for _, str := range []string{"e2e4", "d7d5", "e4d5", "g8f6", "f1b5", "c7c6", "g1f3", "c6b5", "e1g1"} {
		if err := s.Move(mv(t, str)); err != nil {
			t.Fatalf("%s: %v", str, err)
		}
	}
	want := s.State()
	rec := s.Snapshot()

	if rec.Players != [2]string{"ada", "grace"} || len(rec.Moves) != 9 || rec.SAN[8] != "O-O" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Scores != [2]int{1, 3} {
		t.Errorf("scores = %v, want [1 3]", rec.Scores)
	}

	back, err := Restore(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.State(); got != want {
		t.Errorf("restored state differs:\n%s\nwant\n%s", got, want)
	}
	if back.ID() != s.ID() || !slices.Equal(back.History(), s.History()) {
		t.Error("restore lost the id or the history")
	}
	if back.Message() != "Black's turn" {
		t.Errorf("restored message = %q", back.Message())
	}
}

func TestRestoreRejectsBadRecords(t *testing.T) {
	bad := []*Record{
		{ID: "x", FEN: "not a fen"},
		{ID: "x", FEN: "8/8/8/8/8/8/8/4K3 w - - 0 1"},
		{ID: "x", FEN: board.StartFEN, Moves: []string{"e2e9"}},
	}
	for _, rec := range bad {
		if _, err := Restore(rec); !errors.Is(err, ErrBadRecord) {
			t.Errorf("Restore(%q) err = %v, want ErrBadRecord", rec.FEN, err)
		}
	}
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		mode Mode
		fen  string
		want string
	}{
		{OnePlayer, "4k3/8/8/8/8/8/8/4K2r w - - 0 1", "Check! Your turn (White pieces)"},
		{OnePlayer, "4k2R/8/8/8/8/8/8/4K3 b - - 0 1", "Check! Computer is thinking..."},
		{OnePlayer, "7k/8/8/8/8/8/5PPP/r5K1 w - - 0 1", "Checkmate! Computer wins!"},
		{OnePlayer, "7k/8/6Q1/8/8/8/8/K7 b - - 0 1", "Stalemate! It's a draw."},
		{TwoPlayer, "4k3/8/8/8/8/8/8/4K3 b - - 0 1", "Black's turn"},
		{TwoPlayer, "7k/8/8/8/8/8/5PPP/r5K1 w - - 0 1", "Checkmate! Black wins! 🎉"},
	}
	for _, tc := range tests {
		s, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := statusMessage(tc.mode, &s, s.Status()); got != tc.want {
			t.Errorf("%s %s: %q, want %q", tc.mode, tc.fen, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"1p": OnePlayer, "2-player": TwoPlayer, " 2P ": TwoPlayer} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseMode("3p"); !errors.Is(err, ErrBadMode) {
		t.Errorf("ParseMode(3p) err = %v", err)
	}
}
