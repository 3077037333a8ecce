package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/board"
	"github.com/hailam/funzone/internal/engine"
	"github.com/hailam/funzone/internal/notify"
)

// Store persists game records and finished-game results.
type Store interface {
	SaveGame(rec *Record) error
	LoadGame(id string) (*Record, error)
	RecordResult(res Result) error
}

// Notifier announces game changes to the other participant.
type Notifier interface {
	Publish(ev notify.Event)
}

// Session is one game as the player sees it. All methods are safe for
// concurrent use; the computer's reply arrives on its own goroutine and is
// applied by PollComputerMove or AwaitComputerMove.
type Session struct {
	mu sync.Mutex

	id      string
	mode    Mode
	players [2]string

	state    board.GameState
	status   board.Status
	selected board.Square
	hints    []board.Move
	message  string
	moves    []board.Move
	san      []string

	startedAt time.Time
	updatedAt time.Time

	opponent *engine.Opponent
	pending  <-chan board.Move
	cancel   context.CancelFunc

	store    Store
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithStore attaches the persistence collaborator.
func WithStore(st Store) Option {
	return func(s *Session) { s.store = st }
}

// WithNotifier attaches the notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithOpponent replaces the default computer opponent.
func WithOpponent(o *engine.Opponent) Option {
	return func(s *Session) { s.opponent = o }
}

// WithID fixes the game id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithPlayers sets the display names for white and black.
func WithPlayers(white, black string) Option {
	return func(s *Session) { s.players = [2]string{white, black} }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession starts a game from the initial position.
func NewSession(mode Mode, opts ...Option) *Session {
	s := newSession(mode, opts...)
	s.resetLocked()
	s.log.Info().Str("game", s.id).Str("mode", mode.String()).Msg("new game")
	return s
}

func newSession(mode Mode, opts ...Option) *Session {
	s := &Session{
		mode:     mode,
		selected: board.NoSquare,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.players == ([2]string{}) {
		s.players[board.White] = petname.Generate(2, "-")
		if mode == OnePlayer {
			s.players[board.Black] = "computer"
		} else {
			s.players[board.Black] = petname.Generate(2, "-")
		}
	}
	if s.opponent == nil && mode == OnePlayer {
		s.opponent = engine.NewOpponent(engine.DefaultThinkDelay, 0, engine.WithLogger(s.log))
	}
	s.log = s.log.With().Str("game", s.id).Logger()
	return s
}

// Restore rebuilds a session from a stored record. In one-player mode with
// black to move the computer starts thinking straight away.
func Restore(rec *Record, opts ...Option) (*Session, error) {
	st, err := rec.State()
	if err != nil {
		return nil, err
	}
	var moves []board.Move
	for _, str := range rec.Moves {
		m, err := board.ParseMove(str)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}
		moves = append(moves, m)
	}

	all := append([]Option{WithID(rec.ID), WithPlayers(rec.Players[0], rec.Players[1])}, opts...)
	s := newSession(rec.Mode, all...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.status = st.Status()
	s.moves = moves
	s.san = append([]string(nil), rec.SAN...)
	s.startedAt = rec.StartedAt
	s.updatedAt = rec.UpdatedAt
	s.message = statusMessage(s.mode, &s.state, s.status)
	s.maybeThinkLocked()

	s.log.Info().Int("ply", st.Ply).Str("status", s.status.String()).Msg("game restored")
	return s, nil
}

// ID returns the game id.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the session mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Players returns the white and black display names.
func (s *Session) Players() [2]string {
	return s.players
}

// State returns a copy of the rules state.
func (s *Session) State() board.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the status of the side to move.
func (s *Session) Status() board.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Over reports whether the game reached checkmate or stalemate.
func (s *Session) Over() bool {
	return s.Status().Terminal()
}

// Message returns the line shown to the player.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Selected returns the selected square, or NoSquare.
func (s *Session) Selected() board.Square {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Hints returns the legal destinations of the selected piece.
func (s *Session) Hints() []board.Square {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Square, len(s.hints))
	for i, m := range s.hints {
		out[i] = m.To()
	}
	return out
}

// History returns the moves played so far in SAN.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.san...)
}

// Thinking reports whether a computer reply is pending.
func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Click handles a click on sq. With nothing selected, a click on a piece the
// player may move selects it and computes its hints. With a piece selected,
// the click is a move attempt; a failed attempt clears the selection.
// Clicks are ignored once the game is over or while the computer is to move.
// The returned bool reports whether a move was played.
func (s *Session) Click(sq board.Square) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() || !s.mode.humanColor(s.state.Turn) || !sq.IsValid() {
		return false
	}

	if s.selected == board.NoSquare {
		p := s.state.Board[sq]
		if !p.Is(s.state.Turn) {
			return false
		}
		s.selected = sq
		s.hints = s.state.LegalMovesFrom(sq)
		s.message = selectMessage(s.mode, s.state.Turn)
		return false
	}

	m := board.NewMove(s.selected, sq)
	return s.moveLocked(m) == nil
}

// Deselect clears the selection without attempting a move.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelectionLocked()
	s.message = statusMessage(s.mode, &s.state, s.status)
}

// Move plays m for the human side to move. A rejected move leaves the
// position untouched and sets the invalid-move message.
func (s *Session) Move(m board.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(m)
}

func (s *Session) moveLocked(m board.Move) error {
	if !s.status.Terminal() && !s.mode.humanColor(s.state.Turn) {
		return ErrComputerTurn
	}

	next, capture, err := s.state.Play(m)
	s.clearSelectionLocked()
	if err != nil {
		if !s.status.Terminal() {
			s.message = msgInvalidMove
		}
		s.log.Debug().Err(err).Str("move", m.String()).Msg("move rejected")
		return err
	}

	s.commitLocked(m, next, capture)
	s.maybeThinkLocked()
	return nil
}

// commitLocked installs the position reached by m and informs the collaborators.
func (s *Session) commitLocked(m board.Move, next board.GameState, capture board.Capture) {
	san := s.state.ToSAN(m)
	s.state = next
	s.status = next.Status()
	s.moves = append(s.moves, m)
	s.san = append(s.san, san)
	s.updatedAt = s.now()
	s.message = statusMessage(s.mode, &s.state, s.status)

	ev := s.log.Debug().Str("move", m.String()).Str("san", san).Str("status", s.status.String())
	if capture.Piece != board.NoPiece {
		ev = ev.Str("captured", capture.Piece.String())
	}
	ev.Msg("move played")

	s.saveLocked()
	kind := notify.KindMove
	if s.status.Terminal() {
		kind = notify.KindEnd
		s.recordResultLocked()
	}
	s.publishLocked(kind, m, san)
}

// maybeThinkLocked starts the computer's reply when it is the computer's turn.
func (s *Session) maybeThinkLocked() {
	if s.mode != OnePlayer || s.status.Terminal() || s.state.Turn != board.Black || s.pending != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.pending = s.opponent.Think(ctx, s.state)
}

// PollComputerMove applies the computer's reply if it has arrived.
// It never blocks.
func (s *Session) PollComputerMove() (board.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return board.NoMove, false
	}
	select {
	case m, ok := <-s.pending:
		return s.applyComputerLocked(m, ok)
	default:
		return board.NoMove, false
	}
}

// AwaitComputerMove blocks until the computer's reply arrives and applies it.
// It returns false at once when no reply is pending, and ctx.Err() if ctx ends first.
func (s *Session) AwaitComputerMove(ctx context.Context) (board.Move, bool, error) {
	s.mu.Lock()
	ch := s.pending
	s.mu.Unlock()
	if ch == nil {
		return board.NoMove, false, nil
	}

	select {
	case <-ctx.Done():
		return board.NoMove, false, ctx.Err()
	case m, ok := <-ch:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending != ch {
			// Reset or another caller got there first.
			return board.NoMove, false, nil
		}
		move, played := s.applyComputerLocked(m, ok)
		return move, played, nil
	}
}

func (s *Session) applyComputerLocked(m board.Move, ok bool) (board.Move, bool) {
	s.stopThinkingLocked()
	if !ok {
		if !s.status.Terminal() {
			s.message = msgNoReply
		}
		return board.NoMove, false
	}
	if s.status.Terminal() {
		return board.NoMove, false
	}

	next, capture, err := s.state.Play(m)
	if err != nil {
		s.log.Error().Err(err).Str("move", m.String()).Msg("computer move rejected")
		return board.NoMove, false
	}
	s.commitLocked(m, next, capture)
	return m, true
}

func (s *Session) stopThinkingLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.pending = nil
}

func (s *Session) clearSelectionLocked() {
	s.selected = board.NoSquare
	s.hints = nil
}

// Reset returns to the initial position with zero scores, no last move and
// every castling right restored. A pending computer reply is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.log.Info().Msg("game reset")
	s.saveLocked()
	s.publishLocked(notify.KindReset, board.NoMove, "")
}

func (s *Session) resetLocked() {
	s.stopThinkingLocked()
	s.state = board.NewGameState()
	s.status = board.InProgress
	s.clearSelectionLocked()
	s.moves = nil
	s.san = nil
	s.startedAt = s.now()
	s.updatedAt = s.startedAt
	s.message = statusMessage(s.mode, &s.state, s.status)
}

// Close discards any pending computer reply.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopThinkingLocked()
}

// Snapshot returns the record of the current game.
func (s *Session) Snapshot() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *Record {
	moves := make([]string, len(s.moves))
	for i, m := range s.moves {
		moves[i] = m.String()
	}
	return &Record{
		ID:        s.id,
		Mode:      s.mode,
		Players:   s.players,
		FEN:       s.state.ToFEN(),
		LastMove:  s.state.LastMove,
		Castling:  s.state.Castling,
		Scores:    s.state.Scores,
		Turn:      s.state.Turn,
		Status:    s.status,
		Winner:    board.Winner(s.status, s.state.Turn),
		Moves:     moves,
		SAN:       append([]string(nil), s.san...),
		StartedAt: s.startedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Collaborator failures are logged and never interrupt play.

func (s *Session) saveLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveGame(s.snapshotLocked()); err != nil {
		s.log.Error().Err(err).Msg("save game")
	}
}

func (s *Session) recordResultLocked() {
	res := Result{
		GameID:   s.id,
		Mode:     s.mode,
		Status:   s.status,
		Winner:   board.Winner(s.status, s.state.Turn),
		Scores:   s.state.Scores,
		Plies:    len(s.moves),
		Duration: s.updatedAt.Sub(s.startedAt),
	}
	s.log.Info().Str("status", res.Status.String()).Str("winner", res.Winner.String()).Msg("game over")
	if s.store == nil {
		return
	}
	if err := s.store.RecordResult(res); err != nil {
		s.log.Error().Err(err).Msg("record result")
	}
}

func (s *Session) publishLocked(kind notify.Kind, m board.Move, san string) {
	if s.notifier == nil {
		return
	}
	ev := notify.Event{
		GameID: s.id,
		Kind:   kind,
		SAN:    san,
		FEN:    s.state.ToFEN(),
		Turn:   s.state.Turn,
		Status: s.status,
		Winner: board.Winner(s.status, s.state.Turn),
		Scores: s.state.Scores,
		At:     s.updatedAt,
	}
	if m != board.NoMove {
		ev.Move = m.String()
	}
	s.notifier.Publish(ev)
}
