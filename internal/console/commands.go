package console

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hailam/funzone/internal/board"
	"github.com/hailam/funzone/internal/game"
	"github.com/hailam/funzone/internal/render"
	"github.com/hailam/funzone/internal/storage"
)

var errNoStore = errors.New("no storage configured")

const helpText = `Commands:
  new [1p|2p]        start a new game
  select <square>    click a square: select a piece, then its destination
  deselect           clear the selection
  move <move>        play a move, e.g. "move e2e4" or "move Nf3" (or just "e2e4")
  board | flip       show the board (flip: black at the bottom)
  fen                print the position as FEN
  moves [square]     list legal moves, optionally from one square
  hints              list destinations of the selected piece
  history            list the moves played so far
  status             show mode, turn, scores and status
  save               store the current game
  load <id>          resume a stored game (an id prefix is enough)
  games              list stored games
  stats              show win/loss statistics
  png [path] [flip]  export the board as a PNG image
  reset              restart from the initial position
  quit               leave`

func (c *Console) handleHelp() {
	c.println(helpText)
}

func (c *Console) handleNew(args []string) error {
	if len(args) > 0 {
		mode, err := game.ParseMode(args[0])
		if err != nil {
			return usageError("unknown mode %q (use 1p or 2p)", args[0])
		}
		c.cfg.Mode = mode
	}
	c.Start()
	return nil
}

func parseSquare(args []string) (board.Square, error) {
	if len(args) == 0 {
		return board.NoSquare, usageError("missing square")
	}
	sq, err := board.ParseSquare(strings.ToLower(args[0]))
	if err != nil {
		return board.NoSquare, usageError("bad square %q", args[0])
	}
	return sq, nil
}

func (c *Console) handleSelect(ctx context.Context, args []string) error {
	sq, err := parseSquare(args)
	if err != nil {
		return err
	}
	before := len(c.sess.History())
	if c.sess.Click(sq) {
		return c.afterMove(ctx, before)
	}
	if sel := c.sess.Selected(); sel != board.NoSquare {
		c.printGame()
		c.handleHints()
		return nil
	}
	c.println(c.pal.warn.Sprint(c.sess.Message()))
	return nil
}

// parseMove reads coordinate notation first and falls back to SAN.
func (c *Console) parseMove(str string) (board.Move, error) {
	if m, err := board.ParseMove(str); err == nil {
		return m, nil
	}
	s := c.sess.State()
	m, err := s.ParseSAN(str)
	if err != nil {
		return board.NoMove, usageError("cannot read move %q", str)
	}
	return m, nil
}

func (c *Console) handleMove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing move")
	}
	m, err := c.parseMove(args[0])
	if err != nil {
		return err
	}
	before := len(c.sess.History())
	if err := c.sess.Move(m); err != nil {
		c.println(c.pal.warn.Sprint(c.sess.Message()))
		return fmt.Errorf("%s: %w", m, err)
	}
	return c.afterMove(ctx, before)
}

// afterMove reports the moves played since the history had n entries, then
// waits for the computer when it is to reply.
func (c *Console) afterMove(ctx context.Context, n int) error {
	c.announce(n)
	c.printGame()
	return c.awaitComputer(ctx)
}

func (c *Console) announce(n int) {
	hist := c.sess.History()
	for i := n; i < len(hist); i++ {
		side := board.White
		if i%2 == 1 {
			side = board.Black
		}
		c.println(c.pal.info.Sprintf("%s played %s", c.sess.Players()[side], hist[i]))
	}
}

func (c *Console) awaitComputer(ctx context.Context) error {
	if !c.sess.Thinking() {
		return nil
	}
	n := len(c.sess.History())
	_, played, err := c.sess.AwaitComputerMove(ctx)
	if err != nil {
		return err
	}
	if !played {
		c.println(c.pal.warn.Sprint(c.sess.Message()))
		return nil
	}
	c.announce(n)
	c.printGame()
	return nil
}

func (c *Console) handleMoves(args []string) error {
	s := c.sess.State()
	var moves []board.Move
	if len(args) > 0 {
		sq, err := parseSquare(args)
		if err != nil {
			return err
		}
		moves = s.LegalMovesFrom(sq)
	} else {
		moves = s.LegalMoves()
	}
	board.SortMoves(moves)

	san := make([]string, len(moves))
	for i, m := range moves {
		san[i] = s.ToSAN(m)
	}
	c.println(fmt.Sprintf("%d legal moves: %s", len(moves), strings.Join(san, " ")))
	return nil
}

func (c *Console) handleHints() {
	sel := c.sess.Selected()
	if sel == board.NoSquare {
		c.println("Nothing selected")
		return
	}
	hints := c.sess.Hints()
	if len(hints) == 0 {
		c.println(fmt.Sprintf("No legal moves from %s", sel))
		return
	}
	c.println(fmt.Sprintf("Hints for %s: %s", sel, squareList(hints)))
}

func (c *Console) handleStatus() {
	s := c.sess.State()
	players := c.sess.Players()
	fmt.Fprintf(c.out, "Game:    %s\n", c.sess.ID())
	fmt.Fprintf(c.out, "Mode:    %s (%s vs %s)\n", c.sess.Mode(), players[board.White], players[board.Black])
	fmt.Fprintf(c.out, "Turn:    %s (ply %d)\n", s.Turn, s.Ply)
	fmt.Fprintf(c.out, "Status:  %s\n", c.sess.Status())
	fmt.Fprintf(c.out, "Scores:  White %d, Black %d\n", s.Scores[board.White], s.Scores[board.Black])
	fmt.Fprintf(c.out, "Castling: %s\n", s.Castling)
	c.println(c.pal.title.Sprint(c.sess.Message()))
}

func (c *Console) handleSave() error {
	if c.cfg.Store == nil {
		return errNoStore
	}
	if err := c.cfg.Store.SaveGame(c.sess.Snapshot()); err != nil {
		return err
	}
	c.println(c.pal.info.Sprintf("Saved game %s", c.sess.ID()))
	return nil
}

func (c *Console) handleLoad(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing game id")
	}
	if err := c.load(args[0]); err != nil {
		return err
	}
	return c.awaitComputer(ctx)
}

// load replaces the current session with the stored game id. A unique id
// prefix is accepted.
func (c *Console) load(id string) error {
	if c.cfg.Store == nil {
		return errNoStore
	}
	rec, err := c.cfg.Store.LoadGame(id)
	if errors.Is(err, storage.ErrNotFound) {
		rec, err = c.findByPrefix(id)
	}
	if err != nil {
		return err
	}

	sess, err := game.Restore(rec, c.sessionOptions()...)
	if err != nil {
		return err
	}
	c.replace(sess)
	c.cfg.Mode = sess.Mode()
	c.println(c.pal.info.Sprintf("Loaded game %s (%s, %d moves)", shortID(sess.ID()), sess.Mode(), len(rec.Moves)))
	c.printGame()
	return nil
}

func (c *Console) findByPrefix(prefix string) (*game.Record, error) {
	games, err := c.cfg.Store.ListGames()
	if err != nil {
		return nil, err
	}
	var match *game.Record
	for _, rec := range games {
		if !strings.HasPrefix(rec.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, usageError("game id %q is ambiguous", prefix)
		}
		match = rec
	}
	if match == nil {
		return nil, fmt.Errorf("%w: game %s", storage.ErrNotFound, prefix)
	}
	return match, nil
}

func (c *Console) handleGames() error {
	if c.cfg.Store == nil {
		return errNoStore
	}
	games, err := c.cfg.Store.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		c.println("No stored games")
		return nil
	}
	for _, rec := range games {
		mark := " "
		if rec.ID == c.sess.ID() {
			mark = "*"
		}
		fmt.Fprintf(c.out, "%s %-8s  %-2s  %-10s  %3d moves  %s\n",
			mark, shortID(rec.ID), rec.Mode, rec.Status, len(rec.Moves), rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *Console) handleStats() error {
	if c.cfg.Store == nil {
		return errNoStore
	}
	stats, err := c.cfg.Store.LoadStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Games played: %d (1p %d, 2p %d)\n", stats.GamesPlayed, stats.GamesByMode[game.OnePlayer.String()], stats.GamesByMode[game.TwoPlayer.String()])
	fmt.Fprintf(c.out, "Against the computer: %d won, %d lost, %d drawn (%.0f%%)\n", stats.Wins, stats.Losses, stats.Draws, stats.WinRate())
	fmt.Fprintf(c.out, "Win streak: %d (best %d)\n", stats.CurrentStreak, stats.LongestWinStrk)
	fmt.Fprintf(c.out, "Wins by color: White %d, Black %d\n", stats.WinsByColor[board.White.String()], stats.WinsByColor[board.Black.String()])
	return nil
}

func (c *Console) handleExport(args []string) error {
	if c.renderer == nil {
		r, err := render.New(render.DefaultSquareSize, render.WithLogger(c.log))
		if err != nil {
			return err
		}
		c.renderer = r
	}

	path := ""
	flip := false
	for _, a := range args {
		if a == "flip" {
			flip = true
		} else {
			path = a
		}
	}
	if path == "" {
		dir := c.cfg.ExportDir
		if dir == "" {
			var err error
			if dir, err = storage.GetExportDir(); err != nil {
				return err
			}
		}
		s := c.sess.State()
		path = filepath.Join(dir, fmt.Sprintf("%s-%03d.png", shortID(c.sess.ID()), s.Ply))
	}

	view := render.View{Flip: flip, Selected: c.sess.Selected(), Hints: c.sess.Hints()}
	if err := c.renderer.SavePNG(path, c.sess.State(), view); err != nil {
		return err
	}
	c.println(c.pal.info.Sprintf("Exported %s", path))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
