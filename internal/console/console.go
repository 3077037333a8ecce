// Package console is a line-oriented front end for a game session. Each input
// line is one command; a bare move ("e2e4" or "Nf3") is played directly.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/engine"
	"github.com/hailam/funzone/internal/game"
	"github.com/hailam/funzone/internal/notify"
	"github.com/hailam/funzone/internal/render"
	"github.com/hailam/funzone/internal/storage"
)

// Config wires the console to its collaborators. Store and Hub may be nil.
type Config struct {
	Mode       game.Mode
	ThinkDelay time.Duration
	Seed       uint64
	Color      bool
	ExportDir  string
	Store      *storage.Storage
	Hub        *notify.Hub
	Logger     zerolog.Logger
}

// Console reads commands and drives one session at a time.
type Console struct {
	cfg  Config
	out  io.Writer
	pal  *palette
	log  zerolog.Logger
	sess *game.Session

	renderer *render.Renderer
	quit     bool
}

// New creates a console writing to out. No game is started until Run or Start.
func New(cfg Config, out io.Writer) *Console {
	return &Console{
		cfg: cfg,
		out: out,
		pal: newPalette(cfg.Color),
		log: cfg.Logger.With().Str("component", "console").Logger(),
	}
}

// Session returns the current game.
func (c *Console) Session() *game.Session {
	return c.sess
}

// sessionOptions returns the collaborators every session is built with.
func (c *Console) sessionOptions() []game.Option {
	opts := []game.Option{
		game.WithLogger(c.cfg.Logger),
		game.WithOpponent(engine.NewOpponent(c.cfg.ThinkDelay, c.cfg.Seed, engine.WithLogger(c.cfg.Logger))),
	}
	// Typed nils must not reach the interfaces.
	if c.cfg.Store != nil {
		opts = append(opts, game.WithStore(c.cfg.Store))
	}
	if c.cfg.Hub != nil {
		opts = append(opts, game.WithNotifier(c.cfg.Hub))
	}
	return opts
}

// Start begins a new game in the configured mode.
func (c *Console) Start() {
	c.replace(game.NewSession(c.cfg.Mode, c.sessionOptions()...))
	players := c.sess.Players()
	c.println(c.pal.info.Sprintf("New game %s (%s): %s vs %s", shortID(c.sess.ID()), c.sess.Mode(), players[0], players[1]))
	c.printGame()
}

// Resume continues the stored game with the given id.
func (c *Console) Resume(ctx context.Context, id string) error {
	if err := c.load(id); err != nil {
		return err
	}
	return c.awaitComputer(ctx)
}

func (c *Console) replace(s *game.Session) {
	if c.sess != nil {
		c.sess.Close()
	}
	c.sess = s
}

// Run processes commands from in until quit, end of input or ctx ends.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	if c.sess == nil {
		c.Start()
	}
	c.prompt()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			c.prompt()
			continue
		}
		if err := c.Execute(ctx, line); err != nil {
			return err
		}
		if c.quit {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

// Execute runs one command line. User mistakes are reported on the output;
// only a cancelled context is returned as an error.
func (c *Console) Execute(ctx context.Context, line string) error {
	if c.sess == nil {
		c.Start()
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	c.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

	var err error
	switch cmd {
	case "help", "?":
		c.handleHelp()
	case "new":
		err = c.handleNew(args)
	case "select", "click":
		err = c.handleSelect(ctx, args)
	case "deselect":
		c.sess.Deselect()
		c.println(c.sess.Message())
	case "move", "m":
		err = c.handleMove(ctx, args)
	case "board", "d":
		c.pal.writeBoard(c.out, c.sess, false)
	case "flip":
		c.pal.writeBoard(c.out, c.sess, true)
	case "fen":
		s := c.sess.State()
		c.println(s.ToFEN())
	case "moves":
		err = c.handleMoves(args)
	case "hints":
		c.handleHints()
	case "history":
		writeHistory(c.out, c.sess.History())
	case "status":
		c.handleStatus()
	case "save":
		err = c.handleSave()
	case "load":
		err = c.handleLoad(ctx, args)
	case "games":
		err = c.handleGames()
	case "stats":
		err = c.handleStats()
	case "png", "export":
		err = c.handleExport(args)
	case "reset":
		c.sess.Reset()
		c.println(c.pal.info.Sprint("Game reset"))
		c.printGame()
	case "quit", "exit":
		c.quit = true
	default:
		// Anything else is tried as a move.
		err = c.handleMove(ctx, parts)
		if isUsage(err) {
			err = usageError("unknown command %q (try help)", cmd)
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.println(c.pal.err.Sprint("error: ") + err.Error())
	}
	return nil
}

func (c *Console) prompt() {
	if c.quit {
		return
	}
	fmt.Fprint(c.out, c.pal.dim.Sprint("> "))
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// printGame shows the board followed by the session message.
func (c *Console) printGame() {
	c.pal.writeBoard(c.out, c.sess, false)
	c.println(c.pal.title.Sprint(c.sess.Message()))
}

// usage marks errors caused by malformed command input.
type usage struct{ msg string }

func (u usage) Error() string { return u.msg }

func usageError(format string, args ...any) error {
	return usage{msg: fmt.Sprintf(format, args...)}
}

func isUsage(err error) bool {
	var u usage
	return errors.As(err, &u)
}
