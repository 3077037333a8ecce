package console

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/funzone/internal/board"
	"github.com/hailam/funzone/internal/game"
)

// palette holds the terminal colors. With color off every entry prints plain
// text and the board falls back to letters and bracket markers.
type palette struct {
	enabled bool

	light    *color.Color
	dark     *color.Color
	selected *color.Color
	hint     *color.Color
	last     *color.Color
	check    *color.Color

	title *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
	dim   *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		enabled:  enabled,
		light:    color.New(color.FgBlack, color.BgHiYellow),
		dark:     color.New(color.FgBlack, color.BgYellow),
		selected: color.New(color.FgBlack, color.BgHiCyan),
		hint:     color.New(color.FgBlack, color.BgHiGreen),
		last:     color.New(color.FgBlack, color.BgHiBlue),
		check:    color.New(color.FgBlack, color.BgHiRed),
		title:    color.New(color.Bold),
		info:     color.New(color.FgCyan),
		warn:     color.New(color.FgYellow),
		err:      color.New(color.FgRed, color.Bold),
		dim:      color.New(color.Faint),
	}
	if !enabled {
		for _, c := range []*color.Color{p.light, p.dark, p.selected, p.hint, p.last, p.check, p.title, p.info, p.warn, p.err, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// glyph returns how p is drawn inside a cell.
func (pal *palette) glyph(p board.Piece) string {
	if p == board.NoPiece {
		if pal.enabled {
			return " "
		}
		return "."
	}
	if pal.enabled {
		return p.Glyph()
	}
	return p.String()
}

// writeBoard prints the session's board with white at the bottom, unless
// flip is set. The selected square, hint targets, the last move and a
// checked king are marked.
func (pal *palette) writeBoard(w io.Writer, sess *game.Session, flip bool) {
	s := sess.State()
	selected := sess.Selected()
	hints := sess.Hints()

	checked := board.NoSquare
	if s.InCheck() {
		if k, err := s.Board.FindKing(s.Turn); err == nil {
			checked = k
		}
	}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if flip {
			rank = row
		}
		fmt.Fprintf(&sb, "%d ", rank+1)
		for col := 0; col < 8; col++ {
			file := col
			if flip {
				file = 7 - col
			}
			sq := board.NewSquare(file, rank)
			p := s.Board.PieceAt(sq)
			g := pal.glyph(p)

			cell := " " + g + " "
			c := pal.dark
			if (file+rank)%2 == 1 {
				c = pal.light
			}
			switch {
			case sq == selected:
				cell, c = "["+g+"]", pal.selected
			case slices.Contains(hints, sq):
				c = pal.hint
				if p == board.NoPiece {
					cell = " * "
				} else {
					cell = "(" + g + ")"
				}
			case sq == checked:
				cell, c = "!"+g+"!", pal.check
			case !s.LastMove.IsZero() && (sq == s.LastMove.From || sq == s.LastMove.To):
				c = pal.last
			}
			sb.WriteString(c.Sprint(cell))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  ")
	for col := 0; col < 8; col++ {
		file := col
		if flip {
			file = 7 - col
		}
		fmt.Fprintf(&sb, " %c ", 'a'+file)
	}
	sb.WriteString("\n")
	io.WriteString(w, sb.String())
}

// writeHistory prints SAN moves in numbered pairs.
func writeHistory(w io.Writer, san []string) {
	if len(san) == 0 {
		fmt.Fprintln(w, "No moves yet")
		return
	}
	for i := 0; i < len(san); i += 2 {
		if i+1 < len(san) {
			fmt.Fprintf(w, "%d. %s %s\n", i/2+1, san[i], san[i+1])
		} else {
			fmt.Fprintf(w, "%d. %s\n", i/2+1, san[i])
		}
	}
}

func squareList(sqs []board.Square) string {
	names := make([]string, len(sqs))
	for i, sq := range sqs {
		names[i] = sq.String()
	}
	slices.Sort(names)
	return strings.Join(names, " ")
}
