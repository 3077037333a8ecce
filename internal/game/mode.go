// Package game hosts a single chess game: click-driven selection with move hints,
// turn enforcement, the computer reply in one-player mode, status messages,
// and the hooks that persist and announce every change.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/funzone/internal/board"
)

var (
	ErrComputerTurn = errors.New("game: waiting for the computer to move")
	ErrBadMode      = errors.New("game: unknown mode")
	ErrBadRecord    = errors.New("game: invalid game record")
)

// Mode selects who plays black.
type Mode uint8

const (
	OnePlayer Mode = iota // human plays white against the computer
	TwoPlayer             // two humans share the board
)

func (m Mode) String() string {
	switch m {
	case OnePlayer:
		return "1p"
	case TwoPlayer:
		return "2p"
	}
	return "unknown"
}

// ParseMode accepts "1p", "2p" and a few spelled-out forms.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1p", "1", "1-player", "one", "computer":
		return OnePlayer, nil
	case "2p", "2", "2-player", "two", "local":
		return TwoPlayer, nil
	}
	return OnePlayer, fmt.Errorf("%w: %q", ErrBadMode, s)
}

// MarshalText encodes the mode as "1p" or "2p".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes "1p" or "2p".
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// humanColor reports whether c is moved by a person in mode m.
func (m Mode) humanColor(c board.Color) bool {
	return m == TwoPlayer || c == board.White
}

// statusMessage is the line shown under the board for the position s in mode m.
func statusMessage(m Mode, s *board.GameState, st board.Status) string {
	switch st {
	case board.Checkmate:
		winner := board.Winner(st, s.Turn)
		if m == OnePlayer {
			if winner == board.White {
				return "Checkmate! You win! 🎉"
			}
			return "Checkmate! Computer wins!"
		}
		return fmt.Sprintf("Checkmate! %s wins! 🎉", winner)
	case board.Stalemate:
		return "Stalemate! It's a draw."
	}

	check := ""
	if st == board.Check {
		check = "Check! "
	}
	if m == OnePlayer {
		if s.Turn == board.Black {
			return check + "Computer is thinking..."
		}
		if check != "" {
			return "Check! Your turn (White pieces)"
		}
		return "Your turn! (White pieces)"
	}
	return fmt.Sprintf("%s%s's turn", check, s.Turn)
}

const (
	msgInvalidMove = "Invalid move! Try again."
	msgNoReply     = "Computer has no valid moves!"
)

func selectMessage(m Mode, c board.Color) string {
	if m == OnePlayer {
		return "Select where to move"
	}
	return fmt.Sprintf("%s: Select where to move", c)
}
