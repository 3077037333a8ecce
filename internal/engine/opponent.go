package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/board"
)

// DefaultThinkDelay is how long the computer appears to think before replying.
const DefaultThinkDelay = 1500 * time.Millisecond

// Opponent plays the greedy chooser after a fixed pacing delay.
// The delay has no effect on which move is chosen.
type Opponent struct {
	Delay time.Duration

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	log zerolog.Logger
}

// Option configures an Opponent.
type Option func(*Opponent)

// WithLogger sets the logger used to report chosen moves.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Opponent) {
		o.log = l
	}
}

// NewOpponent creates an opponent. A zero seed draws one from the clock,
// any other seed makes the sequence of choices reproducible.
func NewOpponent(delay time.Duration, seed uint64, opts ...Option) *Opponent {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	o := &Opponent{
		Delay: delay,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Choose selects a move immediately.
func (o *Opponent) Choose(s board.GameState) (board.Move, bool) {
	o.mu.Lock()
	m, ok := ChooseMove(s, o.rng)
	o.mu.Unlock()

	if ok {
		o.log.Debug().
			Str("move", m.String()).
			Str("color", s.Turn.String()).
			Int("ply", s.Ply).
			Msg("computer move chosen")
	} else {
		o.log.Warn().Str("fen", s.ToFEN()).Msg("computer has no legal move")
	}
	return m, ok
}

// Think waits out the delay and then delivers one move on the returned channel.
// The channel is closed without a value when ctx is cancelled first or when
// there is no legal move.
func (o *Opponent) Think(ctx context.Context, s board.GameState) <-chan board.Move {
	out := make(chan board.Move, 1)

	go func() {
		defer close(out)

		if o.Delay > 0 {
			timer := time.NewTimer(o.Delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				o.log.Debug().Int("ply", s.Ply).Msg("computer move abandoned")
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}

		if m, ok := o.Choose(s); ok {
			out <- m
		}
	}()

	return out
}
