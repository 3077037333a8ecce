// Package notify delivers game events to in-process subscribers.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/board"
)

// Kind names what happened in a game.
type Kind string

const (
	KindMove  Kind = "move"
	KindEnd   Kind = "end"
	KindReset Kind = "reset"
)

// Event is the payload sent to the other participant after a game changes.
type Event struct {
	GameID string       `json:"game_id"`
	Kind   Kind         `json:"kind"`
	Move   string       `json:"move,omitempty"`
	SAN    string       `json:"san,omitempty"`
	FEN    string       `json:"fen"`
	Turn   board.Color  `json:"turn"`
	Status board.Status `json:"status"`
	Winner board.Color  `json:"winner"`
	Scores [2]int       `json:"scores"`
	At     time.Time    `json:"at"`
}

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Hub fans events out to subscribers of a game id, or of every game.
// Publish never blocks: a subscriber whose queue is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	log    zerolog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger used to report dropped events.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Hub) {
		h.log = l
	}
}

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: DefaultBuffer,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription receives events until it is closed.
type Subscription struct {
	hub    *Hub
	gameID string
	ch     chan Event
	once   sync.Once
}

// C returns the event channel. It is closed when the subscription or hub closes.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close stops delivery and closes the channel.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers for events of gameID. An empty id receives every game.
func (h *Hub) Subscribe(gameID string) *Subscription {
	s := &Subscription{hub: h, gameID: gameID, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	set, ok := h.subs[gameID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[gameID] = set
	}
	set[s] = struct{}{}
	return s
}

// Publish sends ev to the subscribers of its game and to the catch-all subscribers.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	deliver := func(set map[*Subscription]struct{}) {
		for s := range set {
			select { // never block on a slow subscriber
			case s.ch <- ev:
			default:
				h.log.Warn().
					Str("game", ev.GameID).
					Str("kind", string(ev.Kind)).
					Msg("subscriber queue full, event dropped")
			}
		}
	}
	deliver(h.subs[ev.GameID])
	if ev.GameID != "" {
		deliver(h.subs[""])
	}
}

// Subscribers returns the number of open subscriptions for gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// Close closes every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
		}
		delete(h.subs, id)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.gameID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.gameID)
		}
	}
	s.once.Do(func() { close(s.ch) })
}
