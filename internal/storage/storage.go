package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixGame     = "game/"
)

// ErrNotFound is returned when a requested game does not exist.
var ErrNotFound = errors.New("storage: not found")

// Preferences stores user settings
type Preferences struct {
	Username   string        `json:"username"`
	Mode       game.Mode     `json:"mode"`
	ThinkDelay time.Duration `json:"think_delay"`
	Color      bool          `json:"color"`
	LastGame   string        `json:"last_game"`
	LastPlayed time.Time     `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:   "Player",
		Mode:       game.OnePlayer,
		ThinkDelay: 1500 * time.Millisecond,
		Color:      true,
		LastPlayed: time.Now(),
	}
}

// Stats stores game statistics. Wins, losses and the streaks are counted from
// the human's side in one-player games; two-player games count by color.
type Stats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByColor    map[string]int `json:"wins_by_color"`
	GamesByMode    map[string]int `json:"games_by_mode"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	TotalPlies     int            `json:"total_plies"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewStats returns empty game statistics
func NewStats() *Stats {
	return &Stats{
		WinsByColor: make(map[string]int),
		GamesByMode: make(map[string]int),
	}
}

// WinRate returns the one-player win rate as a percentage (0-100)
func (s *Stats) WinRate() float64 {
	played := s.Wins + s.Losses + s.Draws
	if played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(played) * 100
}

// Options configures Open.
type Options struct {
	// Dir is the database directory. Empty means the platform data directory.
	Dir string
	// InMemory keeps everything in memory; Dir is ignored.
	InMemory bool
	Logger   zerolog.Logger
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	return Open(Options{Logger: zerolog.Nop()})
}

// Open opens or creates the database described by opts.
func Open(opts Options) (*Storage, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = GetDatabaseDir(); err != nil {
				return nil, err
			}
		}
		bopts = badger.DefaultOptions(dir)
	}
	bopts.Logger = newBadgerLogger(opts.Logger)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}

	opts.Logger.Debug().Str("dir", bopts.Dir).Bool("in_memory", opts.InMemory).Msg("storage opened")
	return &Storage{db: db, log: opts.Logger}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// put stores v as JSON under key.
func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the JSON under key into v. A missing key leaves v untouched
// and reports found=false.
func (s *Storage) get(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *Stats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	if _, err := s.get(keyStats, stats); err != nil {
		return nil, err
	}
	// A stored null replaces the maps.
	if stats.WinsByColor == nil {
		stats.WinsByColor = make(map[string]int)
	}
	if stats.GamesByMode == nil {
		stats.GamesByMode = make(map[string]int)
	}
	return stats, nil
}

// RecordResult records a finished game and updates statistics.
func (s *Storage) RecordResult(res game.Result) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += res.Duration
	stats.TotalPlies += res.Plies
	stats.GamesByMode[res.Mode.String()]++

	if !res.Draw() {
		stats.WinsByColor[res.Winner.String()]++
	}

	if res.Mode == game.OnePlayer {
		switch {
		case res.Draw():
			stats.Draws++
			stats.CurrentStreak = 0
		case res.HumanWon():
			stats.Wins++
			stats.CurrentStreak++
			if stats.CurrentStreak > stats.LongestWinStrk {
				stats.LongestWinStrk = stats.CurrentStreak
			}
		default:
			stats.Losses++
			stats.CurrentStreak = 0
		}
	}

	s.log.Debug().Str("game", res.GameID).Str("status", res.Status.String()).Msg("result recorded")
	return s.SaveStats(stats)
}

// SaveGame stores the record under its id, replacing any earlier version.
func (s *Storage) SaveGame(rec *game.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("storage: save game: empty id")
	}
	return s.put(prefixGame+rec.ID, rec)
}

// LoadGame returns the record stored under id.
func (s *Storage) LoadGame(id string) (*game.Record, error) {
	var rec game.Record
	found, err := s.get(prefixGame+id, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	return &rec, nil
}

// DeleteGame removes the record stored under id.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixGame + id))
	})
}

// ListGames returns every stored game, most recently updated first.
func (s *Storage) ListGames() ([]*game.Record, error) {
	var out []*game.Record

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec game.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("storage: decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *game.Record) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}
