// FunZone - chess against the computer or a friend, in the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/console"
	"github.com/hailam/funzone/internal/game"
	"github.com/hailam/funzone/internal/notify"
	"github.com/hailam/funzone/internal/storage"
)

type config struct {
	dataDir   string
	inMemory  bool
	mode      string
	delay     string
	seed      uint64
	logLevel  string
	noColor   bool
	resume    string
	exportDir string
}

func main() {
	// Flags (env fallbacks). Empty mode/delay fall back to the saved preferences.
	var cfg config
	flag.StringVar(&cfg.dataDir, "data", "", "data directory holding db/ and exports/ (default: $"+storage.DataDirEnv+" or the platform data dir)")
	flag.BoolVar(&cfg.inMemory, "in-memory", getenb("FUNZONE_IN_MEMORY", false), "keep games in memory only")
	flag.StringVar(&cfg.mode, "mode", getenv("FUNZONE_MODE", ""), "game mode: 1p (against the computer) or 2p")
	flag.StringVar(&cfg.delay, "delay", getenv("FUNZONE_THINK_DELAY", ""), "computer think delay, e.g. 1.5s")
	flag.Uint64Var(&cfg.seed, "seed", getenu("FUNZONE_SEED", 0), "random seed for the computer (0: time based)")
	flag.StringVar(&cfg.logLevel, "log-level", getenv("FUNZONE_LOG_LEVEL", "warn"), "log level (trace, debug, info, warn, error)")
	flag.BoolVar(&cfg.noColor, "no-color", getenb("FUNZONE_NO_COLOR", false), "disable colored output")
	flag.StringVar(&cfg.resume, "resume", getenv("FUNZONE_RESUME", ""), `resume a stored game by id, or "last"`)
	flag.StringVar(&cfg.exportDir, "export-dir", getenv("FUNZONE_EXPORT_DIR", ""), "directory for PNG exports (default: platform data dir)")
	flag.Parse()

	level, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", cfg.logLevel)
		os.Exit(2)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("funzone")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log zerolog.Logger) error {
	// The flag wins over the environment; storage resolves both through DataDirEnv.
	if cfg.dataDir != "" {
		if err := os.Setenv(storage.DataDirEnv, cfg.dataDir); err != nil {
			return err
		}
	}
	store, err := storage.Open(storage.Options{InMemory: cfg.inMemory, Logger: log})
	if err != nil {
		return err
	}
	defer store.Close()

	first, err := store.IsFirstLaunch()
	if err != nil {
		return err
	}
	if first {
		fmt.Println("Welcome to FunZone chess! Type \"help\" for the list of commands.")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("mark first launch")
		}
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		return err
	}
	mode := prefs.Mode
	if cfg.mode != "" {
		if mode, err = game.ParseMode(cfg.mode); err != nil {
			return err
		}
	}
	delay := prefs.ThinkDelay
	if cfg.delay != "" {
		if delay, err = time.ParseDuration(cfg.delay); err != nil {
			return fmt.Errorf("think delay: %w", err)
		}
	}

	hub := notify.NewHub(notify.WithLogger(log))
	defer hub.Close()
	go watch(hub.Subscribe(""), log)

	con := console.New(console.Config{
		Mode:       mode,
		ThinkDelay: delay,
		Seed:       cfg.seed,
		Color:      prefs.Color && !cfg.noColor,
		ExportDir:  cfg.exportDir,
		Store:      store,
		Hub:        hub,
		Logger:     log,
	}, os.Stdout)

	resume := cfg.resume
	if resume == "last" {
		resume = prefs.LastGame
	}
	if resume != "" {
		if err := con.Resume(ctx, resume); err != nil {
			log.Warn().Err(err).Str("game", resume).Msg("cannot resume, starting a new game")
		}
	}

	runErr := con.Run(ctx, os.Stdin)

	if sess := con.Session(); sess != nil {
		sess.Close()
		prefs.LastGame = sess.ID()
		prefs.Mode = sess.Mode()
	}
	prefs.ThinkDelay = delay
	if err := store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("save preferences")
	}
	return runErr
}

// watch logs every game event published on the hub until it closes.
func watch(sub *notify.Subscription, log zerolog.Logger) {
	for ev := range sub.C() {
		e := log.Debug()
		if ev.Kind == notify.KindEnd {
			e = log.Info()
		}
		e.Str("game", ev.GameID).Str("kind", string(ev.Kind)).Str("san", ev.SAN).Str("status", ev.Status.String()).Msg("game event")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenu(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}
