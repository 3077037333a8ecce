// funzone-perft counts the leaf nodes of the legal move tree from a position.
// It is the quickest way to check the rules engine against published counts.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/funzone/internal/board"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	fen := flag.String("fen", getenv("FUNZONE_PERFT_FEN", board.StartFEN), "position to count from")
	depth := flag.Int("depth", 4, "search depth in plies")
	divide := flag.Bool("divide", false, "print the count below every root move")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	s, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Str("fen", *fen).Msg("invalid position")
	}
	if err := s.Board.Validate(); err != nil {
		log.Fatal().Err(err).Str("fen", *fen).Msg("invalid position")
	}
	if *depth < 1 {
		log.Fatal().Int("depth", *depth).Msg("depth must be at least 1")
	}

	start := time.Now()
	var nodes uint64
	if *divide {
		counts := s.Divide(*depth)
		moves := make([]board.Move, 0, len(counts))
		for m := range counts {
			moves = append(moves, m)
		}
		board.SortMoves(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
			nodes += counts[m]
		}
		fmt.Println()
	} else {
		nodes = s.Perft(*depth)
	}
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Printf("NPS: %.0f\n", nps)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
