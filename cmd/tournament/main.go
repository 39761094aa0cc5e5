// Command tournament runs a self-play tournament between strategies and
// prints per-matchup results and Elo ratings.
//
// Usage:
//
//	go run ./cmd/tournament -s random,greedy-high,minimax -sizes 5 -n 20 -workers 8
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

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/bot"
	"github.com/freeeve/entangled/internal/config"
	"github.com/freeeve/entangled/internal/logger"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/repository/postgres"
	redisrepo "github.com/freeeve/entangled/internal/repository/redis"
	"github.com/freeeve/entangled/internal/tournament"
)

func main() {
	env := config.Load().Tournament

	var (
		strategies string
		sizes      string
		numGames   int
		workers    int
		seed       int64
		swap       bool
		sp         string
		stones     string
		shuffle    bool
		history    bool
		jsonOut    bool
		jsonlPath  string
		dbURL      string
		redisURL   string
		name       string
		verbose    bool
	)

	flag.StringVar(&strategies, "s", strings.Join(env.Strategies, ","), "Comma-separated strategy ids (e.g. minimax:depth=3)")
	flag.StringVar(&sizes, "sizes", joinInts(env.BoardSizes), "Comma-separated board sizes")
	flag.IntVar(&numGames, "n", env.GamesPerMatchup, "Games per matchup")
	flag.IntVar(&workers, "workers", env.Workers, "Concurrency (parallel games)")
	flag.Int64Var(&seed, "seed", env.Seed, "Base seed (0 = random)")
	flag.BoolVar(&swap, "swap", env.SwapRule, "Enable the swap rule")
	flag.StringVar(&sp, "sp", env.Superposition, "Superposition config (e.g. RNG,RNG or A,M)")
	flag.StringVar(&stones, "stones", env.StartingStones, "Starting stones (e.g. BA1,WM2)")
	flag.BoolVar(&shuffle, "shuffle", false, "Shuffle matchup order")
	flag.BoolVar(&history, "history", env.RecordHistory, "Record position history for every game")
	flag.BoolVar(&jsonOut, "json", false, "Output the summary as JSON")
	flag.StringVar(&jsonlPath, "jsonl", "", "Append every game record to this JSONL file")
	flag.StringVar(&dbURL, "db", "", "Database URL; results are stored when set")
	flag.StringVar(&redisURL, "redis", "", "Redis URL; live progress is published when set")
	flag.StringVar(&name, "name", env.Name, "Tournament name")
	flag.BoolVar(&verbose, "v", false, "Debug logging (one line per game)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: tournament [flags]\n\nStrategy kinds: %s\n\n", strategyKinds())
		flag.PrintDefaults()
	}
	flag.Parse()

	logger.InitCLI(verbose)

	boardSizes, err := parseSizes(sizes)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -sizes")
	}
	boards := make([]tournament.BoardConfig, len(boardSizes))
	for i, size := range boardSizes {
		boards[i] = tournament.DefaultBoard(size)
		boards[i].SwapRule = swap
		boards[i].Superposition = sp
		boards[i].StartingStones = stones
	}

	cfg := tournament.Config{
		Name:            name,
		Strategies:      bot.SplitIDs(strategies),
		Boards:          boards,
		GamesPerMatchup: numGames,
		Workers:         workers,
		Shuffle:         shuffle,
		Seed:            seed,
		RecordHistory:   history,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to DB (optional)
	var results *postgres.ResultRepo
	if dbURL != "" {
		db, err := postgres.Connect(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		results = postgres.NewResultRepo(db)
		raw, err := cfg.Record()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid tournament config")
		}
		rec, err := results.CreateTournament(ctx, name, raw)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create tournament")
		}
		cfg.ID = rec.ID
	}

	orch, err := tournament.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid tournament config")
	}

	if results != nil {
		orch.AddSink(results)
	}
	if jsonlPath != "" {
		sink, err := newJSONLSink(jsonlPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open JSONL output")
		}
		defer sink.Close()
		orch.AddSink(sink)
	}
	if redisURL != "" {
		rc, err := redisrepo.NewClient(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer rc.Close()
		orch.AddListener(tournament.NewCacheListener(rc))
	}

	summary, runErr := orch.Run(ctx)
	if runErr != nil {
		log.Warn().Err(runErr).Msg("Tournament interrupted; reporting partial results")
	}

	if results != nil {
		storeCtx := context.WithoutCancel(ctx)
		if err := results.SaveRatings(storeCtx, orch.ID(), summary.RatingRows()); err != nil {
			log.Error().Err(err).Msg("Failed to save ratings")
		}
		status := model.StatusFinished
		if errors.Is(runErr, context.Canceled) {
			status = model.StatusCancelled
		}
		if err := results.SetTournamentStatus(storeCtx, orch.ID(), status); err != nil {
			log.Error().Err(err).Msg("Failed to store tournament status")
		}
	}

	if jsonOut {
		printJSON(summary)
	} else {
		printSummary(summary)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("board size %q: %w", p, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no board sizes")
	}
	return out, nil
}

// strategyKinds lists the known kinds for the usage message.
func strategyKinds() string {
	kinds := bot.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
