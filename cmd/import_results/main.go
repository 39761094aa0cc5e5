// Command import_results reads JSONL game records written by
// `tournament -jsonl` and imports them into Postgres as a new tournament,
// replaying Elo ratings in file order.
//
// Usage:
//
//	go run ./cmd/import_results/ -input games.jsonl -db postgres://...
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/elo"
	"github.com/freeeve/entangled/internal/logger"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/repository/postgres"
	"github.com/freeeve/entangled/internal/tournament"
)

func main() {
	inputFile := flag.String("input", "", "Path to JSONL file")
	dbURL := flag.String("db", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	name := flag.String("name", "", "Tournament name (default: input file name)")
	batch := flag.Int("batch", postgres.DefaultBatchSize, "Insert batch size")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	logger.InitCLI(*verbose)

	if *inputFile == "" {
		log.Fatal().Msg("-input is required")
	}
	if *dbURL == "" {
		log.Fatal().Msg("-db or DATABASE_URL is required")
	}
	if *name == "" {
		*name = "import " + *inputFile
	}

	f, err := os.Open(*inputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Open input failed")
	}
	defer f.Close()

	records, skipped, err := readRecords(f)
	if err != nil {
		log.Fatal().Err(err).Msg("Read input failed")
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped unreadable lines")
	}

	db, err := postgres.Connect(*dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	repo := postgres.NewResultRepo(db)
	repo.SetBatchSize(*batch)

	ctx := context.Background()
	raw, err := importConfig(*inputFile, len(records))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid import config")
	}
	t, err := repo.CreateTournament(ctx, *name, raw)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create tournament")
	}

	ratings := replayRatings(records)
	for _, rec := range records {
		rec.TournamentID = t.ID
		if err := repo.RecordGameResult(ctx, rec); err != nil {
			log.Fatal().Err(err).Msg("Failed to store game result")
		}
	}
	if err := repo.Flush(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to store game results")
	}
	if err := repo.SaveRatings(ctx, t.ID, tournament.RatingRows(t.ID, ratings.Snapshot())); err != nil {
		log.Fatal().Err(err).Msg("Failed to save ratings")
	}
	if err := repo.SetTournamentStatus(ctx, t.ID, model.StatusFinished); err != nil {
		log.Fatal().Err(err).Msg("Failed to store tournament status")
	}

	log.Info().
		Str("tournament", t.ID).
		Int("games", len(records)).
		Int("players", len(ratings.Snapshot())).
		Msg("Import finished")
}

// importConfig describes an imported tournament for the tournaments table.
func importConfig(source string, games int) ([]byte, error) {
	raw, err := json.Marshal(struct {
		Source string `json:"source"`
		Games  int    `json:"games"`
	}{source, games})
	if err != nil {
		return nil, fmt.Errorf("encode import config: %w", err)
	}
	return raw, nil
}

// readRecords decodes one game record per line. Blank lines are ignored and
// undecodable lines are counted as skipped.
func readRecords(r io.Reader) ([]model.GameRecord, int, error) {
	scanner := bufio.NewScanner(r)
	// Records with history can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		out     []model.GameRecord
		skipped int
		line    int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec model.GameRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			log.Debug().Err(err).Int("line", line).Msg("Bad JSON")
			skipped++
			continue
		}
		if rec.ID == "" || rec.Black == "" || rec.White == "" {
			log.Debug().Int("line", line).Msg("Missing game id or players")
			skipped++
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan: %w", err)
	}
	return out, skipped, nil
}

// replayRatings rebuilds the rating table from records in order, skipping
// self-play games.
func replayRatings(records []model.GameRecord) *elo.System {
	sys := elo.NewSystem()
	for _, rec := range records {
		if rec.Black == rec.White {
			continue
		}
		sys.UpdateRating(rec.Black, rec.White, tournament.ScoreFor(rec.Winner))
	}
	return sys
}
