package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/auth"
	"github.com/freeeve/entangled/internal/config"
	"github.com/freeeve/entangled/internal/handler"
	"github.com/freeeve/entangled/internal/logger"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/repository/postgres"
	redisrepo "github.com/freeeve/entangled/internal/repository/redis"
	"github.com/freeeve/entangled/internal/tournament"
)

func main() {
	logger.Init()
	cfg := config.Load()
	tc := cfg.Tournament
	log.Info().Strs("strategies", tc.Strategies).Ints("sizes", tc.BoardSizes).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()
	results := postgres.NewResultRepo(db)
	results.SetBatchSize(tc.BatchSize)

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Tournament
	boards := make([]tournament.BoardConfig, 0, len(tc.BoardSizes))
	for _, size := range tc.BoardSizes {
		b := tournament.DefaultBoard(size)
		b.SwapRule = tc.SwapRule
		b.Superposition = tc.Superposition
		b.StartingStones = tc.StartingStones
		boards = append(boards, b)
	}
	tcfg := tournament.Config{
		Name:            tc.Name,
		Strategies:      tc.Strategies,
		Boards:          boards,
		GamesPerMatchup: tc.GamesPerMatchup,
		Workers:         tc.Workers,
		Shuffle:         true,
		Seed:            tc.Seed,
		RecordHistory:   tc.RecordHistory,
	}
	rawCfg, err := tcfg.Record()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid tournament config")
	}
	record, err := results.CreateTournament(context.Background(), tc.Name, rawCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create tournament")
	}
	tcfg.ID = record.ID

	orch, err := tournament.New(tcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid tournament config")
	}

	wsHub := handler.NewHub()
	orch.AddSink(results)
	orch.AddListener(tournament.NewCacheListener(redisClient))
	orch.AddListener(wsHub)

	// HTTP
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	router := handler.NewRouter(handler.Routes{
		Auth:        handler.NewAuthHandler(jwtMgr, cfg.DevMode),
		Tournament:  handler.NewTournamentHandler(orch, redisClient, results),
		WS:          handler.NewWSHandler(wsHub, jwtMgr, orch.ID()),
		JWT:         jwtMgr,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, runErr := orch.Run(ctx)
	status := model.StatusFinished
	if errors.Is(runErr, context.Canceled) {
		status = model.StatusCancelled
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer storeCancel()
	if err := results.SaveRatings(storeCtx, orch.ID(), summary.RatingRows()); err != nil {
		log.Error().Err(err).Msg("Failed to save ratings")
	}
	if err := results.SetTournamentStatus(storeCtx, orch.ID(), status); err != nil {
		log.Error().Err(err).Msg("Failed to store tournament status")
	}
	wsHub.TournamentFinished(summary)
	log.Info().Str("status", status).Int("completed", summary.Progress.Completed).Msg("Tournament ended")

	// Keep serving the final results until asked to stop.
	if runErr == nil {
		<-ctx.Done()
	}
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
