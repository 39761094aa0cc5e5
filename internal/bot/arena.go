package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/pkg/entangled"
)

// ErrStrategyFailed marks a game aborted because a strategy returned no
// move or an illegal one.
var ErrStrategyFailed = errors.New("strategy failed")

// SwapMove is recorded in GameResult.Moves when White takes the swap.
const SwapMove = "swap"

// GameConfig configures a single strategy-vs-strategy game.
type GameConfig struct {
	Black, White   Strategy
	Board1, Board2 *entangled.Layout
	StartingStones string
	Superposition  string
	SwapRule       bool
	RecordHistory  bool
	Rand           *rand.Rand // superposition draws; nil = time-seeded
}

// Scores holds both final scores.
type Scores struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// GameResult describes the outcome of a completed game.
type GameResult struct {
	ID       string               `json:"id"`
	Black    string               `json:"black"`
	White    string               `json:"white"`
	Winner   entangled.Outcome    `json:"winner"`
	Scores   Scores               `json:"scores"`
	TieBreak entangled.TieBreak   `json:"tiebreak"`
	Moves    []string             `json:"moves"`
	Swapped  bool                 `json:"swapped,omitempty"`
	History  []entangled.Snapshot `json:"history,omitempty"`
	Duration time.Duration        `json:"durationNs"`
}

// RunGame plays one game to completion. Strategies see a copy of the live
// engine refreshed before every decision. A strategy that produces no move
// or an illegal move aborts the game with ErrStrategyFailed. ctx is checked
// between moves.
func RunGame(ctx context.Context, cfg GameConfig) (*GameResult, error) {
	if cfg.Black == nil || cfg.White == nil {
		return nil, errors.New("run game: both strategies are required")
	}
	start := time.Now()
	e, err := entangled.NewEngine(entangled.Options{
		Board1:         cfg.Board1,
		Board2:         cfg.Board2,
		StartingStones: cfg.StartingStones,
		Superposition:  cfg.Superposition,
		SwapRule:       cfg.SwapRule,
		Rand:           cfg.Rand,
	})
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	if skipped := e.SkippedStartingStones(); len(skipped) > 0 {
		log.Debug().Strs("tokens", skipped).Msg("Ignored starting stones")
	}

	result := &GameResult{
		ID:    uuid.NewString(),
		Black: cfg.Black.Name(),
		White: cfg.White.Name(),
	}
	record := func() {
		if cfg.RecordHistory {
			result.History = append(result.History, e.Snapshot())
		}
	}
	record()

	view := e.Clone()
	for !e.IsGameOver() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if e.IsSwapAvailable() {
			e.CloneInto(view)
			if cfg.White.ShouldSwap(view) {
				if err := e.SwapFirstMove(); err != nil {
					return nil, fmt.Errorf("swap: %w", err)
				}
				result.Moves = append(result.Moves, SwapMove)
				result.Swapped = true
				record()
				continue
			}
		}

		s := cfg.Black
		if e.CurrentPlayer() == entangled.White {
			s = cfg.White
		}
		e.CloneInto(view)
		sym, ok := s.ChooseMove(view)
		if !ok {
			return nil, fmt.Errorf("%w: %s returned no move with %d legal", ErrStrategyFailed, s.Name(), len(e.ValidMoves()))
		}
		if err := e.MakeMove(sym); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStrategyFailed, s.Name(), err)
		}
		result.Moves = append(result.Moves, sym)
		record()
	}

	stats := e.EndGameStats()
	result.Winner = stats.Winner
	result.Scores = Scores{Black: stats.BlackScore, White: stats.WhiteScore}
	result.TieBreak = stats.TieBreak
	result.Duration = time.Since(start)

	log.Debug().
		Str("gameId", result.ID).
		Str("black", result.Black).
		Str("white", result.White).
		Str("winner", string(result.Winner)).
		Int("moves", len(result.Moves)).
		Dur("duration", result.Duration).
		Msg("Arena game finished")
	return result, nil
}
