// Command play runs a single game between two strategies and prints a
// move-by-move replay of both boards.
//
// Usage:
//
//	go run ./cmd/play -black minimax -white greedy-high -size 5 -swap
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/bot"
	"github.com/freeeve/entangled/internal/logger"
	"github.com/freeeve/entangled/pkg/entangled"
)

func main() {
	var (
		black   string
		white   string
		size    int
		board1  string
		board2  string
		swap    bool
		sp      string
		stones  string
		seed    int64
		jsonOut bool
		final   bool
		verbose bool
	)

	flag.StringVar(&black, "black", "greedy-high", "Black strategy id")
	flag.StringVar(&white, "white", "random", "White strategy id")
	flag.IntVar(&size, "size", 5, "Board size (uses the square layout pair)")
	flag.StringVar(&board1, "board1", "", "Board 1 layout id (overrides -size)")
	flag.StringVar(&board2, "board2", "", "Board 2 layout id (overrides -size)")
	flag.BoolVar(&swap, "swap", false, "Enable the swap rule")
	flag.StringVar(&sp, "sp", "", "Superposition config (e.g. RNG,RNG or A,M)")
	flag.StringVar(&stones, "stones", "", "Starting stones (e.g. BA1,WM2)")
	flag.Int64Var(&seed, "seed", 0, "Seed for strategies and superposition draws (0 = random)")
	flag.BoolVar(&jsonOut, "json", false, "Output the game result as JSON")
	flag.BoolVar(&final, "final", false, "Print only the final position")
	flag.BoolVar(&verbose, "v", false, "Debug logging")
	flag.Parse()

	logger.InitCLI(verbose)

	if board1 == "" || board2 == "" {
		d1, d2 := entangled.DefaultLayoutPair(size)
		if board1 == "" {
			board1 = d1
		}
		if board2 == "" {
			board2 = d2
		}
	}
	layouts := entangled.StandardLayouts()
	l1, err := layouts.Layout(board1)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -board1")
	}
	l2, err := layouts.Layout(board2)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -board2")
	}

	rng := bot.NewRand(seed)
	bs, err := bot.StrategyForID(black, bot.NewRand(rng.Int63()))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -black")
	}
	ws, err := bot.StrategyForID(white, bot.NewRand(rng.Int63()))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -white")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := bot.RunGame(ctx, bot.GameConfig{
		Black:          bs,
		White:          ws,
		Board1:         l1,
		Board2:         l2,
		StartingStones: stones,
		Superposition:  sp,
		SwapRule:       swap,
		RecordHistory:  true,
		Rand:           bot.NewRand(rng.Int63()),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Game failed")
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
		return
	}
	writeReplay(os.Stdout, result, l1, l2, final)
}

// writeReplay prints each recorded position followed by the outcome.
func writeReplay(w io.Writer, r *bot.GameResult, l1, l2 *entangled.Layout, finalOnly bool) {
	fmt.Fprintf(w, "%s (black) vs %s (white) on %s / %s\n\n", r.Black, r.White, l1.ID, l2.ID)

	history := r.History
	if finalOnly && len(history) > 0 {
		history = history[len(history)-1:]
	}
	first := len(r.History) - len(history)
	for i, snap := range history {
		writePly(w, r, first+i)
		writeBoards(w, snap, l1, l2)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Winner: %s  (black %d, white %d)\n", r.Winner, r.Scores.Black, r.Scores.White)
	if r.TieBreak.DecidingLevel > 0 {
		lc := r.TieBreak.ComparisonData[r.TieBreak.DecidingLevel-1]
		fmt.Fprintf(w, "Tie-break at level %d: black %d, white %d\n", lc.Level, lc.Black, lc.White)
	}
	fmt.Fprintf(w, "Moves: %s\n", strings.Join(r.Moves, " "))
}

// writePly prints the header for the position after ply moves.
func writePly(w io.Writer, r *bot.GameResult, ply int) {
	switch {
	case ply == 0:
		fmt.Fprintln(w, "Start")
	case ply > len(r.Moves):
		fmt.Fprintf(w, "%d.\n", ply)
	default:
		fmt.Fprintf(w, "%d. %s\n", ply, r.Moves[ply-1])
	}
}

// writeBoards renders both boards side by side. Stones show as X (black),
// O (white) and ? (superposition); empty cells show their symbol.
func writeBoards(w io.Writer, snap entangled.Snapshot, l1, l2 *entangled.Layout) {
	for row := range l1.Size {
		var sb strings.Builder
		writeRow(&sb, snap.Boards[entangled.Board1], l1, row)
		sb.WriteString("   ")
		writeRow(&sb, snap.Boards[entangled.Board2], l2, row)
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

func writeRow(sb *strings.Builder, board [][]entangled.Color, l *entangled.Layout, row int) {
	for col := range l.Size {
		fmt.Fprintf(sb, "%-3s", cellText(board[row][col], l, entangled.Position{Row: row, Col: col}))
	}
}

func cellText(c entangled.Color, l *entangled.Layout, p entangled.Position) string {
	switch c {
	case entangled.Black:
		return "X"
	case entangled.White:
		return "O"
	case entangled.Superposition:
		return "?"
	}
	if l.IsDot(p) {
		return " "
	}
	return strings.ToLower(l.Symbol(p))
}
