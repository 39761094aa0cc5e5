package bot

import (
	"math"

	"github.com/freeeve/entangled/pkg/entangled"
)

// Evaluation weights for EvaluatePosition.
const (
	centerWeight        = 0.5
	superpositionWeight = 0.25
	terminalWeight      = 1000.0

	// maxBlendStones bounds the collapse outcomes enumerated per move
	// (2^n combinations).
	maxBlendStones = 3
)

// simulate plays sym on a clone of e.
func simulate(e *entangled.Engine, sym string) (*entangled.Engine, error) {
	c := e.Clone()
	if err := c.MakeMove(sym); err != nil {
		return nil, err
	}
	return c, nil
}

// EvaluateMove plays sym for the player to move on a clone and returns
// EvaluatePosition from that player's side. Superposition moves are scored
// by blending the possible collapse outcomes.
func EvaluateMove(e *entangled.Engine, sym string) (float64, error) {
	me := e.CurrentPlayer()
	return moveValue(e, sym, func(x *entangled.Engine) float64 {
		return EvaluatePosition(x, me)
	})
}

// moveValue simulates sym and applies f to the result. When the move
// touches pending superposition stones that stay unresolved, f is applied to
// every forced collapse outcome and the results are blended.
func moveValue(e *entangled.Engine, sym string, f func(*entangled.Engine) float64) (float64, error) {
	adjacent := e.AdjacentSuperpositions(sym)
	next, err := simulate(e, sym)
	if err != nil {
		return 0, err
	}
	var pending []string
	for _, s := range adjacent {
		if next.IsSuperpositionSymbol(s) {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return f(next), nil
	}
	return blendCollapseOutcomes(next, pending, f), nil
}

// blendCollapseOutcomes evaluates f over every Black/White assignment of the
// pending stones and returns 0.5*mean + 0.5*worst.
func blendCollapseOutcomes(e *entangled.Engine, pending []string, f func(*entangled.Engine) float64) float64 {
	if len(pending) > maxBlendStones {
		pending = pending[:maxBlendStones]
	}
	n := 1 << len(pending)
	sum, worst := 0.0, math.Inf(1)
	for mask := 0; mask < n; mask++ {
		c := e.Clone()
		for i, sym := range pending {
			color := entangled.Black
			if mask&(1<<i) != 0 {
				color = entangled.White
			}
			_ = c.ForceCollapse(sym, color)
		}
		v := f(c)
		sum += v
		worst = math.Min(worst, v)
	}
	return 0.5*sum/float64(n) + 0.5*worst
}

// EvaluatePosition scores e from player's side: score differential, plus
// center control, plus a small bonus when the side to move has a
// superposition move available. Finished games are scored by outcome.
func EvaluatePosition(e *entangled.Engine, player entangled.Color) float64 {
	diff := float64(e.Score(player) - e.Score(player.Opponent()))
	if e.IsGameOver() {
		switch e.Winner() {
		case entangled.OutcomeFor(player):
			return terminalWeight + diff
		case entangled.OutcomeFor(player.Opponent()):
			return -terminalWeight + diff
		}
		return diff
	}
	v := diff + centerWeight*EvaluateCenterControl(e, player)
	if hasSuperpositionMove(e) {
		if e.CurrentPlayer() == player {
			v += superpositionWeight
		} else {
			v -= superpositionWeight
		}
	}
	return v
}

func hasSuperpositionMove(e *entangled.Engine) bool {
	if !e.HasPendingSuperposition() {
		return false
	}
	for _, sym := range e.ValidMoves() {
		if e.IsSuperpositionMove(sym) {
			return true
		}
	}
	return false
}

// centrality returns how close p is to the board center, from 1 at the
// center to 0 in a corner.
func centrality(size int, p entangled.Position) float64 {
	mid := float64(size-1) / 2
	d := math.Abs(float64(p.Row)-mid) + math.Abs(float64(p.Col)-mid)
	return 1 - d/(2*mid)
}

// EvaluateCenterControl compares how central each side's stones are, summed
// over both boards and normalised by the number of stones each side places.
func EvaluateCenterControl(e *entangled.Engine, player entangled.Color) float64 {
	opp := player.Opponent()
	size := e.Size()
	var own, their float64
	for board := range 2 {
		b := e.Board(board)
		l := e.Layout(board)
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				p := entangled.Position{Row: r, Col: c}
				if l.IsDot(p) {
					continue
				}
				switch b.At(p) {
				case player:
					own += centrality(size, p)
				case opp:
					their += centrality(size, p)
				}
			}
		}
	}
	norm := float64(max(e.StonesPerPlayer(), 1))
	return (own - their) / norm
}

// EvaluateConnectivity counts same-colored adjacent pairs of player's stones
// on both boards.
func EvaluateConnectivity(e *entangled.Engine, player entangled.Color) float64 {
	size := e.Size()
	links := 0
	for board := range 2 {
		b := e.Board(board)
		l := e.Layout(board)
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				p := entangled.Position{Row: r, Col: c}
				if l.IsDot(p) || b.At(p) != player {
					continue
				}
				for _, n := range l.Neighbors(p) {
					if b.At(n) == player {
						links++
					}
				}
			}
		}
	}
	return float64(links / 2)
}

// EvaluateGrowthPotential counts the empty cells bordering player's largest
// group on each board.
func EvaluateGrowthPotential(e *entangled.Engine, player entangled.Color) float64 {
	total := 0
	for board := range 2 {
		b := e.Board(board)
		l := e.Layout(board)
		seen := make(map[entangled.Position]bool)
		for _, p := range e.LargestClusterCells(board, player) {
			for _, n := range l.Neighbors(p) {
				if b.At(n) == entangled.Empty && !seen[n] {
					seen[n] = true
					total++
				}
			}
		}
	}
	return float64(total)
}

// symbolCentrality averages centrality over sym's cells.
func symbolCentrality(e *entangled.Engine, sym string) float64 {
	pls := e.Index().Placements(sym)
	if len(pls) == 0 {
		return 0
	}
	var sum float64
	for _, pl := range pls {
		sum += centrality(e.Size(), pl.Pos)
	}
	return sum / float64(len(pls))
}

// centralSwapThreshold is the opening centrality above which heuristic
// strategies take the swap.
const centralSwapThreshold = 0.6

func swapIfCentral(e *entangled.Engine) bool {
	first := e.FirstMoveSymbol()
	return first != "" && symbolCentrality(e, first) >= centralSwapThreshold
}
