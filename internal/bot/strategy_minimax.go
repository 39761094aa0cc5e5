package bot

import (
	"math"

	"github.com/freeeve/entangled/pkg/entangled"
)

// MinimaxStrategy runs a depth-limited alpha-beta search with its own color
// as the maximising side. Leaves are scored with EvaluatePosition. At the
// root, superposition moves are searched under each forced collapse outcome
// and blended.
type MinimaxStrategy struct {
	name string
	cfg  MinimaxConfig
}

func (s *MinimaxStrategy) Name() string { return s.name }

func (s *MinimaxStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	if len(moves) == 0 {
		return "", false
	}
	me := e.CurrentPlayer()
	best, bestValue := moves[0], math.Inf(-1)
	for _, sym := range moves {
		v, err := moveValue(e, sym, func(x *entangled.Engine) float64 {
			return alphaBeta(x, s.cfg.Depth-1, math.Inf(-1), math.Inf(1), me)
		})
		if err != nil {
			continue
		}
		if v > bestValue {
			best, bestValue = sym, v
		}
	}
	return best, true
}

// ShouldSwap compares one ply of search after swapping against one ply
// without it.
func (s *MinimaxStrategy) ShouldSwap(e *entangled.Engine) bool {
	if !e.IsSwapAvailable() {
		return false
	}
	me := e.CurrentPlayer()
	keep := alphaBeta(e, 1, math.Inf(-1), math.Inf(1), me)
	swapped := e.Clone()
	if err := swapped.SwapFirstMove(); err != nil {
		return false
	}
	return alphaBeta(swapped, 1, math.Inf(-1), math.Inf(1), me) > keep
}

func alphaBeta(e *entangled.Engine, depth int, alpha, beta float64, me entangled.Color) float64 {
	if depth <= 0 || e.IsGameOver() {
		return EvaluatePosition(e, me)
	}
	moves := e.ValidMoves()
	maximizing := e.CurrentPlayer() == me
	value := math.Inf(1)
	if maximizing {
		value = math.Inf(-1)
	}
	for _, sym := range moves {
		child, err := simulate(e, sym)
		if err != nil {
			continue
		}
		v := alphaBeta(child, depth-1, alpha, beta, me)
		if maximizing {
			value = math.Max(value, v)
			alpha = math.Max(alpha, value)
		} else {
			value = math.Min(value, v)
			beta = math.Min(beta, value)
		}
		if alpha >= beta {
			break
		}
	}
	if math.IsInf(value, 0) {
		return EvaluatePosition(e, me)
	}
	return value
}
