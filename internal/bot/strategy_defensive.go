package bot

import (
	"math"

	"github.com/freeeve/entangled/pkg/entangled"
)

// DefensiveStrategy scores each move as its own resulting score minus the
// opponent's score after their best reply. Opponent replies that touch a
// pending superposition stone are not considered.
type DefensiveStrategy struct{}

func (DefensiveStrategy) Name() string { return string(KindDefensive) }

func (DefensiveStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	if len(moves) == 0 {
		return "", false
	}
	me := e.CurrentPlayer()
	opp := me.Opponent()

	best, bestValue := "", math.Inf(-1)
	for _, sym := range moves {
		v, err := moveValue(e, sym, func(x *entangled.Engine) float64 {
			return float64(x.Score(me) - worstReply(x, opp))
		})
		if err != nil {
			continue
		}
		if v > bestValue {
			best, bestValue = sym, v
		}
	}
	if best == "" {
		return moves[0], true
	}
	return best, true
}

// worstReply returns the highest score opp can reach with one
// non-superposition move, or opp's current score if no such move exists.
func worstReply(e *entangled.Engine, opp entangled.Color) int {
	worst := e.Score(opp)
	if e.IsGameOver() || e.CurrentPlayer() != opp {
		return worst
	}
	for _, r := range e.ValidMoves() {
		if e.IsSuperpositionMove(r) {
			continue
		}
		next, err := simulate(e, r)
		if err != nil {
			continue
		}
		worst = max(worst, next.Score(opp))
	}
	return worst
}

func (DefensiveStrategy) ShouldSwap(e *entangled.Engine) bool {
	return swapIfCentral(e)
}
