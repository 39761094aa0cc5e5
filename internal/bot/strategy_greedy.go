package bot

import (
	"math"
	"math/rand"

	"github.com/freeeve/entangled/pkg/entangled"
)

// GreedyStrategy looks one move ahead. The high variant maximises its own
// total score; the low variant keeps its two boards balanced, preferring
// the smaller gap between its largest groups and then the higher score.
type GreedyStrategy struct {
	name string
	low  bool
	cfg  GreedyConfig
	rng  *rand.Rand
}

func (s *GreedyStrategy) Name() string { return s.name }

func (s *GreedyStrategy) value(me entangled.Color) func(*entangled.Engine) float64 {
	if !s.low {
		return func(x *entangled.Engine) float64 { return float64(x.Score(me)) }
	}
	return func(x *entangled.Engine) float64 {
		b1 := x.LargestCluster(entangled.Board1, me)
		b2 := x.LargestCluster(entangled.Board2, me)
		return -math.Abs(float64(b1-b2)) + 0.01*float64(b1+b2)
	}
}

func (s *GreedyStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	if len(moves) == 0 {
		return "", false
	}
	f := s.value(e.CurrentPlayer())
	values := make([]float64, len(moves))
	best := math.Inf(-1)
	for i, sym := range moves {
		v, err := moveValue(e, sym, f)
		if err != nil {
			v = math.Inf(-1)
		}
		values[i] = v
		best = math.Max(best, v)
	}
	if math.IsInf(best, -1) {
		return moves[0], true
	}
	return s.pickWithin(moves, values, best), true
}

// pickWithin returns the first best move, or with a threshold a random move
// whose value is within Threshold*|best| of best.
func (s *GreedyStrategy) pickWithin(moves []string, values []float64, best float64) string {
	if s.cfg.Threshold <= 0 {
		for i, v := range values {
			if v == best {
				return moves[i]
			}
		}
	}
	cutoff := best - s.cfg.Threshold*math.Abs(best)
	var near []string
	for i, v := range values {
		if v >= cutoff {
			near = append(near, moves[i])
		}
	}
	return pick(s.rng, near)
}

func (s *GreedyStrategy) ShouldSwap(e *entangled.Engine) bool {
	return swapIfCentral(e)
}
