package bot

import (
	"math/rand"
	"time"

	"github.com/freeeve/entangled/pkg/entangled"
)

// MCTSStrategy estimates each legal move by random rollouts until its time
// budget runs out. Rollouts go to whichever move has the fewest so far, so
// every move is sampled in turn. The deadline is checked between rollouts;
// a rollout in progress always completes.
//
// The strategy keeps one scratch engine and one move buffer and resets them
// for every rollout. It is not safe for concurrent use.
type MCTSStrategy struct {
	name string
	cfg  MCTSConfig
	rng  *rand.Rand

	scratch *entangled.Engine
	moves   []string
}

// NewMCTSStrategy returns an MCTS strategy drawing rollouts from rng.
func NewMCTSStrategy(name string, cfg MCTSConfig, rng *rand.Rand) *MCTSStrategy {
	return &MCTSStrategy{name: name, cfg: cfg, rng: rng}
}

func (s *MCTSStrategy) Name() string { return s.name }

func (s *MCTSStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	switch len(moves) {
	case 0:
		return "", false
	case 1:
		return moves[0], true
	}
	me := e.CurrentPlayer()
	visits := make([]int, len(moves))
	totals := make([]float64, len(moves))
	deadline := time.Now().Add(s.cfg.Budget)

	for n := 0; !s.done(n, deadline); n++ {
		k := leastVisited(visits)
		totals[k] += s.rollout(e, moves[k], me)
		visits[k]++
	}

	best, bestMean := 0, 0.0
	for i := range moves {
		if visits[i] == 0 {
			continue
		}
		mean := totals[i] / float64(visits[i])
		if visits[best] == 0 || mean > bestMean {
			best, bestMean = i, mean
		}
	}
	return moves[best], true
}

// done reports whether the search should stop after n rollouts. At least
// one rollout always runs.
func (s *MCTSStrategy) done(n int, deadline time.Time) bool {
	switch {
	case n == 0:
		return false
	case s.cfg.Rollouts > 0 && n >= s.cfg.Rollouts:
		return true
	case s.cfg.Budget > 0:
		return time.Now().After(deadline)
	}
	return s.cfg.Rollouts <= 0
}

func leastVisited(visits []int) int {
	k := 0
	for i, v := range visits {
		if v < visits[k] {
			k = i
		}
	}
	return k
}

// reset copies root into the scratch engine.
func (s *MCTSStrategy) reset(root *entangled.Engine) *entangled.Engine {
	if s.scratch == nil {
		s.scratch = root.Clone()
	} else {
		root.CloneInto(s.scratch)
	}
	return s.scratch
}

// rollout plays first and then random moves on the scratch engine and
// returns the final score differential from me's side.
func (s *MCTSStrategy) rollout(root *entangled.Engine, first string, me entangled.Color) float64 {
	sim := s.reset(root)
	if first != "" {
		if err := sim.MakeMove(first); err != nil {
			return 0
		}
	}
	return s.playout(sim, me)
}

func (s *MCTSStrategy) playout(sim *entangled.Engine, me entangled.Color) float64 {
	for n := 0; !sim.IsGameOver() && (s.cfg.MoveCap == 0 || n < s.cfg.MoveCap); n++ {
		s.moves = sim.AppendValidMoves(s.moves[:0])
		if len(s.moves) == 0 {
			break
		}
		_ = sim.MakeMove(pick(s.rng, s.moves))
	}
	return float64(sim.Score(me) - sim.Score(me.Opponent()))
}

// ShouldSwap splits the budget between rollouts from the swapped and the
// unswapped position and swaps when the swapped mean is higher.
func (s *MCTSStrategy) ShouldSwap(e *entangled.Engine) bool {
	if !e.IsSwapAvailable() {
		return false
	}
	swapped := e.Clone()
	if err := swapped.SwapFirstMove(); err != nil {
		return false
	}
	me := e.CurrentPlayer()
	half := s.cfg
	half.Budget /= 2
	half.Rollouts = (half.Rollouts + 1) / 2
	return s.estimate(swapped, me, half) > s.estimate(e, me, half)
}

func (s *MCTSStrategy) estimate(e *entangled.Engine, me entangled.Color, cfg MCTSConfig) float64 {
	orig := s.cfg
	s.cfg = cfg
	defer func() { s.cfg = orig }()

	deadline := time.Now().Add(cfg.Budget)
	total := 0.0
	n := 0
	for ; !s.done(n, deadline); n++ {
		total += s.rollout(e, "", me)
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
