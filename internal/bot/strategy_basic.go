package bot

import (
	"math/rand"

	"github.com/freeeve/entangled/pkg/entangled"
)

// --- RandomStrategy ---

// RandomStrategy plays a uniformly random legal move.
type RandomStrategy struct {
	rng *rand.Rand
}

func (*RandomStrategy) Name() string { return string(KindRandom) }

func (s *RandomStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	if len(moves) == 0 {
		return "", false
	}
	return pick(s.rng, moves), true
}

// ShouldSwap flips a coin.
func (s *RandomStrategy) ShouldSwap(*entangled.Engine) bool {
	return s.rng.Intn(2) == 0
}

// --- DeterministicStrategy ---

// DeterministicStrategy always plays the first legal move in symbol order.
// It is a fixed baseline for regression games.
type DeterministicStrategy struct{}

func (DeterministicStrategy) Name() string { return string(KindDeterministic) }

func (DeterministicStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	moves := e.ValidMoves()
	if len(moves) == 0 {
		return "", false
	}
	return moves[0], true
}

// ShouldSwap swaps when the opening symbol's character code is even.
func (DeterministicStrategy) ShouldSwap(e *entangled.Engine) bool {
	first := e.FirstMoveSymbol()
	return first != "" && first[0]%2 == 0
}
