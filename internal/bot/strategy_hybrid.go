package bot

import "github.com/freeeve/entangled/pkg/entangled"

// HybridStrategy uses minimax when the position is small enough to search
// exactly and holds no pending superposition, and MCTS otherwise.
type HybridStrategy struct {
	name    string
	limit   int
	minimax *MinimaxStrategy
	mcts    *MCTSStrategy
}

func (s *HybridStrategy) Name() string { return s.name }

func (s *HybridStrategy) delegate(e *entangled.Engine) Strategy {
	if !e.HasPendingSuperposition() && len(e.ValidMoves()) <= s.limit {
		return s.minimax
	}
	return s.mcts
}

func (s *HybridStrategy) ChooseMove(e *entangled.Engine) (string, bool) {
	return s.delegate(e).ChooseMove(e)
}

func (s *HybridStrategy) ShouldSwap(e *entangled.Engine) bool {
	return s.delegate(e).ShouldSwap(e)
}
