package bot

import (
	"math/rand"
	"time"
)

// NewRand returns a random source for one strategy instance. A zero seed
// gives a time-seeded source. Strategies never share a source, so each
// orchestrator unit can hand out its own.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func pick(rng *rand.Rand, moves []string) string {
	return moves[rng.Intn(len(moves))]
}
