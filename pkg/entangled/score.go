package entangled

import "sort"

// Outcome is the result of a finished game.
type Outcome string

const (
	OutcomeBlack Outcome = "black"
	OutcomeWhite Outcome = "white"
	OutcomeTie   Outcome = "tie"
)

// OutcomeFor maps a player color to the matching outcome.
func OutcomeFor(c Color) Outcome {
	switch c {
	case Black:
		return OutcomeBlack
	case White:
		return OutcomeWhite
	}
	return OutcomeTie
}

// LevelComparison is one rank of the tie-break: the cross-board sum of each
// player's i-th largest clusters.
type LevelComparison struct {
	Level int `json:"level"`
	Black int `json:"black"`
	White int `json:"white"`
}

// TieBreak records how equal scores were separated. DecidingLevel is the
// 1-based rank that differed, or 0 when no rank was needed or none differed.
type TieBreak struct {
	ComparisonData []LevelComparison `json:"comparisonData"`
	DecidingLevel  int               `json:"decidingLevel"`
}

// EndGameStats summarises the final position.
type EndGameStats struct {
	Winner        Outcome  `json:"winner"`
	BlackScore    int      `json:"blackScore"`
	WhiteScore    int      `json:"whiteScore"`
	TieBreak      TieBreak `json:"tiebreak"`
	BlackClusters [2][]int `json:"blackClusters"`
	WhiteClusters [2][]int `json:"whiteClusters"`
}

// Clusters returns every connected group of color on a board.
func (e *Engine) Clusters(board int, color Color) [][]Position {
	l := e.layouts[board]
	b := e.boards[board]
	visited := make([]bool, l.Size*l.Size)
	var clusters [][]Position
	var stack []Position

	for r := 0; r < l.Size; r++ {
		for c := 0; c < l.Size; c++ {
			start := Position{Row: r, Col: c}
			if visited[r*l.Size+c] || l.IsDot(start) || b.At(start) != color {
				continue
			}
			visited[r*l.Size+c] = true
			stack = append(stack[:0], start)
			var cluster []Position
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cluster = append(cluster, p)
				for _, n := range l.Neighbors(p) {
					i := n.Row*l.Size + n.Col
					if !visited[i] && b.At(n) == color {
						visited[i] = true
						stack = append(stack, n)
					}
				}
			}
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

// ClusterSizes returns the cluster sizes of color on a board, largest first.
func (e *Engine) ClusterSizes(board int, color Color) []int {
	clusters := e.Clusters(board, color)
	sizes := make([]int, len(clusters))
	for i, cl := range clusters {
		sizes[i] = len(cl)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// LargestCluster returns the size of color's largest group on a board.
func (e *Engine) LargestCluster(board int, color Color) int {
	best := 0
	for _, cl := range e.Clusters(board, color) {
		if len(cl) > best {
			best = len(cl)
		}
	}
	return best
}

// LargestClusterCells returns the cells of color's largest group on a
// board. The first group found wins ties.
func (e *Engine) LargestClusterCells(board int, color Color) []Position {
	var best []Position
	for _, cl := range e.Clusters(board, color) {
		if len(cl) > len(best) {
			best = cl
		}
	}
	return best
}

// Score is the sum of the player's largest group on each board.
func (e *Engine) Score(player Color) int {
	return e.LargestCluster(Board1, player) + e.LargestCluster(Board2, player)
}

// Winner returns the outcome for the current position.
func (e *Engine) Winner() Outcome {
	return e.EndGameStats().Winner
}

// EndGameStats computes scores, cluster lists and the tie-break trace.
func (e *Engine) EndGameStats() EndGameStats {
	stats := EndGameStats{
		BlackScore: e.Score(Black),
		WhiteScore: e.Score(White),
	}
	for board := range 2 {
		stats.BlackClusters[board] = e.ClusterSizes(board, Black)
		stats.WhiteClusters[board] = e.ClusterSizes(board, White)
	}
	switch {
	case stats.BlackScore > stats.WhiteScore:
		stats.Winner = OutcomeBlack
	case stats.WhiteScore > stats.BlackScore:
		stats.Winner = OutcomeWhite
	default:
		stats.Winner, stats.TieBreak = CompareClusterLevels(stats.BlackClusters, stats.WhiteClusters)
	}
	return stats
}

// CompareClusterLevels breaks a score tie. Each list is sorted largest first
// and padded with zeros; rank i compares board1[i]+board2[i] per player and
// the first differing rank decides.
func CompareClusterLevels(black, white [2][]int) (Outcome, TieBreak) {
	var b, w [2][]int
	levels := 0
	for i := range 2 {
		b[i] = sortedDesc(black[i])
		w[i] = sortedDesc(white[i])
		levels = max(levels, len(b[i]), len(w[i]))
	}

	var tb TieBreak
	for i := 0; i < levels; i++ {
		lc := LevelComparison{
			Level: i + 1,
			Black: at(b[0], i) + at(b[1], i),
			White: at(w[0], i) + at(w[1], i),
		}
		tb.ComparisonData = append(tb.ComparisonData, lc)
		if lc.Black != lc.White {
			tb.DecidingLevel = lc.Level
			if lc.Black > lc.White {
				return OutcomeBlack, tb
			}
			return OutcomeWhite, tb
		}
	}
	return OutcomeTie, tb
}

func sortedDesc(xs []int) []int {
	out := make([]int, len(xs))
	copy(out, xs)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
