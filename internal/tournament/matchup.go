package tournament

import (
	"fmt"
	"strings"

	"lukechampine.com/frand"

	"github.com/freeeve/entangled/pkg/entangled"
)

// BoardConfig is one board setup every matchup is played on.
type BoardConfig struct {
	Board1         string `json:"board1"`
	Board2         string `json:"board2"`
	StartingStones string `json:"startingStones,omitempty"`
	Superposition  string `json:"superposition,omitempty"`
	SwapRule       bool   `json:"swapRule,omitempty"`
}

// DefaultBoard returns the standard square pair for size.
func DefaultBoard(size int) BoardConfig {
	b1, b2 := entangled.DefaultLayoutPair(size)
	return BoardConfig{Board1: b1, Board2: b2}
}

// Key identifies the board setup in stats and storage.
func (b BoardConfig) Key() string {
	var sb strings.Builder
	sb.WriteString(b.Board1)
	sb.WriteByte('/')
	sb.WriteString(b.Board2)
	if b.SwapRule {
		sb.WriteString(";swap")
	}
	if b.Superposition != "" {
		sb.WriteString(";sp=")
		sb.WriteString(strings.ToUpper(b.Superposition))
	}
	if b.StartingStones != "" {
		sb.WriteString(";stones=")
		sb.WriteString(strings.ToUpper(b.StartingStones))
	}
	return sb.String()
}

// resolve looks up both layouts and checks they can be paired.
func (b BoardConfig) resolve(p entangled.LayoutProvider) (*entangled.Layout, *entangled.Layout, error) {
	l1, err := p.Layout(b.Board1)
	if err != nil {
		return nil, nil, err
	}
	l2, err := p.Layout(b.Board2)
	if err != nil {
		return nil, nil, err
	}
	if l1.Size != l2.Size {
		return nil, nil, fmt.Errorf("%w: %s", entangled.ErrLayoutMismatch, b.Key())
	}
	return l1, l2, nil
}

// Matchup is an ordered strategy pairing on one board setup.
type Matchup struct {
	Black string      `json:"black"`
	White string      `json:"white"`
	Board BoardConfig `json:"board"`
}

// Key identifies the matchup in stats and storage.
func (m Matchup) Key() string {
	return fmt.Sprintf("%s vs %s @ %s", m.Black, m.White, m.Board.Key())
}

// SelfPlay reports whether a strategy id plays itself.
func (m Matchup) SelfPlay() bool { return m.Black == m.White }

// GenerateMatchups returns every ordered pair of strategies, self-pairs
// included, on every board setup. With shuffle the order is randomised.
func GenerateMatchups(strategies []string, boards []BoardConfig, shuffle bool) []Matchup {
	out := make([]Matchup, 0, len(strategies)*len(strategies)*len(boards))
	for _, b := range boards {
		for _, black := range strategies {
			for _, white := range strategies {
				out = append(out, Matchup{Black: black, White: white, Board: b})
			}
		}
	}
	if shuffle {
		frand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}
