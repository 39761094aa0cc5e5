package entangled

import "fmt"

// Color is the content of a board cell.
type Color uint8

const (
	Empty Color = iota
	Black
	White
	Superposition
)

func (c Color) String() string {
	switch c {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	case Superposition:
		return "superposition"
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Opponent returns the other player. Non-player colors return Empty.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// IsPlayer reports whether c is Black or White.
func (c Color) IsPlayer() bool {
	return c == Black || c == White
}

// MarshalText encodes the color as its lowercase name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a lowercase color name.
func (c *Color) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty", "":
		*c = Empty
	case "black":
		*c = Black
	case "white":
		*c = White
	case "superposition":
		*c = Superposition
	default:
		return fmt.Errorf("unknown color %q", string(b))
	}
	return nil
}

// Board indexes.
const (
	Board1 = 0
	Board2 = 1
)

// Board is the mutable cell state of one board. Dot cells stay Empty; the
// layout decides whether a cell is playable.
type Board struct {
	size  int
	cells []Color
}

func newBoard(size int) *Board {
	return &Board{size: size, cells: make([]Color, size*size)}
}

// Size returns the board dimension.
func (b *Board) Size() int { return b.size }

// At returns the color at p.
func (b *Board) At(p Position) Color {
	return b.cells[p.Row*b.size+p.Col]
}

func (b *Board) set(p Position, c Color) {
	b.cells[p.Row*b.size+p.Col] = c
}

// Grid returns a copy of the board as rows of colors.
func (b *Board) Grid() [][]Color {
	g := make([][]Color, b.size)
	for r := range g {
		g[r] = make([]Color, b.size)
		copy(g[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return g
}

// Count returns the number of cells holding c.
func (b *Board) Count(c Color) int {
	n := 0
	for _, v := range b.cells {
		if v == c {
			n++
		}
	}
	return n
}

func (b *Board) clone() *Board {
	c := &Board{size: b.size, cells: make([]Color, len(b.cells))}
	copy(c.cells, b.cells)
	return c
}

// copyFrom overwrites b with src, reusing b's storage when it fits.
func (b *Board) copyFrom(src *Board) {
	b.size = src.size
	if cap(b.cells) >= len(src.cells) {
		b.cells = b.cells[:len(src.cells)]
	} else {
		b.cells = make([]Color, len(src.cells))
	}
	copy(b.cells, src.cells)
}
