package entangled

import (
	"fmt"
	"strings"
)

// AdjacencyKind selects the neighbour rule used on a board.
type AdjacencyKind string

const (
	Square AdjacencyKind = "square" // 4 neighbours
	Hex    AdjacencyKind = "hex"    // 6 neighbours, odd rows shifted right
)

// DotSymbol marks a non-playable cell in a layout grid.
const DotSymbol = "."

// Board size limits.
const (
	MinBoardSize = 4
	MaxBoardSize = 7
)

// Position is a cell coordinate on a single board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Layout is an immutable N×N symbol grid. Layouts are shared by every engine
// built from them and must never be modified after construction.
type Layout struct {
	ID   string
	Kind AdjacencyKind
	Size int
	Grid [][]string

	// neighbors[row*Size+col] lists the in-bounds, non-dot neighbours.
	neighbors [][]Position
}

var (
	squareDirs  = [][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}
	hexEvenDirs = [][2]int{{-1, -1}, {-1, 0}, {0, 1}, {1, 0}, {1, -1}, {0, -1}}
	hexOddDirs  = [][2]int{{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {0, -1}}
)

// Directions returns the (dRow, dCol) neighbour offsets for a cell in the
// given row. Hex offsets depend on row parity.
func Directions(kind AdjacencyKind, row int) [][2]int {
	if kind == Hex {
		if row%2 == 0 {
			return hexEvenDirs
		}
		return hexOddDirs
	}
	return squareDirs
}

// NewLayout parses whitespace-separated rows into a validated layout.
func NewLayout(id string, kind AdjacencyKind, rows []string) (*Layout, error) {
	if kind != Square && kind != Hex {
		return nil, fmt.Errorf("%w: %s: unknown adjacency kind %q", ErrInvalidLayout, id, kind)
	}
	size := len(rows)
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %s: size %d outside %d-%d", ErrInvalidLayout, id, size, MinBoardSize, MaxBoardSize)
	}

	l := &Layout{ID: id, Kind: kind, Size: size, Grid: make([][]string, size)}
	seen := make(map[string]bool, size*size)
	for r, row := range rows {
		cells := strings.Fields(row)
		if len(cells) != size {
			return nil, fmt.Errorf("%w: %s: row %d has %d cells, want %d", ErrInvalidLayout, id, r, len(cells), size)
		}
		for _, sym := range cells {
			if sym == DotSymbol {
				continue
			}
			if len(sym) != 1 || sym == "," {
				return nil, fmt.Errorf("%w: %s: bad symbol %q", ErrInvalidLayout, id, sym)
			}
			if seen[sym] {
				return nil, fmt.Errorf("%w: %s: duplicate symbol %q", ErrInvalidLayout, id, sym)
			}
			seen[sym] = true
		}
		l.Grid[r] = cells
	}
	l.buildNeighbors()
	return l, nil
}

func (l *Layout) buildNeighbors() {
	l.neighbors = make([][]Position, l.Size*l.Size)
	for r := 0; r < l.Size; r++ {
		for c := 0; c < l.Size; c++ {
			var ns []Position
			for _, d := range Directions(l.Kind, r) {
				p := Position{Row: r + d[0], Col: c + d[1]}
				if l.InBounds(p) && !l.IsDot(p) {
					ns = append(ns, p)
				}
			}
			l.neighbors[r*l.Size+c] = ns
		}
	}
}

// InBounds reports whether p lies on the grid.
func (l *Layout) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < l.Size && p.Col >= 0 && p.Col < l.Size
}

// IsDot reports whether p is a non-playable cell.
func (l *Layout) IsDot(p Position) bool {
	return l.Grid[p.Row][p.Col] == DotSymbol
}

// Symbol returns the symbol at p, or DotSymbol for dot cells.
func (l *Layout) Symbol(p Position) string {
	return l.Grid[p.Row][p.Col]
}

// Neighbors returns the playable neighbours of p in direction order.
// Off-board and dot neighbours are omitted. The slice must not be modified.
func (l *Layout) Neighbors(p Position) []Position {
	return l.neighbors[p.Row*l.Size+p.Col]
}

// PlayableCount returns the number of non-dot cells.
func (l *Layout) PlayableCount() int {
	n := 0
	for _, row := range l.Grid {
		for _, s := range row {
			if s != DotSymbol {
				n++
			}
		}
	}
	return n
}

// LayoutProvider resolves layout ids to layouts.
type LayoutProvider interface {
	Layout(id string) (*Layout, error)
}
