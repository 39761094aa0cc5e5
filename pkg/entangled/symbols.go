package entangled

// Placement is a symbol's cell on one board.
type Placement struct {
	Board int      `json:"board"` // Board1 or Board2
	Pos   Position `json:"pos"`
}

// SymbolIndex maps every symbol to its cells on the two boards. It is built
// once per engine and never mutated, so clones share it.
type SymbolIndex struct {
	order      []string
	placements map[string][]Placement
	shared     int
}

func newSymbolIndex(board1, board2 *Layout) *SymbolIndex {
	idx := &SymbolIndex{placements: make(map[string][]Placement)}
	for b, l := range [2]*Layout{board1, board2} {
		for r := 0; r < l.Size; r++ {
			for c := 0; c < l.Size; c++ {
				p := Position{Row: r, Col: c}
				sym := l.Symbol(p)
				if sym == DotSymbol {
					continue
				}
				if _, ok := idx.placements[sym]; !ok {
					idx.order = append(idx.order, sym)
				}
				idx.placements[sym] = append(idx.placements[sym], Placement{Board: b, Pos: p})
			}
		}
	}
	for _, pls := range idx.placements {
		if len(pls) == 2 {
			idx.shared++
		}
	}
	return idx
}

// Symbols returns every symbol: board1 row-major first, then symbols that
// only appear on board2. The slice must not be modified.
func (idx *SymbolIndex) Symbols() []string { return idx.order }

// Placements returns the cells where sym is playable, board1 first.
// Unknown symbols return nil.
func (idx *SymbolIndex) Placements(sym string) []Placement {
	return idx.placements[sym]
}

// Has reports whether sym exists on either board.
func (idx *SymbolIndex) Has(sym string) bool {
	_, ok := idx.placements[sym]
	return ok
}

// On returns sym's position on the given board.
func (idx *SymbolIndex) On(sym string, board int) (Position, bool) {
	for _, pl := range idx.placements[sym] {
		if pl.Board == board {
			return pl.Pos, true
		}
	}
	return Position{}, false
}

// SharedCount returns the number of symbols playable on both boards.
func (idx *SymbolIndex) SharedCount() int { return idx.shared }
