package entangled

import "fmt"

// collapseAround checks the superposition stones next to the cells placed by
// the last move. A stone collapses once all of its neighbours are filled.
// This is a single pass: a collapse does not trigger a re-scan.
func (e *Engine) collapseAround(placed []Placement, mover Color) {
	if len(e.superpositions) == 0 {
		return
	}
	for _, pl := range placed {
		l := e.layouts[pl.Board]
		b := e.boards[pl.Board]
		for _, n := range l.Neighbors(pl.Pos) {
			if b.At(n) != Superposition {
				continue
			}
			sym := l.Symbol(n)
			if _, ok := e.superpositions[sym]; !ok {
				continue
			}
			if !e.surrounded(pl.Board, n) {
				continue
			}
			e.collapse(sym, e.majorityColor(pl.Board, n, mover))
		}
	}
}

// surrounded reports whether every playable neighbour of p is non-empty.
// Off-board and dot neighbours count as filled.
func (e *Engine) surrounded(board int, p Position) bool {
	b := e.boards[board]
	for _, n := range e.layouts[board].Neighbors(p) {
		if b.At(n) == Empty {
			return false
		}
	}
	return true
}

// majorityColor picks the collapse color for the stone at p: the majority of
// its concrete neighbours, ties going to the last concrete neighbour seen,
// and fallback when no neighbour is concrete.
func (e *Engine) majorityColor(board int, p Position, fallback Color) Color {
	b := e.boards[board]
	var black, white int
	last := Empty
	for _, n := range e.layouts[board].Neighbors(p) {
		switch b.At(n) {
		case Black:
			black++
			last = Black
		case White:
			white++
			last = White
		}
	}
	switch {
	case black > white:
		return Black
	case white > black:
		return White
	case last != Empty:
		return last
	}
	return fallback
}

// collapse resolves sym to color on every board and removes it from the
// registry.
func (e *Engine) collapse(sym string, color Color) {
	stone := e.superpositions[sym]
	for _, board := range stone.Boards {
		if pos, ok := e.index.On(sym, board); ok {
			e.boards[board].set(pos, color)
		}
	}
	delete(e.superpositions, sym)
}

// settle collapses any superposition the per-move scans never reached, so a
// finished game holds only concrete colors. Stones are resolved in pairing
// order using the majority rule on their first board.
func (e *Engine) settle(mover Color) {
	if len(e.superpositions) == 0 {
		return
	}
	for _, s := range e.PendingSuperpositions() {
		board := s.Boards[0]
		pos, _ := e.index.On(s.Symbol, board)
		e.collapse(s.Symbol, e.majorityColor(board, pos, mover))
	}
}

// ForceCollapse resolves a pending superposition to color. Search code uses
// it on clones to explore the possible collapse outcomes.
func (e *Engine) ForceCollapse(sym string, color Color) error {
	if _, ok := e.superpositions[sym]; !ok {
		return fmt.Errorf("%w: %q", ErrNotSuperposition, sym)
	}
	if !color.IsPlayer() {
		return fmt.Errorf("collapse %q: color %s is not a player", sym, color)
	}
	e.collapse(sym, color)
	return nil
}

// AdjacentSuperpositions returns the pending symbols next to sym's cells.
func (e *Engine) AdjacentSuperpositions(sym string) []string {
	var out []string
	for _, pl := range e.index.Placements(sym) {
		l := e.layouts[pl.Board]
		for _, n := range l.Neighbors(pl.Pos) {
			if e.boards[pl.Board].At(n) != Superposition {
				continue
			}
			s := l.Symbol(n)
			if _, ok := e.superpositions[s]; !ok {
				continue
			}
			dup := false
			for _, o := range out {
				if o == s {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, s)
			}
		}
	}
	return out
}
