// Package entangled implements the rules of Entangled, a connection game
// played on two boards at once. Each symbol names one cell on each board, so
// a single move places a stone on both. Players score the size of their
// largest connected group on each board.
package entangled

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Options configures a new game.
type Options struct {
	Board1 *Layout
	Board2 *Layout

	// StartingStones is a comma-separated list of "<B|W><symbol><1|2>"
	// tokens. Invalid tokens are skipped.
	StartingStones string

	// Superposition is a comma-separated list of symbols and RNG tokens.
	// Invalid entries fail construction.
	Superposition string

	SwapRule bool

	// Rand drives RNG superposition draws. A time-seeded source is used
	// when nil.
	Rand *rand.Rand
}

// SuperpositionStone is a pending superposition entry.
type SuperpositionStone struct {
	Symbol string `json:"symbol"`
	PairID int    `json:"pairId"`
	Boards []int  `json:"boards"`
}

// Engine holds the state of one game. It is not safe for concurrent use;
// search code works on clones.
type Engine struct {
	layouts         [2]*Layout
	index           *SymbolIndex
	swapRule        bool
	stonesPerPlayer int
	skipped         []string

	boards          [2]*Board
	current         Color
	turns           [3]int // indexed by Color
	over            bool
	lastSymbol      string
	lastColor       Color
	firstMoveSymbol string
	firstPlaced     [2]bool // boards where the opening move placed a stone
	swapAvailable   bool
	swapOccurred    bool
	superpositions  map[string]SuperpositionStone
	nextPairID      int
}

// NewEngine builds a game from opts.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Board1 == nil || opts.Board2 == nil {
		return nil, fmt.Errorf("%w: both boards are required", ErrInvalidLayout)
	}
	if opts.Board1.Size != opts.Board2.Size {
		return nil, fmt.Errorf("%w: %s is %d, %s is %d", ErrLayoutMismatch,
			opts.Board1.ID, opts.Board1.Size, opts.Board2.ID, opts.Board2.Size)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	size := opts.Board1.Size
	e := &Engine{
		layouts:        [2]*Layout{opts.Board1, opts.Board2},
		index:          newSymbolIndex(opts.Board1, opts.Board2),
		swapRule:       opts.SwapRule,
		boards:         [2]*Board{newBoard(size), newBoard(size)},
		current:        Black,
		superpositions: make(map[string]SuperpositionStone),
	}
	e.stonesPerPlayer = e.index.SharedCount() / 2

	e.applyStartingStones(opts.StartingStones)
	if err := e.applySuperposition(opts.Superposition, rng); err != nil {
		return nil, err
	}
	if !e.hasValidMove() {
		e.settle(Black)
		e.over = true
	}
	return e, nil
}

func (e *Engine) applyStartingStones(cfg string) {
	stones, skipped := ParseStartingStones(cfg)
	e.skipped = skipped
	for _, s := range stones {
		pos, ok := e.index.On(s.Symbol, s.Board)
		if !ok || e.boards[s.Board].At(pos) != Empty {
			e.skipped = append(e.skipped, startingToken(s))
			continue
		}
		e.boards[s.Board].set(pos, s.Color)
	}
}

func startingToken(s StartingStone) string {
	c := "B"
	if s.Color == White {
		c = "W"
	}
	return fmt.Sprintf("%s%s%d", c, s.Symbol, s.Board+1)
}

func (e *Engine) applySuperposition(cfg string, rng *rand.Rand) error {
	parsed, err := ParseSuperposition(cfg)
	if err != nil {
		return err
	}
	for _, sym := range parsed.Symbols {
		if !e.index.Has(sym) {
			return &ConfigError{Token: sym, Reason: "symbol not on either board"}
		}
		if !e.unoccupied(sym) {
			return &ConfigError{Token: sym, Reason: "cell already occupied"}
		}
		e.reserve(sym)
	}
	if parsed.Random == 0 {
		return nil
	}
	var legal []string
	for _, sym := range e.index.order {
		if e.unoccupied(sym) {
			legal = append(legal, sym)
		}
	}
	if len(legal) < parsed.Random {
		return &ConfigError{
			Token:  RandomToken,
			Reason: fmt.Sprintf("need %d legal positions, have %d", parsed.Random, len(legal)),
		}
	}
	for _, i := range rng.Perm(len(legal))[:parsed.Random] {
		e.reserve(legal[i])
	}
	return nil
}

// reserve puts sym into superposition on every board where it is playable.
func (e *Engine) reserve(sym string) {
	e.nextPairID++
	stone := SuperpositionStone{Symbol: sym, PairID: e.nextPairID}
	for _, pl := range e.index.Placements(sym) {
		e.boards[pl.Board].set(pl.Pos, Superposition)
		stone.Boards = append(stone.Boards, pl.Board)
	}
	e.superpositions[sym] = stone
}

// Layout returns the layout of board 0 or 1.
func (e *Engine) Layout(board int) *Layout { return e.layouts[board] }

// Board returns the live state of board 0 or 1. Callers must not hold on to
// it across moves if they need a stable view; use Snapshot instead.
func (e *Engine) Board(board int) *Board { return e.boards[board] }

// Index returns the shared symbol index.
func (e *Engine) Index() *SymbolIndex { return e.index }

// Size returns the board dimension.
func (e *Engine) Size() int { return e.layouts[0].Size }

// StonesPerPlayer is half the number of symbols playable on both boards.
func (e *Engine) StonesPerPlayer() int { return e.stonesPerPlayer }

// SkippedStartingStones lists starting-stone tokens that were ignored.
func (e *Engine) SkippedStartingStones() []string { return e.skipped }

// CurrentPlayer returns the color to move.
func (e *Engine) CurrentPlayer() Color { return e.current }

// TurnCount returns how many moves the player has made.
func (e *Engine) TurnCount(player Color) int {
	if !player.IsPlayer() {
		return 0
	}
	return e.turns[player]
}

// IsGameOver reports whether the game has finished.
func (e *Engine) IsGameOver() bool { return e.over }

// LastMove returns the last played symbol and the color that played it.
func (e *Engine) LastMove() (string, Color) { return e.lastSymbol, e.lastColor }

// FirstMoveSymbol returns Black's opening symbol, if any.
func (e *Engine) FirstMoveSymbol() string { return e.firstMoveSymbol }

// SwapRule reports whether the swap rule is enabled.
func (e *Engine) SwapRule() bool { return e.swapRule }

// IsSwapAvailable reports whether White may currently swap.
func (e *Engine) IsSwapAvailable() bool { return e.swapAvailable }

// SwapOccurred reports whether the swap was used.
func (e *Engine) SwapOccurred() bool { return e.swapOccurred }

// IsValidMove reports whether sym can be played now. A symbol stays
// playable while any of its cells is empty, so a starting stone on one
// board leaves the other cell open.
func (e *Engine) IsValidMove(sym string) bool {
	if sym == DotSymbol {
		return false
	}
	if _, reserved := e.superpositions[sym]; reserved {
		return false
	}
	for _, pl := range e.index.Placements(sym) {
		if e.boards[pl.Board].At(pl.Pos) == Empty {
			return true
		}
	}
	return false
}

// unoccupied reports whether every cell of sym is empty and unreserved.
func (e *Engine) unoccupied(sym string) bool {
	pls := e.index.Placements(sym)
	if len(pls) == 0 {
		return false
	}
	if _, reserved := e.superpositions[sym]; reserved {
		return false
	}
	for _, pl := range pls {
		if e.boards[pl.Board].At(pl.Pos) != Empty {
			return false
		}
	}
	return true
}

// ValidMoves returns the legal symbols in index order.
func (e *Engine) ValidMoves() []string {
	return e.AppendValidMoves(nil)
}

// AppendValidMoves appends the legal symbols to dst and returns it.
func (e *Engine) AppendValidMoves(dst []string) []string {
	if e.over {
		return dst
	}
	for _, sym := range e.index.order {
		if e.IsValidMove(sym) {
			dst = append(dst, sym)
		}
	}
	return dst
}

func (e *Engine) hasValidMove() bool {
	for _, sym := range e.index.order {
		if e.IsValidMove(sym) {
			return true
		}
	}
	return false
}

// MakeMove plays sym for the current player.
func (e *Engine) MakeMove(sym string) error {
	if e.over {
		return ErrGameOver
	}
	if !e.IsValidMove(sym) {
		return fmt.Errorf("%w: %q", ErrInvalidMove, sym)
	}

	mover := e.current
	var buf [2]Placement
	placed := buf[:0]
	for _, pl := range e.index.Placements(sym) {
		b := e.boards[pl.Board]
		if b.At(pl.Pos) == Empty {
			b.set(pl.Pos, mover)
			placed = append(placed, pl)
		}
	}

	if mover == Black && e.turns[Black] == 0 && !e.swapOccurred {
		e.firstMoveSymbol = sym
		e.firstPlaced = [2]bool{}
		for _, pl := range placed {
			e.firstPlaced[pl.Board] = true
		}
	}

	e.collapseAround(placed, mover)

	e.turns[mover]++
	e.lastSymbol = sym
	e.lastColor = mover

	if !e.hasValidMove() {
		e.settle(mover)
		e.over = true
		e.swapAvailable = false
		return nil
	}

	e.current = mover.Opponent()
	e.swapAvailable = e.swapRule && !e.swapOccurred &&
		e.turns[Black] == 1 && e.turns[White] == 0 && e.firstMoveSymbol != ""
	return nil
}

// SwapFirstMove lets White take over Black's opening stone.
func (e *Engine) SwapFirstMove() error {
	switch {
	case !e.swapRule:
		return fmt.Errorf("%w: swap rule disabled", ErrSwapUnavailable)
	case e.swapOccurred:
		return fmt.Errorf("%w: already swapped", ErrSwapUnavailable)
	case !e.swapAvailable || e.firstMoveSymbol == "":
		return fmt.Errorf("%w: no opening move to swap", ErrSwapUnavailable)
	}

	for _, pl := range e.index.Placements(e.firstMoveSymbol) {
		b := e.boards[pl.Board]
		if e.firstPlaced[pl.Board] && b.At(pl.Pos) == Black {
			b.set(pl.Pos, White)
		}
	}
	e.turns[Black] = 0
	e.turns[White] = 1
	e.current = Black
	e.lastColor = White
	e.swapAvailable = false
	e.swapOccurred = true
	return nil
}

// PendingSuperpositions returns the unresolved superposition stones ordered
// by pairing id.
func (e *Engine) PendingSuperpositions() []SuperpositionStone {
	out := make([]SuperpositionStone, 0, len(e.superpositions))
	for _, s := range e.superpositions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairID < out[j].PairID })
	return out
}

// HasPendingSuperposition reports whether any superposition is unresolved.
func (e *Engine) HasPendingSuperposition() bool { return len(e.superpositions) > 0 }

// IsSuperpositionSymbol reports whether sym is currently in superposition.
func (e *Engine) IsSuperpositionSymbol(sym string) bool {
	_, ok := e.superpositions[sym]
	return ok
}

// IsSuperpositionMove reports whether playing sym would place a stone next
// to a pending superposition stone, making its collapse depend on the move.
func (e *Engine) IsSuperpositionMove(sym string) bool {
	if len(e.superpositions) == 0 {
		return false
	}
	for _, pl := range e.index.Placements(sym) {
		for _, n := range e.layouts[pl.Board].Neighbors(pl.Pos) {
			if e.boards[pl.Board].At(n) == Superposition {
				return true
			}
		}
	}
	return false
}

// Clone returns an independent copy of the game. Only the immutable layouts
// and symbol index are shared.
func (e *Engine) Clone() *Engine {
	c := *e
	c.boards = [2]*Board{e.boards[0].clone(), e.boards[1].clone()}
	c.superpositions = make(map[string]SuperpositionStone, len(e.superpositions))
	for k, v := range e.superpositions {
		c.superpositions[k] = v
	}
	return &c
}

// CloneInto copies e into dst, reusing dst's board storage and map.
// After the call dst is a deep copy of e.
func (e *Engine) CloneInto(dst *Engine) {
	boards := dst.boards
	sp := dst.superpositions
	*dst = *e
	for i := range boards {
		if boards[i] == nil {
			boards[i] = newBoard(e.boards[i].size)
		}
		boards[i].copyFrom(e.boards[i])
	}
	dst.boards = boards
	if sp == nil {
		sp = make(map[string]SuperpositionStone, len(e.superpositions))
	} else {
		clear(sp)
	}
	for k, v := range e.superpositions {
		sp[k] = v
	}
	dst.superpositions = sp
}
