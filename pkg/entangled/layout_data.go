package entangled

import (
	"fmt"
	"sort"
	"sync"
)

// layoutDef is the static description of a built-in layout.
type layoutDef struct {
	ID   string
	Kind AdjacencyKind
	Rows []string
}

// standardLayoutDefs holds every built-in layout. Each base layout has a
// "-twin" partner carrying the same symbols in a different arrangement; the
// hex twins also move the dot cells, which leaves a few symbols playable on
// one board only.
var standardLayoutDefs = []layoutDef{
	{
		ID:   "square-4",
		Kind: Square,
		Rows: []string{
			"A B C D",
			"E F G H",
			"I J K L",
			"M N O P",
		},
	},
	{
		ID:   "square-4-twin",
		Kind: Square,
		Rows: []string{
			"F M D K",
			"B I P G",
			"N E L C",
			"J A H O",
		},
	},
	{
		ID:   "square-5",
		Kind: Square,
		Rows: []string{
			"A B C D E",
			"F G H I J",
			"K L M N O",
			"P Q R S T",
			"U V W X Y",
		},
	},
	{
		ID:   "square-5-twin",
		Kind: Square,
		Rows: []string{
			"D K R Y G",
			"N U C J Q",
			"X F M T B",
			"I P W E L",
			"S A H O V",
		},
	},
	{
		ID:   "square-6",
		Kind: Square,
		Rows: []string{
			"A B C D E F",
			"G H I J K L",
			"M N O P Q R",
			"S T U V W X",
			"Y Z 0 1 2 3",
			"4 5 6 7 8 9",
		},
	},
	{
		ID:   "square-6-twin",
		Kind: Square,
		Rows: []string{
			"H M R W 1 6",
			"B G L Q V 0",
			"5 A F K P U",
			"Z 4 9 E J O",
			"T Y 3 8 D I",
			"N S X 2 7 C",
		},
	},
	{
		ID:   "square-7",
		Kind: Square,
		Rows: []string{
			"A B C D E F G",
			"H I J K L M N",
			"O P Q R S T U",
			"V W X Y Z 0 1",
			"2 3 4 5 6 7 8",
			"9 ! # $ % & *",
			"+ < = > ? @ ^",
		},
	},
	{
		ID:   "square-7-twin",
		Kind: Square,
		Rows: []string{
			"E O Y 8 = F P",
			"Z 9 > G Q 0 !",
			"? H R 1 # @ I",
			"S 2 $ ^ J T 3",
			"% A K U 4 & B",
			"L V 5 * C M W",
			"6 + D N X 7 <",
		},
	},
	{
		ID:   "hex-5",
		Kind: Hex,
		Rows: []string{
			". B C D E",
			"F G H I J",
			"K L M N O",
			"P Q R S T",
			". V W X Y",
		},
	},
	{
		ID:   "hex-5-twin",
		Kind: Hex,
		Rows: []string{
			"D K R Y .",
			"N U C J Q",
			"X F M T B",
			"I P W E L",
			"S A H O .",
		},
	},
	{
		ID:   "hex-7",
		Kind: Hex,
		Rows: []string{
			". B C D E F .",
			"H I J K L M N",
			"O P Q R S T U",
			"V W X Y Z 0 1",
			"2 3 4 5 6 7 8",
			"9 ! # $ % & *",
			". < = > ? @ .",
		},
	},
	{
		ID:   "hex-7-twin",
		Kind: Hex,
		Rows: []string{
			"E O Y . = F P",
			"Z 9 > G Q 0 !",
			"? H R 1 # @ I",
			". 2 $ ^ J T .",
			"% A K U 4 & B",
			"L V 5 * C M W",
			"6 + D . X 7 <",
		},
	},
}

// LayoutTable is an in-memory LayoutProvider.
type LayoutTable struct {
	layouts map[string]*Layout
}

var (
	standardOnce  sync.Once
	standardTable *LayoutTable
)

// StandardLayouts returns the built-in layout table. The table is built once
// and shared; a definition error here is a programming error.
func StandardLayouts() *LayoutTable {
	standardOnce.Do(func() {
		t := &LayoutTable{layouts: make(map[string]*Layout, len(standardLayoutDefs))}
		for _, def := range standardLayoutDefs {
			l, err := NewLayout(def.ID, def.Kind, def.Rows)
			if err != nil {
				panic(err)
			}
			t.layouts[def.ID] = l
		}
		standardTable = t
	})
	return standardTable
}

// Layout returns the layout with the given id.
func (t *LayoutTable) Layout(id string) (*Layout, error) {
	l, ok := t.layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, id)
	}
	return l, nil
}

// IDs returns all layout ids in sorted order.
func (t *LayoutTable) IDs() []string {
	ids := make([]string, 0, len(t.layouts))
	for id := range t.layouts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultLayoutPair returns the square layout ids for a board size.
func DefaultLayoutPair(size int) (board1, board2 string) {
	board1 = fmt.Sprintf("square-%d", size)
	return board1, board1 + "-twin"
}
