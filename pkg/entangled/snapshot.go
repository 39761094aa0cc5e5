package entangled

// ClusterHighlight holds the largest group cells of one color on each board.
type ClusterHighlight [2][]Position

// Snapshot is a self-contained copy of a position, used for replay history.
type Snapshot struct {
	Boards        [2][][]Color     `json:"boards"`
	CurrentPlayer Color            `json:"currentPlayer"`
	LastMove      string           `json:"lastMove,omitempty"`
	Swapped       bool             `json:"swapped,omitempty"`
	Black         ClusterHighlight `json:"black"`
	White         ClusterHighlight `json:"white"`
}

// Snapshot captures the current position.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		CurrentPlayer: e.current,
		LastMove:      e.lastSymbol,
		Swapped:       e.swapOccurred,
	}
	for board := range 2 {
		s.Boards[board] = e.boards[board].Grid()
		s.Black[board] = e.LargestClusterCells(board, Black)
		s.White[board] = e.LargestClusterCells(board, White)
	}
	return s
}
