package game

// State is a value snapshot of a Game, safe to hand to other goroutines.
type State struct {
	Board       Board
	Turn        PlayerMark
	Mode        Mode
	Score       Score
	Outcome     Outcome
	WinningLine []int
	Moves       []int
}

// BoardAsSlice converts the board to a slice for JSON encoding.
func BoardAsSlice(board Board) []PlayerMark {
	cells := make([]PlayerMark, BoardSize)
	copy(cells, board[:])
	return cells
}

// RowCol maps a cell index to its row and column.
func RowCol(index int) (row, col int) {
	return index / 3, index % 3
}
